package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

func openAI() Descriptor {
	return Descriptor{
		Key:           ChatGPT,
		Name:          "ChatGPT",
		URL:           "https://api.openai.com/v1/chat/completions",
		Model:         openai.GPT3Dot5Turbo,
		Order:         0,
		Headers:       bearerHeaders,
		FormatRequest: openAIRequest(0.7),
		ParseDelta:    openAIDelta,
		Done:          isDoneSentinel,
	}
}

func deepSeek() Descriptor {
	return Descriptor{
		Key:           DeepSeek,
		Name:          "DeepSeek",
		URL:           "https://api.deepseek.com/v1/chat/completions",
		Model:         "deepseek-chat",
		Order:         1,
		Headers:       bearerHeaders,
		FormatRequest: openAIRequest(0),
		ParseDelta:    openAIDelta,
		Done:          isDoneSentinel,
	}
}

func bearerHeaders(apiKey string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("Authorization", "Bearer "+apiKey)
	return h
}

// openAIRequest shapes an OpenAI-compatible chat completion request. A zero
// temperature is left out so the API default applies.
func openAIRequest(temperature float32) func(model, message string) ([]byte, error) {
	return func(model, message string) ([]byte, error) {
		req := openai.ChatCompletionRequest{
			Model: model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: message},
			},
			Temperature: temperature,
			Stream:      true,
		}
		body, err := json.Marshal(req)
		if err != nil {
			return nil, fmt.Errorf("marshal chat request: %w", err)
		}
		return body, nil
	}
}

func openAIDelta(data []byte) (string, error) {
	var chunk openai.ChatCompletionStreamResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", fmt.Errorf("decode stream chunk: %w", err)
	}
	if len(chunk.Choices) == 0 {
		return "", nil
	}
	return chunk.Choices[0].Delta.Content, nil
}

func isDoneSentinel(data []byte) bool {
	return string(data) == DoneSentinel
}
