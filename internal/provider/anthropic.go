package provider

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 4096
)

func claude() Descriptor {
	return Descriptor{
		Key:           Claude,
		Name:          "Claude",
		URL:           "https://api.anthropic.com/v1/messages",
		Model:         "claude-3-5-haiku-latest",
		Order:         2,
		Headers:       anthropicHeaders,
		FormatRequest: anthropicRequest,
		ParseDelta:    anthropicDelta,
		Done:          anthropicDone,
	}
}

func anthropicHeaders(apiKey string) http.Header {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	h.Set("x-api-key", apiKey)
	h.Set("anthropic-version", anthropicVersion)
	return h
}

func anthropicRequest(model, message string) ([]byte, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(message)),
		},
	}
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal message request: %w", err)
	}
	// The SDK sets this flag itself when streaming; raw requests must add it.
	body, err = sjson.SetBytes(body, "stream", true)
	if err != nil {
		return nil, fmt.Errorf("set stream flag: %w", err)
	}
	return body, nil
}

// anthropicDelta returns the text of content_block_delta events. Every other
// event type carries no text.
func anthropicDelta(data []byte) (string, error) {
	if !gjson.ValidBytes(data) {
		return "", fmt.Errorf("invalid event payload: %.40q", data)
	}
	event := gjson.ParseBytes(data)
	switch event.Get("type").String() {
	case "content_block_delta":
		if event.Get("delta.type").String() == "text_delta" {
			return event.Get("delta.text").String(), nil
		}
	case "error":
		return "", fmt.Errorf("stream error: %s", event.Get("error.message").String())
	}
	return "", nil
}

func anthropicDone(data []byte) bool {
	return gjson.GetBytes(data, "type").String() == "message_stop"
}
