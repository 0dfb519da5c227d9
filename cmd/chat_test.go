package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/maximbilan/qianxun/internal/chat"
)

type stubChat struct {
	deltas []string
	result chat.Result
}

func (s stubChat) SendMessage(_ context.Context, _, _ string, onChunk chat.ChunkFunc) chat.Result {
	acc := ""
	for _, d := range s.deltas {
		acc += d
		onChunk(d, acc)
	}
	return s.result
}

func (s stubChat) Models() []chat.ModelInfo {
	return []chat.ModelInfo{{ID: "chatgpt", Name: "ChatGPT"}, {ID: "deepseek", Name: "DeepSeek"}}
}

func TestStreamChat(t *testing.T) {
	tests := []struct {
		name    string
		stub    stubChat
		wantOK  bool
		wantOut string
		wantErr string
	}{
		{
			name:    "streamed reply",
			stub:    stubChat{deltas: []string{"你", "好"}, result: chat.Result{Success: true, Message: "你好"}},
			wantOK:  true,
			wantOut: "你好\n",
		},
		{
			name:    "empty reply message",
			stub:    stubChat{result: chat.Result{Success: true, Message: chat.EmptyReply}},
			wantOK:  true,
			wantOut: chat.EmptyReply + "\n",
		},
		{
			name:    "failure",
			stub:    stubChat{result: chat.Result{Success: false, Message: chat.UnavailablePrefix + " (boom)"}},
			wantOK:  false,
			wantErr: chat.UnavailablePrefix + " (boom)\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			ok := streamChat(context.Background(), tt.stub, "deepseek", "hi", &out, &errOut)
			if ok != tt.wantOK {
				t.Fatalf("streamChat() = %v, want %v", ok, tt.wantOK)
			}
			if out.String() != tt.wantOut {
				t.Errorf("stdout = %q, want %q", out.String(), tt.wantOut)
			}
			if errOut.String() != tt.wantErr {
				t.Errorf("stderr = %q, want %q", errOut.String(), tt.wantErr)
			}
		})
	}
}

func TestListModels(t *testing.T) {
	var out bytes.Buffer
	listModels(stubChat{}, &out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "chatgpt") || !strings.Contains(lines[1], "DeepSeek") {
		t.Errorf("listModels() = %q", out.String())
	}
}
