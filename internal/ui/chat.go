package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/maximbilan/qianxun/internal/chat"
)

type role int

const (
	roleUser role = iota
	roleAssistant
)

type turn struct {
	role    role
	content string
	failed  bool
}

type chatChunkMsg struct {
	accumulated string
}

type chatDoneMsg struct {
	result chat.Result
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.switchPane()
	case "ctrl+p":
		if len(m.providers) > 0 && !m.streaming {
			m.provider = (m.provider + 1) % len(m.providers)
			m.status = "模型：" + m.providers[m.provider].Name
		}
		return m, nil
	case "ctrl+v":
		text, err := m.clipboard.Paste()
		if err != nil {
			m.notifier.Error(err.Error())
			return m, nil
		}
		m.input.InsertString(text)
		return m, nil
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" || m.streaming || m.chat == nil || len(m.providers) == 0 {
			return m, nil
		}
		m.input.Reset()
		return m.startChat(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) startChat(text string) (tea.Model, tea.Cmd) {
	key := m.providers[m.provider].ID
	m.turns = append(m.turns, turn{role: roleUser, content: text}, turn{role: roleAssistant})
	m.streaming = true
	m.status = m.providers[m.provider].Name + " 回复中..."

	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan tea.Msg, 16)
	m.stream = ch
	m.cancel = cancel
	m.refreshTranscript()

	return m, tea.Batch(
		runChat(ctx, m.chat, key, text, ch),
		waitForStream(ch),
		m.spinner.Tick,
	)
}

// runChat sends one message and reports progress on ch. It closes ch when
// the reply is complete.
func runChat(ctx context.Context, sender ChatSender, key, text string, ch chan<- tea.Msg) tea.Cmd {
	return func() tea.Msg {
		defer close(ch)
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}
		result := sender.SendMessage(ctx, key, text, func(_, accumulated string) {
			send(chatChunkMsg{accumulated: accumulated})
		})
		send(chatDoneMsg{result: result})
		return nil
	}
}

func waitForStream(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (m Model) handleChunk(msg chatChunkMsg) (tea.Model, tea.Cmd) {
	if n := len(m.turns); n > 0 {
		m.turns[n-1].content = msg.accumulated
	}
	m.refreshTranscript()
	if m.stream == nil {
		return m, nil
	}
	return m, waitForStream(m.stream)
}

func (m Model) handleDone(msg chatDoneMsg) (tea.Model, tea.Cmd) {
	if n := len(m.turns); n > 0 {
		m.turns[n-1].content = msg.result.Message
		m.turns[n-1].failed = !msg.result.Success
	}
	m.streaming = false
	m.stream = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.status = "就绪"
	m.refreshTranscript()
	return m, textarea.Blink
}

// refreshTranscript re-renders the conversation into the viewport.
func (m *Model) refreshTranscript() {
	var b strings.Builder
	for i, t := range m.turns {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(m.renderTurn(t, i == len(m.turns)-1))
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}
