package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/maximbilan/qianxun/internal/chat"
	"github.com/maximbilan/qianxun/internal/clipboard"
	"github.com/maximbilan/qianxun/internal/notify"
)

type Pane int

const (
	PaneNav Pane = iota
	PaneChat
)

// SiteAPI is the part of the HTTP wrapper the navigation pane uses.
type SiteAPI interface {
	Get(ctx context.Context, path string, query map[string]string, out any) error
	Delete(ctx context.Context, path string, out any) error
}

// ChatSender streams a reply from a provider.
type ChatSender interface {
	SendMessage(ctx context.Context, key, text string, onChunk chat.ChunkFunc) chat.Result
	Models() []chat.ModelInfo
}

// Options wires the model to its collaborators.
type Options struct {
	Title    string
	NavPath  string
	Provider string
	Theme    string
	Timeout  time.Duration

	API       SiteAPI
	Chat      ChatSender
	Notifier  *notify.Center
	Clipboard clipboard.Clipboard
}

type Model struct {
	pane    Pane
	title   string
	navPath string
	timeout time.Duration
	theme   string

	// Navigation
	sites   []Site
	cursor  int
	loading bool
	loadErr *notify.Handle

	// Chat
	providers []chat.ModelInfo
	provider  int
	turns     []turn
	streaming bool
	stream    <-chan tea.Msg
	cancel    context.CancelFunc

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	// Services
	api       SiteAPI
	chat      ChatSender
	notifier  *notify.Center
	clipboard clipboard.Clipboard

	status string
	width  int
	height int
}

func NewModel(opts Options) Model {
	if opts.Notifier == nil {
		opts.Notifier = notify.NewCenter()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.System{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Theme == "" {
		opts.Theme = "dark"
	}

	input := textarea.New()
	input.Placeholder = "输入消息，Enter 发送..."
	input.CharLimit = 0
	input.ShowLineNumbers = false
	input.SetWidth(80)
	input.SetHeight(3)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := Model{
		pane:      PaneNav,
		title:     opts.Title,
		navPath:   opts.NavPath,
		timeout:   opts.Timeout,
		theme:     opts.Theme,
		input:     input,
		viewport:  viewport.New(80, 16),
		spinner:   sp,
		renderer:  newRenderer(opts.Theme, 78),
		api:       opts.API,
		chat:      opts.Chat,
		notifier:  opts.Notifier,
		clipboard: opts.Clipboard,
		status:    "Tab: 切换面板",
	}
	if opts.Chat != nil {
		m.providers = opts.Chat.Models()
	}
	for i, p := range m.providers {
		if p.ID == opts.Provider {
			m.provider = i
		}
	}
	return m
}

func newRenderer(theme string, width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(theme),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{notify.TickCmd(), textarea.Blink}
	if m.title != "" {
		cmds = append(cmds, tea.SetWindowTitle(m.title))
	}
	if m.api != nil {
		cmds = append(cmds, m.loadSites())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w := msg.Width - 4
		if w < 20 {
			w = 20
		}
		h := msg.Height - 12
		if h < 5 {
			h = 5
		}
		m.input.SetWidth(w)
		m.viewport.Width = w
		m.viewport.Height = h
		m.renderer = newRenderer(m.theme, w-2)
		m.refreshTranscript()
		return m, nil

	case notify.TickMsg:
		m.notifier.Tick(msg.Time)
		return m, notify.TickCmd()

	case tea.KeyMsg:
		// An open dialog owns the keyboard.
		if m.notifier.HandleKey(msg) {
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c":
			return m.quit()
		case "ctrl+x":
			m.notifier.DismissTop()
			return m, nil
		case "tab":
			return m.switchPane()
		}
		if m.pane == PaneNav {
			return m.handleNavKey(msg)
		}
		return m.handleChatKey(msg)

	case sitesLoadedMsg:
		m.loading = false
		m.loadErr.Close()
		m.loadErr = nil
		m.sites = msg.sites
		if m.cursor >= len(m.sites) {
			m.cursor = max(len(m.sites)-1, 0)
		}
		m.status = "已加载网站"
		return m, nil

	case sitesFailedMsg:
		m.loading = false
		// Stays up until dismissed with ctrl+x or the list reloads.
		m.loadErr = m.notifier.ErrorWith(notify.Options{Message: msg.err.Error(), Duration: -1})
		return m, nil

	case confirmedMsg:
		return m.handleConfirmed(msg)

	case siteDeletedMsg:
		if msg.err != nil {
			m.notifier.Error(msg.err.Error())
			return m, nil
		}
		m.notifier.Success("已删除 " + msg.site.Name)
		m.loading = true
		return m, m.loadSites()

	case chatChunkMsg:
		return m.handleChunk(msg)

	case chatDoneMsg:
		return m.handleDone(msg)

	case spinner.TickMsg:
		if m.streaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			m.refreshTranscript()
			return m, cmd
		}
		return m, nil
	}

	if m.pane == PaneChat {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchPane() (tea.Model, tea.Cmd) {
	if m.pane == PaneNav {
		m.pane = PaneChat
		m.input.Focus()
		return m, textarea.Blink
	}
	m.pane = PaneNav
	m.input.Blur()
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	return m, tea.Quit
}

// Run starts the full-screen program and blocks until it exits.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("program error: %w", err)
	}
	return nil
}
