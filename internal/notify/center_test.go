package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var (
	escKey   = tea.KeyMsg{Type: tea.KeyEsc}
	enterKey = tea.KeyMsg{Type: tea.KeyEnter}
	tabKey   = tea.KeyMsg{Type: tea.KeyTab}
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestShowDefaults(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCenter(WithClock(fixedClock(start)))

	h := c.Show(Options{Message: "saved"})
	overlays := c.Overlays()
	if len(overlays) != 1 {
		t.Fatalf("Overlays() = %d, want 1", len(overlays))
	}
	o := overlays[0]
	if o.ID != h.ID() || o.Kind != KindToast || o.Type != TypeInfo {
		t.Errorf("overlay = %+v", o)
	}
	if o.Duration != DefaultToastDuration {
		t.Errorf("Duration = %v, want %v", o.Duration, DefaultToastDuration)
	}
	if !o.CreatedAt.Equal(start) {
		t.Errorf("CreatedAt = %v, want %v", o.CreatedAt, start)
	}
}

func TestTypedShorthands(t *testing.T) {
	c := NewCenter()

	tests := []struct {
		name string
		show func(string) *Handle
		want Type
	}{
		{name: "success", show: c.Success, want: TypeSuccess},
		{name: "warning", show: c.Warning, want: TypeWarning},
		{name: "error", show: c.Error, want: TypeError},
		{name: "info", show: c.Info, want: TypeInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := tt.show(tt.name)
			defer h.Close()

			var found bool
			for _, o := range c.Overlays() {
				if o.ID == h.ID() {
					found = true
					if o.Type != tt.want || o.Message != tt.name {
						t.Errorf("overlay = %+v, want type %s", o, tt.want)
					}
				}
			}
			if !found {
				t.Fatal("overlay not on the stack")
			}
		})
	}
}

func TestHandleCloseIsIdempotent(t *testing.T) {
	c := NewCenter()
	closed := 0
	h := c.Show(Options{Message: "x", OnClose: func() { closed++ }})

	h.Close()
	h.Close()

	if len(c.Overlays()) != 0 {
		t.Errorf("overlay still present after Close")
	}
	if closed != 1 {
		t.Errorf("OnClose ran %d times, want 1", closed)
	}
}

func TestTypedShorthandsWithOptions(t *testing.T) {
	c := NewCenter()

	tests := []struct {
		name string
		show func(Options) *Handle
		want Type
	}{
		{name: "success", show: c.SuccessWith, want: TypeSuccess},
		{name: "warning", show: c.WarningWith, want: TypeWarning},
		{name: "error", show: c.ErrorWith, want: TypeError},
		{name: "info", show: c.InfoWith, want: TypeInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			closed := false
			h := tt.show(Options{
				Message:  tt.name,
				Type:     TypeError,
				Duration: 10 * time.Second,
				OnClose:  func() { closed = true },
			})

			o := c.Overlays()[len(c.Overlays())-1]
			if o.ID != h.ID() || o.Type != tt.want {
				t.Errorf("overlay = %+v, want type %s", o, tt.want)
			}
			if o.Duration != 10*time.Second {
				t.Errorf("Duration = %v, want 10s", o.Duration)
			}
			h.Close()
			if !closed {
				t.Error("OnClose should run on close")
			}
		})
	}
}

func TestDismissTop(t *testing.T) {
	c := NewCenter()
	var closed []string
	c.Show(Options{Message: "first", Duration: -1, OnClose: func() { closed = append(closed, "first") }})
	p := c.Confirm("sure?", "", ConfirmOptions{})
	c.Show(Options{Message: "second", Duration: -1, OnClose: func() { closed = append(closed, "second") }})

	if !c.DismissTop() {
		t.Fatal("DismissTop() = false, want true")
	}
	if !c.DismissTop() {
		t.Fatal("second DismissTop() = false, want true")
	}
	if c.DismissTop() {
		t.Error("DismissTop() with only a dialog left should report false")
	}

	if strings.Join(closed, ",") != "second,first" {
		t.Errorf("closed = %v, want newest first", closed)
	}
	if !c.HasDialog() {
		t.Error("DismissTop() must not close dialogs")
	}
	select {
	case <-p.Done():
		t.Error("dialog settled by DismissTop()")
	default:
	}
}

func TestToastExpiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCenter(WithClock(fixedClock(start)), WithToastDuration(2*time.Second))

	closed := 0
	c.Show(Options{Message: "short", OnClose: func() { closed++ }})
	c.Show(Options{Message: "sticky", Duration: -1})
	c.Show(Options{Message: "long", Duration: 10 * time.Second})

	c.Tick(start.Add(time.Second))
	if n := len(c.Overlays()); n != 3 {
		t.Fatalf("after 1s: %d overlays, want 3", n)
	}

	c.Tick(start.Add(3 * time.Second))
	overlays := c.Overlays()
	if len(overlays) != 2 {
		t.Fatalf("after 3s: %d overlays, want 2", len(overlays))
	}
	if closed != 1 {
		t.Errorf("OnClose ran %d times, want 1", closed)
	}

	c.Tick(start.Add(time.Hour))
	overlays = c.Overlays()
	if len(overlays) != 1 || overlays[0].Message != "sticky" {
		t.Errorf("after 1h: %+v, want only the sticky toast", overlays)
	}
}

func TestConfirmDefaults(t *testing.T) {
	c := NewCenter()
	p := c.Confirm("删除该网站？", "", ConfirmOptions{})

	overlays := c.Overlays()
	if len(overlays) != 1 {
		t.Fatalf("Overlays() = %d, want 1", len(overlays))
	}
	o := overlays[0]
	if o.ID != p.ID() || o.Kind != KindConfirm {
		t.Errorf("overlay = %+v", o)
	}
	if o.Title != DefaultTitle || o.ConfirmText != DefaultConfirmText || o.CancelText != DefaultCancelText {
		t.Errorf("defaults not applied: %+v", o)
	}
	if o.Focus != ButtonConfirm {
		t.Errorf("Focus = %d, want confirm", o.Focus)
	}
	if !c.HasDialog() {
		t.Error("HasDialog() = false")
	}
}

func TestConfirmEscapeRejectsOnce(t *testing.T) {
	c := NewCenter()
	p := c.Confirm("leave?", "", ConfirmOptions{})

	if !c.HandleKey(escKey) {
		t.Fatal("HandleKey(esc) not consumed while dialog open")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Wait(ctx); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait() = %v, want ErrCancelled", err)
	}
	if len(c.Overlays()) != 0 {
		t.Fatalf("dialog still on the stack after Escape")
	}

	// A second Escape finds nothing to dismiss.
	if c.HandleKey(escKey) {
		t.Error("HandleKey(esc) consumed with no dialog open")
	}
	if len(c.Overlays()) != 0 || !errors.Is(p.Err(), ErrCancelled) {
		t.Error("second Escape changed state")
	}
}

func TestConfirmEscapeRemovesOnlyItsDialog(t *testing.T) {
	c := NewCenter()
	first := c.Confirm("first", "", ConfirmOptions{})
	toast := c.Info("toast")
	second := c.Confirm("second", "", ConfirmOptions{})

	c.HandleKey(escKey)

	select {
	case <-second.Done():
	default:
		t.Fatal("top dialog not settled")
	}
	select {
	case <-first.Done():
		t.Fatal("lower dialog settled by a single Escape")
	default:
	}

	overlays := c.Overlays()
	if len(overlays) != 2 || overlays[0].ID != first.ID() || overlays[1].ID != toast.ID() {
		t.Errorf("stack after Escape = %+v", overlays)
	}
}

func TestConfirmKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    []tea.KeyMsg
		wantErr error
	}{
		{name: "enter confirms focused default", keys: []tea.KeyMsg{enterKey}, wantErr: nil},
		{name: "tab then enter cancels", keys: []tea.KeyMsg{tabKey, enterKey}, wantErr: ErrCancelled},
		{name: "tab twice then enter confirms", keys: []tea.KeyMsg{tabKey, tabKey, enterKey}, wantErr: nil},
		{name: "y confirms", keys: []tea.KeyMsg{runeKey('y')}, wantErr: nil},
		{name: "n cancels", keys: []tea.KeyMsg{runeKey('n')}, wantErr: ErrCancelled},
		{name: "left then space cancels", keys: []tea.KeyMsg{{Type: tea.KeyLeft}, {Type: tea.KeySpace, Runes: []rune{' '}}}, wantErr: ErrCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCenter()
			p := c.Confirm("ok?", "t", ConfirmOptions{})
			for _, k := range tt.keys {
				c.HandleKey(k)
			}
			select {
			case <-p.Done():
			default:
				t.Fatal("dialog not settled")
			}
			if !errors.Is(p.Err(), tt.wantErr) || (tt.wantErr == nil && p.Err() != nil) {
				t.Errorf("Err() = %v, want %v", p.Err(), tt.wantErr)
			}
			if c.HasDialog() {
				t.Error("dialog still open")
			}
		})
	}
}

func TestHandleKeyIgnoredWithoutDialog(t *testing.T) {
	c := NewCenter()
	c.Info("just a toast")
	if c.HandleKey(escKey) {
		t.Error("HandleKey() consumed a key with only toasts open")
	}
	if len(c.Overlays()) != 1 {
		t.Error("toast removed by Escape")
	}
}

func TestResolveAndConcurrentSettle(t *testing.T) {
	c := NewCenter()
	p := c.Confirm("race", "", ConfirmOptions{})

	var wg sync.WaitGroup
	results := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(confirm bool) {
			defer wg.Done()
			results <- c.Resolve(p.ID(), confirm)
		}(i%2 == 0)
	}
	wg.Wait()
	close(results)

	won := 0
	for ok := range results {
		if ok {
			won++
		}
	}
	if won != 1 {
		t.Errorf("%d Resolve calls settled the dialog, want exactly 1", won)
	}
	if err := p.Wait(context.Background()); err != nil && !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v", err)
	}
}

func TestHandleCloseCancelsDialog(t *testing.T) {
	c := NewCenter()
	p := c.Confirm("x", "", ConfirmOptions{})
	(&Handle{c: c, id: p.ID()}).Close()

	if err := p.Wait(context.Background()); !errors.Is(err, ErrCancelled) {
		t.Errorf("Wait() = %v, want ErrCancelled", err)
	}
}

func TestWaitHonoursContext(t *testing.T) {
	c := NewCenter()
	p := c.Confirm("x", "", ConfirmOptions{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() = %v, want context.Canceled", err)
	}
	if !c.HasDialog() {
		t.Error("cancelling Wait should not close the dialog")
	}
}

func TestRender(t *testing.T) {
	c := NewCenter()
	if got := c.Render("base", 80, 24); got != "base" {
		t.Errorf("Render() with empty stack = %q, want base", got)
	}

	c.Success("已复制链接")
	out := c.Render("base", 80, 24)
	if !strings.HasPrefix(out, "base\n") || !strings.Contains(out, "已复制链接") {
		t.Errorf("Render() with toast = %q", out)
	}

	c.Confirm("删除该网站？", "确认删除", ConfirmOptions{Type: TypeWarning, ConfirmText: "删除"})
	out = c.Render("base", 80, 24)
	if strings.Contains(out, "base") {
		t.Error("dialog render should replace the base view")
	}
	for _, want := range []string{"确认删除", "删除该网站？", "删除", DefaultCancelText} {
		if !strings.Contains(out, want) {
			t.Errorf("dialog render missing %q", want)
		}
	}
}

func TestAccent(t *testing.T) {
	if accent(KindConfirm, TypeWarning) != colorRed {
		t.Error("warning dialog should use red accent")
	}
	if accent(KindConfirm, TypeError) != colorBlue || accent(KindConfirm, TypeInfo) != colorBlue {
		t.Error("non-warning dialogs should use blue accent")
	}
	if accent(KindToast, TypeSuccess) != colorGreen {
		t.Error("success toast should be green")
	}
}
