package notify

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Notifier is the capability UI code receives to raise notifications.
type Notifier interface {
	Show(opts Options) *Handle
	Success(message string) *Handle
	Warning(message string) *Handle
	Error(message string) *Handle
	Info(message string) *Handle
	SuccessWith(opts Options) *Handle
	WarningWith(opts Options) *Handle
	ErrorWith(opts Options) *Handle
	InfoWith(opts Options) *Handle
	DismissTop() bool
	Confirm(message, title string, opts ConfirmOptions) *Pending
}

// Center owns the overlay stack. It is safe for concurrent use: commands
// running off the UI goroutine may raise notifications.
type Center struct {
	mu            sync.Mutex
	overlays      []*Overlay
	nextID        int
	toastDuration time.Duration
	now           func() time.Time
}

var _ Notifier = (*Center)(nil)

type CenterOption func(*Center)

// WithToastDuration sets the default lifetime of toasts.
func WithToastDuration(d time.Duration) CenterOption {
	return func(c *Center) {
		if d > 0 {
			c.toastDuration = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CenterOption {
	return func(c *Center) {
		if now != nil {
			c.now = now
		}
	}
}

func NewCenter(opts ...CenterOption) *Center {
	c := &Center{
		nextID:        1,
		toastDuration: DefaultToastDuration,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Handle closes the overlay it was returned for.
type Handle struct {
	c  *Center
	id int
}

// ID returns the overlay id.
func (h *Handle) ID() int {
	return h.id
}

// Close removes the overlay. Closing twice is a no-op.
func (h *Handle) Close() {
	if h == nil || h.c == nil {
		return
	}
	h.c.remove(h.id, nil)
}

// Show pushes a toast. Type defaults to info.
func (c *Center) Show(opts Options) *Handle {
	if opts.Type == "" {
		opts.Type = TypeInfo
	}
	duration := opts.Duration
	switch {
	case duration == 0:
		duration = c.toastDuration
	case duration < 0:
		duration = 0
	}

	id := c.push(&Overlay{
		Kind:     KindToast,
		Type:     opts.Type,
		Message:  opts.Message,
		Duration: duration,
		OnClose:  opts.OnClose,
	})
	return &Handle{c: c, id: id}
}

func (c *Center) Success(message string) *Handle {
	return c.SuccessWith(Options{Message: message})
}

func (c *Center) Warning(message string) *Handle {
	return c.WarningWith(Options{Message: message})
}

func (c *Center) Error(message string) *Handle {
	return c.ErrorWith(Options{Message: message})
}

func (c *Center) Info(message string) *Handle {
	return c.InfoWith(Options{Message: message})
}

// SuccessWith shows opts as a success toast; opts.Type is ignored.
func (c *Center) SuccessWith(opts Options) *Handle {
	opts.Type = TypeSuccess
	return c.Show(opts)
}

func (c *Center) WarningWith(opts Options) *Handle {
	opts.Type = TypeWarning
	return c.Show(opts)
}

func (c *Center) ErrorWith(opts Options) *Handle {
	opts.Type = TypeError
	return c.Show(opts)
}

func (c *Center) InfoWith(opts Options) *Handle {
	opts.Type = TypeInfo
	return c.Show(opts)
}

// DismissTop closes the newest toast as if the user dismissed it. Dialogs
// are left alone. It reports whether a toast was removed.
func (c *Center) DismissTop() bool {
	c.mu.Lock()
	id := 0
	for i := len(c.overlays) - 1; i >= 0; i-- {
		if c.overlays[i].Kind == KindToast {
			id = c.overlays[i].ID
			break
		}
	}
	c.mu.Unlock()

	if id == 0 {
		return false
	}
	return c.remove(id, nil)
}

// Confirm opens a modal dialog. The returned Pending settles with nil when
// the user confirms and with ErrCancelled on cancel or Escape.
func (c *Center) Confirm(message, title string, opts ConfirmOptions) *Pending {
	if title == "" {
		title = DefaultTitle
	}
	if opts.ConfirmText == "" {
		opts.ConfirmText = DefaultConfirmText
	}
	if opts.CancelText == "" {
		opts.CancelText = DefaultCancelText
	}
	if opts.Type == "" {
		opts.Type = TypeInfo
	}

	p := newPending()
	id := c.push(&Overlay{
		Kind:        KindConfirm,
		Type:        opts.Type,
		Title:       title,
		Message:     message,
		ConfirmText: opts.ConfirmText,
		CancelText:  opts.CancelText,
		Focus:       ButtonConfirm,
		OnConfirm:   func() { p.settle(nil) },
		OnCancel:    func() { p.settle(ErrCancelled) },
	})
	p.id = id
	return p
}

// HandleKey routes a key press to the top-most dialog. It reports whether
// the key was consumed; keys are never consumed while no dialog is open.
func (c *Center) HandleKey(msg tea.KeyMsg) bool {
	c.mu.Lock()
	top := c.topDialogLocked()
	if top == nil {
		c.mu.Unlock()
		return false
	}
	id := top.ID

	var confirm, settle bool
	switch msg.String() {
	case "esc", "n":
		settle = true
	case "y":
		settle, confirm = true, true
	case "enter", " ":
		settle, confirm = true, top.Focus == ButtonConfirm
	case "tab", "right", "l":
		top.Focus = (top.Focus + 1) % buttonCount
	case "shift+tab", "left", "h":
		top.Focus = (top.Focus - 1 + buttonCount) % buttonCount
	}
	c.mu.Unlock()

	if settle {
		c.resolve(id, confirm)
	}
	return true
}

// Resolve settles the dialog with the given id as if the user picked a
// button. It reports whether the dialog was still open.
func (c *Center) Resolve(id int, confirm bool) bool {
	return c.resolve(id, confirm)
}

func (c *Center) resolve(id int, confirm bool) bool {
	return c.remove(id, func(o *Overlay) func() {
		if confirm {
			return o.OnConfirm
		}
		return o.OnCancel
	})
}

// Tick drops toasts that expired at now.
func (c *Center) Tick(now time.Time) {
	c.mu.Lock()
	var expired []func()
	kept := c.overlays[:0]
	for _, o := range c.overlays {
		if o.Expired(now) {
			if o.OnClose != nil {
				expired = append(expired, o.OnClose)
			}
			continue
		}
		kept = append(kept, o)
	}
	for i := len(kept); i < len(c.overlays); i++ {
		c.overlays[i] = nil
	}
	c.overlays = kept
	c.mu.Unlock()

	for _, fn := range expired {
		fn()
	}
}

// TickMsg drives toast expiry.
type TickMsg struct {
	Time time.Time
}

// TickCmd schedules the next TickMsg.
func TickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// Overlays returns a snapshot of the stack, oldest first.
func (c *Center) Overlays() []Overlay {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Overlay, len(c.overlays))
	for i, o := range c.overlays {
		out[i] = *o
	}
	return out
}

// HasDialog reports whether a confirmation dialog is open.
func (c *Center) HasDialog() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topDialogLocked() != nil
}

func (c *Center) push(o *Overlay) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	o.ID = c.nextID
	c.nextID++
	o.CreatedAt = c.now()
	c.overlays = append(c.overlays, o)
	return o.ID
}

// remove takes the overlay with id off the stack and then runs the callback
// chosen by pick (if any) followed by OnClose. Only the call that actually
// removes the overlay runs callbacks, so each runs at most once.
func (c *Center) remove(id int, pick func(*Overlay) func()) bool {
	c.mu.Lock()
	var removed *Overlay
	for i, o := range c.overlays {
		if o.ID == id {
			removed = o
			c.overlays = append(c.overlays[:i], c.overlays[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	if removed == nil {
		return false
	}
	if removed.Kind == KindConfirm && pick == nil {
		// Closing a dialog through its handle counts as a cancel.
		pick = func(o *Overlay) func() { return o.OnCancel }
	}
	if pick != nil {
		if fn := pick(removed); fn != nil {
			fn()
		}
	}
	if removed.OnClose != nil {
		removed.OnClose()
	}
	return true
}

func (c *Center) topDialogLocked() *Overlay {
	for i := len(c.overlays) - 1; i >= 0; i-- {
		if c.overlays[i].Kind == KindConfirm {
			return c.overlays[i]
		}
	}
	return nil
}

// Pending is the outcome of a confirmation dialog.
type Pending struct {
	id   int
	once sync.Once
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

// ID returns the id of the dialog overlay.
func (p *Pending) ID() int {
	return p.id
}

// Done is closed once the dialog is settled.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the outcome; it is only meaningful after Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the dialog settles or ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Pending) settle(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}
