// Package notify shows transient toasts and modal confirmation dialogs on
// top of the terminal UI. Both are described by the same Overlay value and
// live on one stack owned by a Center.
package notify

import (
	"errors"
	"time"
)

// Type tags an overlay and picks its accent colour.
type Type string

const (
	TypeInfo    Type = "info"
	TypeSuccess Type = "success"
	TypeWarning Type = "warning"
	TypeError   Type = "error"
)

// Kind distinguishes toasts from dialogs.
type Kind int

const (
	KindToast Kind = iota
	KindConfirm
)

// Dialog defaults.
const (
	DefaultTitle       = "提示"
	DefaultConfirmText = "确定"
	DefaultCancelText  = "取消"
)

// DefaultToastDuration applies when neither the Center nor the caller sets
// one.
const DefaultToastDuration = 3 * time.Second

// ErrCancelled resolves a confirmation that was cancelled or dismissed with
// Escape.
var ErrCancelled = errors.New("用户取消")

// Dialog buttons, in display order.
const (
	ButtonCancel = iota
	ButtonConfirm
	buttonCount
)

// Overlay is one entry on the stack.
type Overlay struct {
	ID      int
	Kind    Kind
	Type    Type
	Title   string
	Message string

	ConfirmText string
	CancelText  string

	// Duration is how long a toast stays up; zero or negative keeps it until
	// it is closed.
	Duration  time.Duration
	CreatedAt time.Time

	OnConfirm func()
	OnCancel  func()
	OnClose   func()

	// Focus is the highlighted dialog button.
	Focus int
}

// Expired reports whether a toast has outlived its duration at now.
func (o Overlay) Expired(now time.Time) bool {
	if o.Kind != KindToast || o.Duration <= 0 {
		return false
	}
	return now.Sub(o.CreatedAt) >= o.Duration
}

// Options configure a toast.
type Options struct {
	Message string
	Type    Type
	// Duration overrides the Center default. Negative keeps the toast until
	// it is closed.
	Duration time.Duration
	OnClose  func()
}

// ConfirmOptions configure a confirmation dialog.
type ConfirmOptions struct {
	Type        Type
	ConfirmText string
	CancelText  string
}
