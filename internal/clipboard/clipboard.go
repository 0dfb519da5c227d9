package clipboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrUnsupported is returned when no clipboard utility is available.
var ErrUnsupported = errors.New("clipboard not supported on this system")

// Writer receives text copied by the UI.
type Writer interface {
	Copy(text string) error
}

// Clipboard reads and writes text.
type Clipboard interface {
	Writer
	Paste() (string, error)
}

// System is the OS clipboard.
type System struct{}

// Available reports whether the OS clipboard can be used.
func (System) Available() bool {
	return !clipboard.Unsupported
}

// Copy writes text to the system clipboard.
func (s System) Copy(text string) error {
	if !s.Available() {
		return ErrUnsupported
	}
	if strings.TrimSpace(text) == "" {
		return errors.New("nothing to copy")
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

// Paste reads text from the system clipboard.
func (s System) Paste() (string, error) {
	if !s.Available() {
		return "", ErrUnsupported
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}
