package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxMessageLength caps a single chat message, in characters.
	MaxMessageLength = 32000
)

// ValidateAPIKey checks that a provider key is configured. Only length is
// checked: the gateways the app can point at issue keys in many formats.
func ValidateAPIKey(provider, apiKey string) error {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("%s API key is not configured", provider)
	}
	if len(apiKey) < 8 {
		return fmt.Errorf("%s API key appears to be invalid (too short)", provider)
	}
	return nil
}

// ValidateMessage checks a chat message before it is sent.
func ValidateMessage(text string) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	if n := utf8.RuneCountInString(text); n > MaxMessageLength {
		return fmt.Errorf("message exceeds maximum length of %d characters (got %d)", MaxMessageLength, n)
	}
	return nil
}

// ValidatePath checks a backend path given on the command line.
func ValidatePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("path must start with '/', got %q", path)
	}
	if strings.ContainsAny(path, " \t\n\r") {
		return fmt.Errorf("path contains whitespace")
	}
	return nil
}
