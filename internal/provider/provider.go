// Package provider describes the chat-completion APIs the app can talk to.
// Each provider is plain data: where to send a prompt, how to shape the
// request body and how to pull text out of one streamed event.
package provider

import (
	"fmt"
	"net/http"
	"sort"
)

// Provider keys.
const (
	ChatGPT  = "chatgpt"
	DeepSeek = "deepseek"
	Claude   = "claude"
)

// DoneSentinel is the payload OpenAI-compatible streams end with.
const DoneSentinel = "[DONE]"

// Descriptor is one chat-completion API.
type Descriptor struct {
	Key   string
	Name  string
	URL   string
	Model string
	// Order fixes the position in listings.
	Order int

	// Headers returns the request headers for apiKey.
	Headers func(apiKey string) http.Header
	// FormatRequest builds the request body for a single user message.
	FormatRequest func(model, message string) ([]byte, error)
	// ParseDelta extracts the incremental text of one event payload. It
	// returns "" for events that carry no text.
	ParseDelta func(data []byte) (string, error)
	// Done reports whether data marks the end of the stream.
	Done func(data []byte) bool
}

// Override replaces the endpoint or model of a descriptor. Empty fields keep
// the built-in value.
type Override struct {
	URL   string `mapstructure:"url"`
	Model string `mapstructure:"model"`
}

// Registry is an immutable set of descriptors keyed by Descriptor.Key.
type Registry struct {
	byKey map[string]Descriptor
}

// NewRegistry builds a registry from descriptors; duplicate keys are an
// error.
func NewRegistry(descriptors ...Descriptor) (*Registry, error) {
	byKey := make(map[string]Descriptor, len(descriptors))
	for _, d := range descriptors {
		if d.Key == "" {
			return nil, fmt.Errorf("provider key is required")
		}
		if d.FormatRequest == nil || d.ParseDelta == nil || d.Headers == nil {
			return nil, fmt.Errorf("provider %s is incomplete", d.Key)
		}
		if _, dup := byKey[d.Key]; dup {
			return nil, fmt.Errorf("duplicate provider %s", d.Key)
		}
		byKey[d.Key] = d
	}
	return &Registry{byKey: byKey}, nil
}

// Default returns the built-in providers with overrides applied.
func Default(overrides map[string]Override) *Registry {
	builtin := []Descriptor{openAI(), deepSeek(), claude()}
	for i, d := range builtin {
		if o, ok := overrides[d.Key]; ok {
			if o.URL != "" {
				d.URL = o.URL
			}
			if o.Model != "" {
				d.Model = o.Model
			}
			builtin[i] = d
		}
	}
	r, err := NewRegistry(builtin...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the descriptor for key.
func (r *Registry) Lookup(key string) (Descriptor, bool) {
	d, ok := r.byKey[key]
	return d, ok
}

// List returns all descriptors in display order.
func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.byKey))
	for _, d := range r.byKey {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// Keys returns the provider keys in display order.
func (r *Registry) Keys() []string {
	list := r.List()
	keys := make([]string, len(list))
	for i, d := range list {
		keys[i] = d.Key
	}
	return keys
}
