// Package chat sends a prompt to a chat-completion provider and ingests the
// streamed reply.
package chat

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/maximbilan/qianxun/internal/provider"
	"github.com/maximbilan/qianxun/internal/ratelimit"
	"github.com/maximbilan/qianxun/internal/validation"
	"github.com/tidwall/gjson"
)

// User-facing reply texts.
const (
	EmptyReply         = "回复为空"
	UnavailablePrefix  = "抱歉，AI服务暂时不可用，请稍后再试。"
	unknownModel       = "模型不存在"
	requestFailed      = "请求失败"
	maxErrorBodyLength = 1 << 20
)

// ErrUnknownProvider is reported when a provider key is not registered.
var ErrUnknownProvider = errors.New(unknownModel)

// Result is the outcome of one SendMessage call. On failure Message is
// meant to be shown to the user as is.
type Result struct {
	Success bool
	Message string
}

// ModelInfo identifies a selectable provider.
type ModelInfo struct {
	ID   string
	Name string
}

// ChunkFunc receives each non-empty delta and the reply accumulated so far.
type ChunkFunc func(delta, accumulated string)

// Client talks to the providers of a registry.
type Client struct {
	registry   *provider.Registry
	apiKeys    map[string]string
	httpClient *http.Client
	limiter    *ratelimit.RateLimiter
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimiter makes every call wait on rl before its request.
func WithRateLimiter(rl *ratelimit.RateLimiter) Option {
	return func(c *Client) {
		c.limiter = rl
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client. apiKeys maps provider keys to their API keys.
func New(registry *provider.Registry, apiKeys map[string]string, opts ...Option) *Client {
	keys := make(map[string]string, len(apiKeys))
	for k, v := range apiKeys {
		keys[k] = v
	}
	c := &Client{
		registry:   registry,
		apiKeys:    keys,
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Models lists the registered providers in display order.
func (c *Client) Models() []ModelInfo {
	list := c.registry.List()
	out := make([]ModelInfo, len(list))
	for i, d := range list {
		out[i] = ModelInfo{ID: d.Key, Name: d.Name}
	}
	return out
}

// SendMessage sends text to the provider registered under key and streams
// the reply into onChunk. It never returns an error: every failure is folded
// into a Result with Success false.
func (c *Client) SendMessage(ctx context.Context, key, text string, onChunk ChunkFunc) Result {
	reply, err := c.stream(ctx, key, text, onChunk)
	if err != nil {
		c.logger.Error("chat request failed", "provider", key, "err", err)
		return Result{Success: false, Message: failureMessage(err)}
	}
	if reply == "" {
		return Result{Success: true, Message: EmptyReply}
	}
	return Result{Success: true, Message: reply}
}

func (c *Client) stream(ctx context.Context, key, text string, onChunk ChunkFunc) (string, error) {
	d, ok := c.registry.Lookup(key)
	if !ok {
		return "", ErrUnknownProvider
	}
	if err := validation.ValidateMessage(text); err != nil {
		return "", err
	}
	apiKey := c.apiKeys[key]
	if err := validation.ValidateAPIKey(d.Name, apiKey); err != nil {
		return "", err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := d.FormatRequest(d.Model, text)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	for name, values := range d.Headers(apiKey) {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusFailure(resp)
	}

	var acc strings.Builder
	events := newEventReader(resp.Body)
	for {
		data, err := events.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read stream: %w", err)
		}
		if d.Done != nil && d.Done(data) {
			break
		}

		delta, err := d.ParseDelta(data)
		if err != nil {
			c.logger.Warn("skipping stream event", "provider", key, "err", err)
			continue
		}
		if delta == "" {
			continue
		}

		acc.WriteString(delta)
		if onChunk != nil {
			onChunk(delta, acc.String())
		}
	}

	return acc.String(), nil
}

// statusFailure turns a non-2xx provider response into an error carrying the
// provider's own message when it sent one.
func statusFailure(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
	if msg := gjson.GetBytes(data, "error.message").String(); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("%s: %d", requestFailed, resp.StatusCode)
}

func failureMessage(err error) string {
	if err == nil || err.Error() == "" {
		return UnavailablePrefix
	}
	return fmt.Sprintf("%s (%s)", UnavailablePrefix, err.Error())
}
