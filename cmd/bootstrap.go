package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/maximbilan/qianxun/internal/api"
	"github.com/maximbilan/qianxun/internal/chat"
	"github.com/maximbilan/qianxun/internal/config"
	"github.com/maximbilan/qianxun/internal/env"
	"github.com/maximbilan/qianxun/internal/provider"
	"github.com/maximbilan/qianxun/internal/ratelimit"
)

// app holds what every command needs: the environment, the user config and
// the logger built from them.
type app struct {
	env    *env.Env
	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func bootstrap() (*app, error) {
	e, err := env.Load(".", "")
	if err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, closer, err := newLogger(cfg.LogFile, e.IsDev())
	if err != nil {
		return nil, err
	}

	return &app{env: e, cfg: cfg, logger: logger, closer: closer}, nil
}

// Close releases the log file, if any.
func (a *app) Close() {
	if a.closer != nil {
		a.closer.Close()
		a.closer = nil
	}
}

// newLogger writes to path when set and discards otherwise.
func newLogger(path string, debug bool) (*slog.Logger, io.Closer, error) {
	if path == "" {
		return slog.New(slog.NewTextHandler(io.Discard, nil)), nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.ConfigFilePerm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// baseURL prefers the environment over the config file.
func (a *app) baseURL() string {
	if u := a.env.APIBaseURL(); u != "" {
		return u
	}
	return a.cfg.APIBaseURL
}

// apiKeys merges provider keys; environment values win over the config file.
func (a *app) apiKeys() map[string]string {
	keys := a.cfg.APIKeys()
	s := a.env.Settings()
	for k, v := range map[string]string{
		provider.ChatGPT:  s.OpenAIAPIKey,
		provider.DeepSeek: s.DeepSeekAPIKey,
		provider.Claude:   s.AnthropicAPIKey,
	} {
		if v != "" {
			keys[k] = v
		}
	}
	return keys
}

func (a *app) requestTimeout() time.Duration {
	seconds := a.cfg.RequestTimeoutSeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

func (a *app) toastDuration() time.Duration {
	return time.Duration(a.cfg.ToastDurationMs) * time.Millisecond
}

// rateLimiter returns nil when limiting is disabled.
func (a *app) rateLimiter() *ratelimit.RateLimiter {
	if !a.cfg.RateLimitEnabled {
		return nil
	}
	maxRequests := a.cfg.RateLimitRequests
	if maxRequests <= 0 {
		maxRequests = 20
	}
	windowSeconds := a.cfg.RateLimitWindow
	if windowSeconds <= 0 {
		windowSeconds = 60
	}
	return ratelimit.New(maxRequests, time.Duration(windowSeconds)*time.Second, 100*time.Millisecond)
}

func (a *app) apiClient() *api.Client {
	return api.New(a.baseURL(), api.WithLogger(a.logger))
}

// chatClient streams without a client timeout; callers bound it with ctx.
func (a *app) chatClient() *chat.Client {
	opts := []chat.Option{chat.WithLogger(a.logger)}
	if rl := a.rateLimiter(); rl != nil {
		opts = append(opts, chat.WithRateLimiter(rl))
	}
	return chat.New(provider.Default(a.cfg.Providers), a.apiKeys(), opts...)
}
