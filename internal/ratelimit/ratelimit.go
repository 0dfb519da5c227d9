package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter spaces out calls to the chat providers so a held-down Enter
// key cannot burn through an API quota.
type RateLimiter struct {
	window  *rate.Limiter
	spacing *rate.Limiter
}

// New creates a limiter allowing maxRequests per perDuration, with at least
// minInterval between consecutive calls. Non-positive arguments fall back to
// 60 requests per minute and 100ms spacing.
func New(maxRequests int, perDuration time.Duration, minInterval time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 60
	}
	if perDuration <= 0 {
		perDuration = time.Minute
	}
	if minInterval <= 0 {
		minInterval = 100 * time.Millisecond
	}

	refill := perDuration / time.Duration(maxRequests)
	if refill <= 0 {
		refill = time.Nanosecond
	}

	return &RateLimiter{
		window:  rate.NewLimiter(rate.Every(refill), maxRequests),
		spacing: rate.NewLimiter(rate.Every(minInterval), 1),
	}
}

// Wait blocks until a call is allowed or ctx is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	if err := rl.spacing.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", wrapCtx(ctx, err))
	}
	if err := rl.window.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", wrapCtx(ctx, err))
	}
	return nil
}

// wrapCtx prefers the context error so callers can match it with errors.Is.
// rate.Limiter reports a would-exceed-deadline condition with its own error.
func wrapCtx(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return err
}
