package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewClampsRefillRate(t *testing.T) {
	rl := New(1_000_000, time.Millisecond, 0)
	if rl.window.Limit() <= 0 {
		t.Fatalf("window limit must be > 0, got %v", rl.window.Limit())
	}
	if rl.window.Burst() != 1_000_000 {
		t.Fatalf("burst = %d, want 1000000", rl.window.Burst())
	}
}

func TestNewDefaults(t *testing.T) {
	rl := New(0, 0, 0)
	if rl.window.Burst() != 60 {
		t.Errorf("default burst = %d, want 60", rl.window.Burst())
	}
}

func TestWaitAllowsFirstCall(t *testing.T) {
	rl := New(5, time.Minute, time.Millisecond)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestWaitContextCancel(t *testing.T) {
	rl := New(1, time.Minute, time.Second)

	// Consume the only token so the second call must wait.
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := rl.Wait(ctx)
	if err == nil {
		t.Fatal("expected cancellation error, got nil")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWaitDeadlineTooShort(t *testing.T) {
	rl := New(1, time.Hour, time.Millisecond)
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait() failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := rl.Wait(ctx); err == nil {
		t.Fatal("expected an error when the next token is an hour away")
	}
}

func TestNilLimiterIsNoop(t *testing.T) {
	var rl *RateLimiter
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("nil Wait() error = %v", err)
	}
}
