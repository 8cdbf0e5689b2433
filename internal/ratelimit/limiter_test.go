package ratelimit

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestCheckAllowsUpToLimit(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Minute, MaxTracked: 10}, zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		if err := l.Check(3, "1.2.3.4"); err != nil {
			t.Fatalf("request %d should be allowed: %v", i+1, err)
		}
	}

	err := l.Check(3, "1.2.3.4")
	var limErr *LimitExceededError
	if !errors.As(err, &limErr) {
		t.Fatalf("expected LimitExceededError, got %v", err)
	}
	if limErr.Key != "1.2.3.4" || limErr.Limit != 3 {
		t.Fatalf("unexpected error fields: %+v", limErr)
	}
	if limErr.RetryAfter != time.Minute {
		t.Fatalf("expected retry after one interval, got %s", limErr.RetryAfter)
	}
}

func TestCheckRejectedRequestsStillCount(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Minute, MaxTracked: 10}, zaptest.NewLogger(t))

	if err := l.Check(1, "k"); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}

	// Repeated probing never slips back under the limit.
	for i := 0; i < 5; i++ {
		if err := l.Check(1, "k"); err == nil {
			t.Fatalf("probe %d should stay rejected", i+1)
		}
	}
}

func TestCheckIndependentKeys(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Minute, MaxTracked: 10}, zaptest.NewLogger(t))

	if err := l.Check(1, "a"); err != nil {
		t.Fatalf("key a should pass: %v", err)
	}
	if err := l.Check(1, "a"); err == nil {
		t.Fatalf("key a should be over its limit")
	}
	if err := l.Check(1, "b"); err != nil {
		t.Fatalf("key b has its own window: %v", err)
	}
}

func TestCheckWindowExpires(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: 100 * time.Millisecond, MaxTracked: 10}, zaptest.NewLogger(t))

	if err := l.Check(1, "k"); err != nil {
		t.Fatalf("first request should pass: %v", err)
	}
	if err := l.Check(1, "k"); err == nil {
		t.Fatalf("second request should be rejected")
	}

	time.Sleep(300 * time.Millisecond)

	if err := l.Check(1, "k"); err != nil {
		t.Fatalf("request after window expiry should pass: %v", err)
	}
}

func TestTrackedKeysBounded(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Minute, MaxTracked: 2}, zaptest.NewLogger(t))

	_ = l.Check(10, "a")
	_ = l.Check(10, "b")
	_ = l.Check(10, "c")

	if got := l.Tracked(); got != 2 {
		t.Fatalf("expected 2 tracked keys, got %d", got)
	}
	if l.Contains("a") {
		t.Fatalf("oldest key should have been evicted")
	}
	if !l.Contains("b") || !l.Contains("c") {
		t.Fatalf("newest keys should still be tracked")
	}
}

func TestEvictionFollowsRecency(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Minute, MaxTracked: 2}, zaptest.NewLogger(t))

	_ = l.Check(10, "a")
	_ = l.Check(10, "b")
	// Touch a so b becomes the least recently used.
	_ = l.Check(10, "a")
	_ = l.Check(10, "c")

	if l.Contains("b") {
		t.Fatalf("least recently used key should have been evicted")
	}
	if !l.Contains("a") || !l.Contains("c") {
		t.Fatalf("recently used keys should still be tracked")
	}
}

func TestEvictedKeyGetsFreshWindow(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: time.Minute, MaxTracked: 2}, zaptest.NewLogger(t))

	if err := l.Check(1, "a"); err != nil {
		t.Fatalf("key a should pass: %v", err)
	}
	if err := l.Check(1, "a"); err == nil {
		t.Fatalf("key a should be over its limit")
	}

	// Force a out of the store.
	for i := 0; i < 2; i++ {
		_ = l.Check(1, fmt.Sprintf("filler-%d", i))
	}
	if l.Contains("a") {
		t.Fatalf("key a should have been evicted")
	}

	if err := l.Check(1, "a"); err != nil {
		t.Fatalf("evicted key starts a fresh window: %v", err)
	}
}

func TestRetryAfterSecondsRoundsUp(t *testing.T) {
	t.Parallel()

	l := New(Config{Interval: 1500 * time.Millisecond, MaxTracked: 10}, zaptest.NewLogger(t))
	if got := l.RetryAfterSeconds(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}
