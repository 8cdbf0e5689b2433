package cache

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestMemoryCache_TTL(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache(time.Hour) // sweep disabled for the test's duration
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); hit || err != nil {
		t.Fatalf("expected clean miss, got hit=%v err=%v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte(`{"ok":true}`), 50*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, hit, err := c.Get(ctx, "k")
	if err != nil || !hit {
		t.Fatalf("expected hit, got hit=%v err=%v", hit, err)
	}
	if !bytes.Equal(got, []byte(`{"ok":true}`)) {
		t.Fatalf("unexpected value: %s", got)
	}

	time.Sleep(80 * time.Millisecond)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("entry should have expired")
	}
}

func TestMemoryCache_SetCopiesValue(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache(time.Hour)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()

	buf := []byte("original")
	if err := c.Set(ctx, "k", buf, time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	copy(buf, "mutated!")

	got, hit, _ := c.Get(ctx, "k")
	if !hit || string(got) != "original" {
		t.Fatalf("stored value should be decoupled from the caller's buffer, got %q", got)
	}
}

func TestMemoryCache_Sweep(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache(time.Hour)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()

	_ = c.Set(ctx, "stale", []byte("a"), 10*time.Millisecond)
	_ = c.Set(ctx, "fresh", []byte("b"), time.Minute)

	time.Sleep(30 * time.Millisecond)
	c.Sweep()

	if got := c.Len(); got != 1 {
		t.Fatalf("expected 1 entry after sweep, got %d", got)
	}
	if _, hit, _ := c.Get(ctx, "fresh"); !hit {
		t.Fatalf("fresh entry should survive the sweep")
	}
}

func TestMemoryCache_NonPositiveTTLDeletes(t *testing.T) {
	t.Parallel()

	c := NewMemoryCache(time.Hour)
	t.Cleanup(func() { c.Close() })

	ctx := context.Background()

	_ = c.Set(ctx, "k", []byte("v"), time.Minute)
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Fatalf("zero ttl should remove the entry")
	}
}

func TestNewSelectsMemoryBackend(t *testing.T) {
	t.Parallel()

	c := New(Config{Backend: "memory", SweepInterval: time.Hour}, nil)
	mc, ok := c.(*MemoryCache)
	if !ok {
		t.Fatalf("expected *MemoryCache, got %T", c)
	}
	mc.Close()
}
