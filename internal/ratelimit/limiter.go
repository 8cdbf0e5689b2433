// Package ratelimit implements a fixed-window per-key request counter over
// a bounded, time-expiring store. Entries expire one interval after
// creation; when the store is full the least-recently-used key is evicted
// in favor of the new client.
package ratelimit

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
)

type Config struct {
	// Interval is the counting window. A key's counter lives for one
	// interval from first sight, regardless of later activity.
	Interval time.Duration

	// MaxTracked bounds the number of distinct keys held at once.
	MaxTracked int
}

// LimitExceededError reports that a key went over its window limit. It is a
// recoverable condition; RetryAfter tells the caller when the window opens.
type LimitExceededError struct {
	Key        string
	Limit      int
	RetryAfter time.Duration
}

func (e *LimitExceededError) Error() string {
	return fmt.Sprintf("ratelimit: key %s exceeded limit of %d requests per %s",
		e.Key, e.Limit, e.RetryAfter)
}

type counter struct {
	n int
}

// Limiter tracks request counts per key. Safe for concurrent use.
type Limiter struct {
	mu     sync.Mutex
	cfg    Config
	store  *expirable.LRU[string, *counter]
	logger *zap.Logger
}

func New(cfg Config, logger *zap.Logger) *Limiter {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = 500
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Limiter{
		cfg:    cfg,
		store:  expirable.NewLRU[string, *counter](cfg.MaxTracked, nil, cfg.Interval),
		logger: logger.Named("ratelimit"),
	}
}

// Check records one request for key and reports whether it stays within
// limit. The rejected request itself counts against the window, so probing
// the limit never resets a caller's state.
func (l *Limiter) Check(limit int, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.store.Get(key)
	if !ok {
		// First sight within the current window. Adding may evict the
		// least-recently-used key when the store is at capacity.
		l.store.Add(key, &counter{n: 1})
		return nil
	}

	// Incrementing through the pointer keeps the entry's TTL anchored at
	// its creation time.
	c.n++

	if c.n > limit {
		l.logger.Info("rate limit exceeded",
			zap.String("key", key),
			zap.Int("count", c.n),
			zap.Int("limit", limit),
		)
		return &LimitExceededError{
			Key:        key,
			Limit:      limit,
			RetryAfter: l.cfg.Interval,
		}
	}
	return nil
}

// Interval returns the configured counting window.
func (l *Limiter) Interval() time.Duration {
	return l.cfg.Interval
}

// RetryAfterSeconds returns the suggested client wait, rounded up to whole
// seconds for the Retry-After header.
func (l *Limiter) RetryAfterSeconds() int {
	return int(math.Ceil(l.cfg.Interval.Seconds()))
}

// Tracked reports how many distinct keys are currently held.
func (l *Limiter) Tracked() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.Len()
}

// Contains reports whether key is currently tracked, without counting a
// request or refreshing recency.
func (l *Limiter) Contains(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.store.Peek(key)
	return ok
}
