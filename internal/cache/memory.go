package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	createdAt time.Time
	expiresAt time.Time
}

// MemoryCache is the in-process ResponseCache. Reads check entry age
// against the TTL; a background sweep removes stale entries on a timer so
// memory stays bounded even when nothing reads them.
type MemoryCache struct {
	mu            sync.RWMutex
	items         map[string]memoryEntry
	stopSweep     chan struct{}
	sweepOnce     sync.Once
	sweepInterval time.Duration
}

// NewMemoryCache starts a cache whose sweep runs every sweepInterval
// (default one minute).
func NewMemoryCache(sweepInterval time.Duration) *MemoryCache {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	c := &MemoryCache{
		items:         make(map[string]memoryEntry),
		stopSweep:     make(chan struct{}),
		sweepInterval: sweepInterval,
	}

	go c.sweepLoop()

	return c
}

// Get returns the stored value while it is younger than its TTL.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}

	now := time.Now()
	if now.After(entry.expiresAt) {
		c.mu.Lock()
		if e, exists := c.items[key]; exists && now.After(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false, nil
	}

	return entry.value, true, nil
}

// Set stores value for ttl. A non-positive ttl removes the entry.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil
	}

	// Copy to decouple from the caller's buffer.
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	now := time.Now()

	c.mu.Lock()
	c.items[key] = memoryEntry{
		value:     valueCopy,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()

	return nil
}

// sweepLoop removes expired entries independent of read activity.
func (c *MemoryCache) sweepLoop() {
	ticker := time.NewTicker(c.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.Sweep()
		case <-c.stopSweep:
			return
		}
	}
}

// Sweep removes every entry past its TTL.
func (c *MemoryCache) Sweep() {
	now := time.Now()
	c.mu.Lock()
	for k, v := range c.items {
		if now.After(v.expiresAt) {
			delete(c.items, k)
		}
	}
	c.mu.Unlock()
}

// Close stops the sweep goroutine. Call on shutdown or in tests.
func (c *MemoryCache) Close() error {
	c.sweepOnce.Do(func() {
		close(c.stopSweep)
	})
	return nil
}

// Len returns the number of entries currently held.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
