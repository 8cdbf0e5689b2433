package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResponseCache deduplicates identical dispatches: a successfully parsed
// response is stored under its request fingerprint and served to identical
// requests until the TTL elapses. Best-effort and non-durable; losing it
// only causes recomputation.
//
// Implemented by the memory cache (default) and the Redis cache.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Config struct {
	Backend       string // "memory" or "redis"
	TTL           time.Duration
	SweepInterval time.Duration
	Prefix        string
}

// New selects a cache backend. The redis client is only consulted for
// Backend == "redis".
func New(cfg Config, redisClient *redis.Client) ResponseCache {
	switch cfg.Backend {
	case "redis":
		return NewRedisCache(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
		})
	default:
		return NewMemoryCache(cfg.SweepInterval)
	}
}
