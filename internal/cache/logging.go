package cache

import (
	"context"
	"strings"
	"time"

	"studygate-gateway/internal/metrics"
	"studygate-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// LoggingCache wraps a ResponseCache with logging + metrics.
type LoggingCache struct {
	inner ResponseCache
}

func NewLoggingCache(inner ResponseCache) ResponseCache {
	return &LoggingCache{inner: inner}
}

func (c *LoggingCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		metrics.CacheHitsTotal.Inc()
	}

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}
	if op, hash, ok := splitKey(key); ok {
		fields = append(fields,
			zap.String("operation", op),
			zap.String("hash", hash),
		)
	}

	if err != nil {
		logger.Error("response_cache_get", append(fields, zap.Error(err))...)
	} else {
		logger.Info("response_cache_get", fields...)
	}

	return value, ok, err
}

func (c *LoggingCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("cache_key", key),
		zap.Int("value_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}
	if op, hash, ok := splitKey(key); ok {
		fields = append(fields,
			zap.String("operation", op),
			zap.String("hash", hash),
		)
	}

	if err != nil {
		logger.Error("response_cache_set", append(fields, zap.Error(err))...)
	} else {
		logger.Info("response_cache_set", fields...)
	}

	return err
}

// splitKey decomposes a Fingerprint.String() key: ai:<operation>:<hash>.
func splitKey(key string) (operation, hash string, ok bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] != "ai" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
