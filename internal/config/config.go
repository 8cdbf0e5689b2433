// Package config loads the gateway configuration from environment
// variables, with .env file fallback for local development.
package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// ErrMissingAPIKey signals that the upstream provider key is absent. It is
// an operator remediation problem, not a transient upstream failure, and is
// reported distinctly.
var ErrMissingAPIKey = errors.New("config: OPENAI_API_KEY is required")

type Config struct {
	Port string

	// Upstream provider
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	// Rate limiting
	RequestsPerMinute int
	RateLimitInterval time.Duration
	MaxTrackedIPs     int

	// Transcript bounds
	TranscriptChunkThreshold int
	MinWordCount             int
	MaxWordCount             int
	MaxBodyBytes             int64

	// Response cache
	CacheBackend       string // "memory" or "redis"
	CacheTTL           time.Duration
	CacheSweepInterval time.Duration
	RedisAddr          string

	// Per-request deadline, bounds the retry engine's time budget.
	RequestTimeout time.Duration
}

// Load reads configuration from the environment. .env.local takes
// precedence over .env; explicit environment variables win over both.
func Load() Config {
	loadEnvFiles()

	maxFileSizeMB := getenvInt("MAX_FILE_SIZE_MB", 100)

	return Config{
		Port: getenv("PORT", "8080"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getenv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		RequestsPerMinute: getenvInt("RATE_LIMIT_REQUESTS_PER_MINUTE", 10),
		RateLimitInterval: getenvMillis("RATE_LIMIT_INTERVAL_MS", 60_000),
		MaxTrackedIPs:     getenvInt("RATE_LIMIT_MAX_TRACKED_IPS", 500),

		TranscriptChunkThreshold: getenvInt("TRANSCRIPT_CHUNK_THRESHOLD", 30_000),
		MinWordCount:             getenvInt("MIN_WORD_COUNT", 500),
		MaxWordCount:             getenvInt("MAX_WORD_COUNT", 50_000),
		MaxBodyBytes:             int64(maxFileSizeMB) * 1024 * 1024,

		CacheBackend:       getenv("CACHE_BACKEND", "memory"),
		CacheTTL:           getenvMillis("CACHE_TTL_MS", 300_000),
		CacheSweepInterval: getenvMillis("CACHE_SWEEP_INTERVAL_MS", 60_000),
		RedisAddr:          getenv("REDIS_ADDR", "127.0.0.1:6379"),

		RequestTimeout: getenvMillis("REQUEST_TIMEOUT_MS", 60_000),
	}
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// MaxFileSizeMB reports the body cap in whole megabytes for error messages.
func (c Config) MaxFileSizeMB() int64 {
	return c.MaxBodyBytes / (1024 * 1024)
}

func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		// Missing files are fine; variables already set are not overridden.
		_ = godotenv.Load(envFile)
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getenvMillis(key string, defMillis int) time.Duration {
	return time.Duration(getenvInt(key, defMillis)) * time.Millisecond
}
