package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"studygate-gateway/internal/cache"
	"studygate-gateway/internal/config"
	"studygate-gateway/internal/handlers"
	"studygate-gateway/internal/httpserver"
	"studygate-gateway/internal/llm"
	"studygate-gateway/internal/metrics"
	"studygate-gateway/internal/ratelimit"
	"studygate-gateway/pkg/logging/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("gateway exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			logger.Error("missing upstream API key, set OPENAI_API_KEY")
		}
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("cache_backend", cfg.CacheBackend),
		zap.String("redis_addr", cfg.RedisAddr),
		zap.String("openai_base_url", cfg.OpenAIBaseURL),
		zap.String("openai_model", cfg.OpenAIModel),
		zap.Int("requests_per_minute", cfg.RequestsPerMinute),
		zap.Duration("rate_limit_interval", cfg.RateLimitInterval),
	)

	// ----- Redis client (only if needed) -----
	var redisClient *redis.Client
	if cfg.CacheBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})

		// Fail fast if Redis is misconfigured
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Error("redis connection failed", zap.Error(err))
			return err
		}
		logger.Info("redis connection established",
			zap.String("addr", cfg.RedisAddr),
		)
	}

	// ----- Response cache -----
	responseCache := cache.New(cache.Config{
		Backend:       cfg.CacheBackend,
		TTL:           cfg.CacheTTL,
		SweepInterval: cfg.CacheSweepInterval,
		Prefix:        "studygate",
	}, redisClient)
	responseCache = cache.NewLoggingCache(responseCache)

	// ----- Rate limiter -----
	limiter := ratelimit.New(ratelimit.Config{
		Interval:   cfg.RateLimitInterval,
		MaxTracked: cfg.MaxTrackedIPs,
	}, logger)

	// ----- LLM client -----
	llmClient, err := llm.NewClient(llm.Config{
		BaseURL: cfg.OpenAIBaseURL,
		APIKey:  cfg.OpenAIAPIKey,
		Model:   cfg.OpenAIModel,
	}, logger)
	if err != nil {
		return err
	}
	if closer, ok := llmClient.(interface{ Close() error }); ok {
		defer closer.Close()
	}

	// ----- Handlers -----
	aiHandler := handlers.NewAIHandler(handlers.Options{
		Cache:          responseCache,
		CacheTTL:       cfg.CacheTTL,
		Limiter:        limiter,
		Limit:          cfg.RequestsPerMinute,
		LLM:            llmClient,
		ChunkThreshold: cfg.TranscriptChunkThreshold,
		MinWordCount:   cfg.MinWordCount,
		MaxWordCount:   cfg.MaxWordCount,
	})

	// ----- Router + middleware -----
	r := chi.NewRouter()
	httpserver.SetupRouter(r, logger, aiHandler, cfg.RequestTimeout, cfg.MaxBodyBytes)

	// ----- HTTP server -----
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	logger.Info("starting gateway",
		zap.String("addr", srv.Addr),
		zap.String("cache_backend", cfg.CacheBackend),
	)

	// Start server in background
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
