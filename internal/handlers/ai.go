package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"studygate-gateway/internal/cache"
	"studygate-gateway/internal/clientip"
	"studygate-gateway/internal/llm"
	"studygate-gateway/internal/metrics"
	"studygate-gateway/internal/ratelimit"
	"studygate-gateway/internal/study"
	"studygate-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// AIHandler is the dispatch gateway for POST /api/ai. Per request it
// resolves the client IP, applies the rate limiter, validates the operation
// request, consults the response cache, and only then dispatches upstream
// through the retrying client, repairing and parsing the completion before
// caching and returning it.
type AIHandler struct {
	Cache    cache.ResponseCache
	CacheTTL time.Duration

	Limiter *ratelimit.Limiter
	Limit   int

	LLM llm.Client

	ChunkThreshold int
	MinWordCount   int
	MaxWordCount   int
}

type Options struct {
	Cache          cache.ResponseCache
	CacheTTL       time.Duration
	Limiter        *ratelimit.Limiter
	Limit          int
	LLM            llm.Client
	ChunkThreshold int
	MinWordCount   int
	MaxWordCount   int
}

func NewAIHandler(opts Options) *AIHandler {
	return &AIHandler{
		Cache:          opts.Cache,
		CacheTTL:       opts.CacheTTL,
		Limiter:        opts.Limiter,
		Limit:          opts.Limit,
		LLM:            opts.LLM,
		ChunkThreshold: opts.ChunkThreshold,
		MinWordCount:   opts.MinWordCount,
		MaxWordCount:   opts.MaxWordCount,
	}
}

// Dispatch handles POST /api/ai.
func (h *AIHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	ip := clientip.FromHeaders(r.Header, logger)
	logger = logger.With(zap.String("client_ip", ip))

	// ---- Rate limiter gate ----
	if err := h.Limiter.Check(h.Limit, ip); err != nil {
		var limErr *ratelimit.LimitExceededError
		if errors.As(err, &limErr) {
			metrics.RateLimitedTotal.Inc()

			retryAfter := h.Limiter.RetryAfterSeconds()
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(h.Limit))
			w.Header().Set("X-RateLimit-Reset",
				strconv.FormatInt(time.Now().Add(h.Limiter.Interval()).UnixMilli(), 10))

			h.finish(logger, "", ip, http.StatusTooManyRequests, start, err)
			h.writeJSON(w, http.StatusTooManyRequests, map[string]any{
				"error":      "Too many requests. Please try again later.",
				"retryAfter": retryAfter,
			})
			return
		}
		h.finish(logger, "", ip, http.StatusInternalServerError, start, err)
		h.writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	// ---- Decode + validate the operation request ----
	var req study.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.finish(logger, "", ip, http.StatusRequestEntityTooLarge, start, err)
			h.writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Request body too large. Maximum size is %dMB.", maxBytesErr.Limit/(1024*1024)))
			return
		}
		h.finish(logger, "", ip, http.StatusBadRequest, start, err)
		h.writeError(w, http.StatusBadRequest, "Missing request body")
		return
	}

	op := string(req.Type)

	if err := req.Validate(); err != nil {
		h.finish(logger, op, ip, http.StatusBadRequest, start, err)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Normalize()

	if status, msg, ok := h.checkWordCount(req.Transcript); !ok {
		h.finish(logger, op, ip, status, start, errors.New(msg))
		h.writeError(w, status, msg)
		return
	}

	// ---- Large-transcript policy ----
	sampled, partial := study.SampleTranscript(req.Transcript, h.ChunkThreshold)
	if partial {
		logger.Info("transcript sampled",
			zap.Int("original_chars", len(req.Transcript)),
			zap.Int("sample_chars", len(sampled)),
		)
	}

	// ---- Response cache lookup ----
	key := cache.BuildFingerprint(op, req.Language, sampled, req.Count).String()

	cached, hit, cacheErr := h.Cache.Get(ctx, key)
	if cacheErr != nil {
		// Best-effort cache; treat errors as a miss.
		logger.Warn("response_cache_get_error", zap.Error(cacheErr))
	}
	if hit {
		h.finish(logger, op, ip, http.StatusOK, start, nil)
		h.writeRaw(w, cached)
		return
	}

	// ---- Upstream dispatch through the retry engine ----
	temperature, maxTokens := study.Tuning(req.Type)
	text, err := h.LLM.Complete(ctx, &llm.CompletionRequest{
		Prompt:      study.BuildPrompt(&req, sampled),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		status, msg := h.classifyUpstreamError(logger, err)
		h.finish(logger, op, ip, status, start, err)
		h.writeError(w, status, msg)
		return
	}

	// ---- Repair + parse the completion ----
	payload, err := study.ParseResponse(req.Type, text)
	if err != nil {
		// The raw text stays server-side for diagnosis.
		logger.Error("response_parse_error",
			zap.Error(err),
			zap.String("raw_response", text),
		)
		h.finish(logger, op, ip, http.StatusInternalServerError, start, err)
		h.writeError(w, http.StatusInternalServerError, "Failed to parse AI response")
		return
	}

	respBytes, err := json.Marshal(payload)
	if err != nil {
		h.finish(logger, op, ip, http.StatusInternalServerError, start, err)
		h.writeError(w, http.StatusInternalServerError, "An unexpected error occurred")
		return
	}

	// Only successful, fully parsed results are cached.
	if err := h.Cache.Set(ctx, key, respBytes, h.CacheTTL); err != nil {
		logger.Warn("response_cache_set_error", zap.Error(err))
	}

	h.finish(logger, op, ip, http.StatusOK, start, nil)
	h.writeRaw(w, respBytes)
}

// checkWordCount enforces the configured transcript bounds.
func (h *AIHandler) checkWordCount(transcript string) (status int, msg string, ok bool) {
	if transcript == "" {
		return 0, "", true
	}
	words := study.CountWords(transcript)
	if words < h.MinWordCount {
		return http.StatusBadRequest, fmt.Sprintf(
			"Transcript too short. Minimum %d words required, but got %d words.",
			h.MinWordCount, words), false
	}
	if words > h.MaxWordCount {
		return http.StatusRequestEntityTooLarge, fmt.Sprintf(
			"Transcript too long. Maximum %d words allowed, but got %d words.",
			h.MaxWordCount, words), false
	}
	return 0, "", true
}

// classifyUpstreamError maps retry-engine terminal states to a status and a
// caller-safe message. Both terminal states surface as 500; the log labels
// stay distinct for triage.
func (h *AIHandler) classifyUpstreamError(logger *zap.Logger, err error) (int, string) {
	switch {
	case errors.Is(err, llm.ErrTimeout):
		logger.Error("upstream_timeout", zap.Error(err))
	case errors.Is(err, llm.ErrMaxRetriesExceeded):
		logger.Error("upstream_max_retries_exceeded", zap.Error(err))
	default:
		logger.Error("upstream_error", zap.Error(err))
	}
	return http.StatusInternalServerError, "The AI service is currently unavailable. Please try again later."
}

// finish emits the structured per-request record before the caller-facing
// message is written.
func (h *AIHandler) finish(logger *zap.Logger, op, ip string, status int, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("type", op),
		zap.String("client_ip", ip),
		zap.Int("status", status),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	logger.Info("ai_request", fields...)
}

func (h *AIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *AIHandler) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *AIHandler) writeRaw(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
