package llm

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"studygate-gateway/internal/metrics"

	"go.uber.org/zap"
)

// doWithRetry wraps an HTTP call with the retry state machine.
// It attempts the request up to MaxRetries+1 times (initial + retries).
//   - Retries on 429, 5xx, and transient network errors only; other 4xx
//     responses propagate immediately.
//   - An explicit Retry-After hint overrides the computed backoff.
//   - Backoff is exponential with a jitter factor in [0.5, 1.0], capped
//     at MaxBackoff.
//   - Stops once BudgetFraction of the caller's deadline has elapsed
//     (ErrTimeout) or attempts run out (ErrMaxRetriesExceeded).
func (c *client) doWithRetry(
	ctx context.Context,
	body []byte,
	do func(ctx context.Context, body []byte) (*http.Response, error),
) (*http.Response, error) {
	var lastErr error
	maxAttempts := c.cfg.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	start := time.Now()

	// Share of the caller's deadline available for retrying; the rest is
	// reserved for producing a final response.
	var budget time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		budget = time.Duration(float64(time.Until(deadline)) * c.cfg.BudgetFraction)
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		attemptStart := time.Now()
		resp, err := do(ctx, body)
		duration := time.Since(attemptStart)

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		c.logger.Debug("llm upstream attempt",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.Error(err),
		)

		var condition string
		var hint time.Duration

		if err != nil {
			// Only the caller's context going away is terminal. A single
			// attempt hitting its per-attempt timeout also surfaces as a
			// deadline error, but that is a transport failure and goes
			// through the transient classification like any other.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}

			if !isTransientNetError(err) {
				c.logger.Debug("non-retryable network error", zap.Error(err))
				return nil, err
			}

			lastErr = err
			condition = "network-error"
		} else if !shouldRetryStatus(status) {
			// Success or a non-retryable HTTP status (other 4xx).
			return resp, nil
		} else {
			lastErr = fmt.Errorf("upstream status %d", status)
			if status == http.StatusTooManyRequests {
				condition = "rate-limited"
			} else {
				condition = "server-error"
			}

			// Read the hint before closing the body so the connection
			// can be reused.
			hint = parseRetryAfter(resp)
			if resp.Body != nil {
				resp.Body.Close()
			}
		}

		if attempt == maxAttempts-1 {
			break
		}

		delay := hint
		if delay <= 0 {
			delay = computeDelay(c.cfg.BaseBackoff, c.cfg.MaxBackoff, attempt)
		}

		if budget > 0 && time.Since(start)+delay > budget {
			c.logger.Warn("llm retry budget exhausted",
				zap.Int("attempts", attempt+1),
				zap.Duration("elapsed", time.Since(start)),
				zap.Duration("budget", budget),
			)
			return nil, fmt.Errorf("%w after %d attempts: %v", ErrTimeout, attempt+1, lastErr)
		}

		c.logger.Info("retrying llm request",
			zap.String("condition", condition),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Bool("hinted", hint > 0),
		)
		metrics.UpstreamRetriesTotal.WithLabelValues(condition).Inc()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	c.logger.Warn("llm request exhausted all retries",
		zap.Int("attempts", maxAttempts),
		zap.Error(lastErr),
	)

	if lastErr == nil {
		lastErr = errors.New("unknown upstream error")
	}
	return nil, fmt.Errorf("%w (%d attempts): %v", ErrMaxRetriesExceeded, maxAttempts, lastErr)
}

// isTransientNetError reports whether a network error is worth retrying.
func isTransientNetError(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTimeout || dnsErr.IsTemporary
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Op == "dial" || opErr.Op == "read" || opErr.Op == "write" {
			return true
		}
	}

	// Wrapped errors sometimes only expose the message.
	errStr := strings.ToLower(err.Error())
	transientPatterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"no such host",
		"temporary failure",
	}
	for _, pattern := range transientPatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}

	return false
}

// shouldRetryStatus reports whether the HTTP status is a retryable
// condition.
func shouldRetryStatus(status int) bool {
	switch {
	case status == 0:
		// No response received.
		return true
	case status == http.StatusTooManyRequests:
		return true
	case status == http.StatusRequestTimeout:
		return true
	case status >= 500 && status <= 599:
		return true
	default:
		return false
	}
}

// parseRetryAfter extracts the retry delay from a Retry-After header.
// Returns 0 if the header is missing or invalid.
//
// Retry-After can be a number of seconds ("120") or an HTTP date.
func parseRetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}

	const maxRetryAfter = 5 * time.Minute

	if seconds, err := strconv.Atoi(strings.TrimSpace(retryAfter)); err == nil {
		if seconds > 0 {
			d := time.Duration(seconds) * time.Second
			if d > maxRetryAfter {
				d = maxRetryAfter
			}
			return d
		}
		return 0
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		d := time.Until(t)
		if d > maxRetryAfter {
			d = maxRetryAfter
		}
		if d > 0 {
			return d
		}
	}

	return 0
}

// computeDelay calculates base * 2^attempt, capped at max, then scales it
// by a uniform jitter factor in [0.5, 1.0] so concurrent callers do not
// retry in lockstep.
func computeDelay(base, max time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = time.Second
	}
	if max <= 0 {
		max = 30 * time.Second
	}

	// Cap the exponent to keep the shift from overflowing.
	const maxExponent = 10
	if attempt > maxExponent {
		attempt = maxExponent
	}

	delay := base << uint(attempt)
	if delay > max || delay <= 0 {
		delay = max
	}

	jitter := 0.5 + 0.5*rand.Float64()
	return time.Duration(float64(delay) * jitter)
}
