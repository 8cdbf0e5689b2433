package middleware

import (
	"fmt"
	"net/http"

	"studygate-gateway/pkg/logging/logging"

	"go.uber.org/zap"
)

// MaxBodySize rejects bodies larger than n bytes with 413. Requests that
// declare an oversized Content-Length are rejected up front; the rest are
// capped while reading so a lying client cannot stream past the limit.
func MaxBodySize(n int64) func(http.Handler) http.Handler {
	message := fmt.Sprintf(`{"error":"Request body too large. Maximum size is %dMB."}`, n/(1024*1024))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > n {
				logger := logging.L(r.Context())
				logger.Warn("request body too large",
					zap.Int64("content_length", r.ContentLength),
					zap.Int64("max_bytes", n),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				_, _ = w.Write([]byte(message))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, n)
			next.ServeHTTP(w, r)
		})
	}
}
