package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"studygate-gateway/internal/handlers"
	"studygate-gateway/internal/metrics"
	"studygate-gateway/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, aiHandler *handlers.AIHandler, requestTimeout time.Duration, maxBodyBytes int64) {

	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())               // panic recovery
	r.Use(middleware.Timeout(requestTimeout))   // request deadline, also bounds the retry budget
	r.Use(middleware.MaxBodySize(maxBodyBytes)) // transcript uploads can be large

	// routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/ai", aiHandler.Dispatch)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
