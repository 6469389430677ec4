// Package httpapi assembles the service's HTTP surface.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"willgate/internal/platform/metrics"
	"willgate/pkg/platform/httputil"
	"willgate/pkg/platform/middleware/metadata"
	request "willgate/pkg/platform/middleware/request"
	"willgate/pkg/platform/middleware/requesttime"
	"willgate/pkg/platform/ratelimit"
)

// Module registers its routes on the shared router.
type Module interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

const healthTimeout = 2 * time.Second

// NewRouter wires the common middleware chain, /healthz, /metrics and modules.
// A non-nil limiter throttles module routes per client IP.
func NewRouter(logger *slog.Logger, reg *prometheus.Registry, checks map[string]HealthCheck, limiter *ratelimit.Limiter, modules ...Module) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(accessLog(logger))
	r.Use(chimw.Recoverer)

	r.Get("/healthz", healthz(checks))
	if reg != nil {
		r.Handle("/metrics", metrics.Handler(reg))
	}
	r.Group(func(r chi.Router) {
		if limiter != nil {
			r.Use(ratelimit.ByClientIP(limiter, logger))
		}
		for _, m := range modules {
			m.Register(r)
		}
	})
	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		for name, check := range checks {
			if resp.Checks == nil {
				resp.Checks = make(map[string]string, len(checks))
			}
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

func accessLog(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.InfoContext(r.Context(), "http request",
				"request_id", request.GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
