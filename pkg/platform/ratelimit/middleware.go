package ratelimit

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"

	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/httputil"
	request "willgate/pkg/platform/middleware/request"
	"willgate/pkg/requestcontext"
)

// ByClientIP limits requests per client IP. The metadata middleware must run first.
func ByClientIP(l *Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			result := l.Allow(requestcontext.ClientIP(ctx))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retry := int(math.Ceil(result.RetryAfter.Seconds()))
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", request.GetRequestID(ctx),
					"path", r.URL.Path,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
