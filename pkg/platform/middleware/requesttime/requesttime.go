// Package requesttime pins one "now" per request so audit timestamps, vote
// times and snapshot times agree within a request.
package requesttime

import (
	"net/http"
	"time"

	"willgate/pkg/requestcontext"
)

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
