// Package auth authenticates wallet session tokens and puts the caller's
// address on the request context.
package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"willgate/pkg/domain"
	dErrors "willgate/pkg/domain-errors"
	"willgate/pkg/platform/httputil"
	request "willgate/pkg/platform/middleware/request"
	"willgate/pkg/requestcontext"
)

// JWTValidator validates a bearer token.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is what the middleware needs from a validated token.
type JWTClaims struct {
	Wallet domain.Address
	JTI    string
}

// GetWallet returns the authenticated caller, or the zero Address.
func GetWallet(ctx context.Context) domain.Address {
	return requestcontext.Identity(ctx)
}

func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "missing or invalid Authorization header"))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", request.GetRequestID(ctx),
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token"))
				return
			}

			ctx = requestcontext.WithIdentity(ctx, claims.Wallet)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
