package testutil

import (
	"net/http"

	"willgate/pkg/domain"
	"willgate/pkg/requestcontext"
)

// WithIdentity adds a wallet identity to the request context, as the auth
// middleware would for an authenticated request. Invalid addresses are ignored.
func WithIdentity(req *http.Request, wallet string) *http.Request {
	addr, err := domain.ParseAddress(wallet)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithIdentity(req.Context(), addr))
}

// WithRequestID tags the request the way the request-id middleware does.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
