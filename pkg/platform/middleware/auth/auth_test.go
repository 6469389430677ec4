package auth

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"willgate/pkg/domain"
)

type stubValidator struct {
	claims *JWTClaims
	err    error
}

func (v stubValidator) ValidateToken(string) (*JWTClaims, error) {
	return v.claims, v.err
}

func TestRequireAuth(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	wallet := domain.MustParseAddress("0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed")

	var seen domain.Address
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetWallet(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	t.Run("valid token sets identity", func(t *testing.T) {
		seen = ""
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer good")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{claims: &JWTClaims{Wallet: wallet}}, logger)(next).ServeHTTP(rr, r)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, wallet, seen)
	})

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{}, logger)(next).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		var body map[string]string
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, "unauthorized", body["error"])
	})

	t.Run("invalid token", func(t *testing.T) {
		seen = ""
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer bad")
		rr := httptest.NewRecorder()
		RequireAuth(stubValidator{err: errors.New("bad signature")}, logger)(next).ServeHTTP(rr, r)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.True(t, seen.IsNil())
	})
}
