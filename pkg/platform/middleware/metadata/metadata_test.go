package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"willgate/pkg/requestcontext"
)

func TestClientIPFromRequest(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{name: "forwarded chain", headers: map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, remote: "10.0.0.2:80", want: "1.2.3.4"},
		{name: "real ip", headers: map[string]string{"X-Real-IP": " 5.6.7.8 "}, remote: "10.0.0.2:80", want: "5.6.7.8"},
		{name: "ipv4 remote", remote: "127.0.0.1:5555", want: "127.0.0.1"},
		{name: "ipv6 remote", remote: "[::1]:5555", want: "::1"},
		{name: "empty remote", remote: "", want: "unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIPFromRequest(r))
		})
	}
}

func TestClientMetadata(t *testing.T) {
	var ip, ua string
	h := ClientMetadata(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ip = requestcontext.ClientIP(r.Context())
		ua = requestcontext.UserAgent(r.Context())
	}))
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.168.1.9:1234"
	r.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X)")
	h.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, "192.168.1.9", ip)
	assert.Contains(t, ua, "iPhone")
}
