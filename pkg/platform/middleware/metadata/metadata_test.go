package metadata

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contactd/pkg/requestcontext"
)

func spoofedRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/contact", nil)
	req.RemoteAddr = "198.51.100.20:54321"
	req.Header.Set("CF-Connecting-IP", "203.0.113.1")
	req.Header.Set("X-Forwarded-For", "203.0.113.2, 10.0.0.1")
	req.Header.Set("X-Real-IP", "203.0.113.3")
	return req
}

func TestClientIPFromRequest(t *testing.T) {
	cases := []struct {
		name  string
		trust ProxyTrust
		want  string
	}{
		{"none ignores every header", TrustNone, "198.51.100.20"},
		{"cloudflare reads CF-Connecting-IP only", TrustCloudflare, "203.0.113.1"},
		{"forwarded reads the first X-Forwarded-For entry", TrustForwarded, "203.0.113.2"},
		{"unknown mode falls back to the peer", ProxyTrust("bogus"), "198.51.100.20"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClientIPFromRequest(spoofedRequest(), tc.trust))
		})
	}

	t.Run("forwarded falls back to X-Real-IP", func(t *testing.T) {
		req := spoofedRequest()
		req.Header.Del("X-Forwarded-For")
		assert.Equal(t, "203.0.113.3", ClientIPFromRequest(req, TrustForwarded))
	})

	t.Run("trusted header absent uses the peer", func(t *testing.T) {
		req := spoofedRequest()
		req.Header.Del("CF-Connecting-IP")
		assert.Equal(t, "198.51.100.20", ClientIPFromRequest(req, TrustCloudflare))
	})
}

func TestParseProxyTrust(t *testing.T) {
	for in, want := range map[string]ProxyTrust{
		"":            TrustNone,
		"none":        TrustNone,
		" Cloudflare": TrustCloudflare,
		"XFF":         TrustForwarded,
	} {
		got, err := ParseProxyTrust(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseProxyTrust("everything")
	assert.Error(t, err)
}

func TestClientMetadataMiddleware(t *testing.T) {
	var gotIP, gotUA, gotOrigin string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotIP = requestcontext.ClientIP(r.Context())
		gotUA = requestcontext.UserAgent(r.Context())
		gotOrigin = requestcontext.Origin(r.Context())
	})

	req := spoofedRequest()
	req.Header.Set("User-Agent", "curl/8.0")
	req.Header.Set("Origin", "https://example.com")
	ClientMetadata(TrustNone)(next).ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "198.51.100.20", gotIP)
	assert.Equal(t, "curl/8.0", gotUA)
	assert.Equal(t, "https://example.com", gotOrigin)
}
