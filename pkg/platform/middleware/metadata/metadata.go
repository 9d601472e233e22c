package metadata

import (
	"fmt"
	"net"
	"net/http"
	"strings"

	"contactd/pkg/requestcontext"
)

// ProxyTrust names which forwarding headers are believed when resolving the
// client IP. Headers are client-controlled unless a proxy in front of the
// server overwrites them, so the default trusts none.
type ProxyTrust string

const (
	// TrustNone uses the TCP peer address only.
	TrustNone ProxyTrust = "none"
	// TrustCloudflare believes CF-Connecting-IP, which the Cloudflare edge
	// always overwrites.
	TrustCloudflare ProxyTrust = "cloudflare"
	// TrustForwarded believes X-Forwarded-For, then X-Real-IP, as set by a
	// reverse proxy the operator controls.
	TrustForwarded ProxyTrust = "xff"
)

// ParseProxyTrust maps a config value onto a ProxyTrust. Empty means
// TrustNone.
func ParseProxyTrust(s string) (ProxyTrust, error) {
	switch t := ProxyTrust(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TrustNone, nil
	case TrustNone, TrustCloudflare, TrustForwarded:
		return t, nil
	default:
		return "", fmt.Errorf("unknown proxy trust mode %q", s)
	}
}

// ClientMetadata extracts client IP address, User-Agent and Origin from the
// request and adds them to the context for use by handlers and services.
// This middleware should be applied early in the chain.
func ClientMetadata(trust ProxyTrust) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := requestcontext.WithClientMetadata(r.Context(), ClientIPFromRequest(r, trust), r.Header.Get("User-Agent"))
			ctx = requestcontext.WithOrigin(ctx, r.Header.Get("Origin"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest resolves the client IP. Forwarding headers are read
// only in the mode that trusts them; anything else, including a trusted
// header that is absent, falls back to the peer address.
func ClientIPFromRequest(r *http.Request, trust ProxyTrust) string {
	switch trust {
	case TrustCloudflare:
		if cf := strings.TrimSpace(r.Header.Get("CF-Connecting-IP")); cf != "" {
			return cf
		}
	case TrustForwarded:
		// X-Forwarded-For can contain multiple IPs (client, proxy1, proxy2, ...).
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}

	return remoteHost(r.RemoteAddr)
}

func remoteHost(addr string) string {
	if addr == "" {
		return ""
	}
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
