// Package request holds per-request helpers shared by the HTTP and
// WebSocket layers: client address extraction and the context keys the
// middleware chain uses to pass values to handlers.
package request

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/kmazur/interview-copilot/internal/auth"
)

type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a copy of ctx carrying the resolved principal.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the principal stored by the auth
// middleware. Requests that bypass the middleware resolve to Anonymous.
func PrincipalFromContext(ctx context.Context) auth.Principal {
	if p, ok := ctx.Value(principalKey).(auth.Principal); ok {
		return p
	}
	return auth.Anonymous
}

// ClientIP extracts the originating client address, honoring proxy
// headers in order of trust: X-Forwarded-For (first hop), X-Real-IP,
// then the connection's remote address.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.Index(fwd, ","); idx >= 0 {
			fwd = fwd[:idx]
		}
		if ip := strings.TrimSpace(fwd); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
