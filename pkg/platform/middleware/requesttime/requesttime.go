// Package requesttime provides middleware for request-scoped time.
// All checks within a single submission (anti-speed, rate-limit windows,
// archive timestamps) observe the same "now".
package requesttime

import (
	"net/http"
	"time"

	"contactd/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and
// stores it in the context. A time already pinned on the context is kept.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, ok := requestcontext.Time(ctx); !ok {
			ctx = requestcontext.WithTime(ctx, time.Now())
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
