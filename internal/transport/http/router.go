// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"contactd/internal/kv"
	"contactd/internal/platform/middleware"
	"contactd/pkg/platform/httputil"
	"contactd/pkg/platform/middleware/metadata"
	"contactd/pkg/platform/middleware/requesttime"
)

const healthTimeout = 2 * time.Second

// RouteRegistrar is implemented by feature handlers.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Deps are the collaborators the router mounts. Health may be nil when the
// store is in-process. An empty TrustProxy trusts no forwarding headers.
type Deps struct {
	Logger     *slog.Logger
	Gatherer   prometheus.Gatherer
	Health     kv.HealthChecker
	TrustProxy metadata.ProxyTrust
	Handlers   []RouteRegistrar
}

// NewRouter builds the chi router with the shared middleware chain,
// /healthz, /metrics and every feature handler.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata(deps.TrustProxy))
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", healthHandler(deps.Health))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}
	for _, h := range deps.Handlers {
		h.Register(r)
	}
	return r
}

func healthHandler(checker kv.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "memory"})
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := checker.Health(ctx); err != nil {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "store": "redis"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "store": "redis"})
	}
}
