package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"contactd/internal/archive"
	"contactd/internal/captcha"
	"contactd/internal/contact/handler"
	"contactd/internal/contact/heuristics"
	"contactd/internal/contact/service"
	"contactd/internal/kv"
	"contactd/internal/notify"
	"contactd/internal/platform/config"
	"contactd/internal/platform/httpserver"
	"contactd/internal/platform/logger"
	"contactd/internal/platform/metrics"
	"contactd/internal/platform/redis"
	rlmetrics "contactd/internal/ratelimit/metrics"
	"contactd/internal/ratelimit/service/requestlimit"
	"contactd/internal/ratelimit/store/bucket"
	httptransport "contactd/internal/transport/http"
	"contactd/pkg/platform/middleware/metadata"
)

// main wires the contact pipeline, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("contactd exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	store, health, closeStore, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	limiter, err := requestlimit.New(bucket.New(store),
		requestlimit.WithLogger(log),
		requestlimit.WithMetrics(rlmetrics.New(reg)),
	)
	if err != nil {
		return err
	}

	pipelineMetrics := metrics.New(reg)

	archiveStore, err := archive.New(store, archive.WithTTL(cfg.Contact.ArchiveTTL))
	if err != nil {
		return err
	}

	provider, err := notify.New(cfg.Notify, log)
	if err != nil {
		return err
	}
	notifier := notify.NewBreaker(provider, cfg.Notify.BreakerThreshold, cfg.Notify.BreakerCooldown,
		notify.WithBreakerLogger(log),
	)

	verifier := captcha.NewTurnstile(cfg.Captcha,
		captcha.WithLogger(log),
		captcha.WithMetrics(pipelineMetrics),
	)
	if !verifier.Enabled() {
		log.Warn("captcha secret not configured", "strict", cfg.Captcha.Strict)
	}

	rules := heuristics.DefaultRules().WithExtraDomains(cfg.Contact.ExtraDisposableDomains...)
	rules.MinFillTime = cfg.Contact.MinFillTime

	dispatcher, err := service.New(limiter, verifier, archiveStore, notifier,
		service.WithLogger(log),
		service.WithMetrics(pipelineMetrics),
		service.WithRules(rules),
		service.WithOutboundTimeout(cfg.Contact.OutboundTimeout),
	)
	if err != nil {
		return err
	}

	trust, err := metadata.ParseProxyTrust(cfg.TrustProxy)
	if err != nil {
		return err
	}
	if trust == metadata.TrustNone {
		log.Info("client IP taken from the TCP peer; set TRUST_PROXY behind a proxy")
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Gatherer:   reg,
		Health:     health,
		TrustProxy: trust,
		Handlers:   []httptransport.RouteRegistrar{
			handler.New(dispatcher, cfg.AllowedOrigins, cfg.MaxBodyBytes, log),
		},
	})

	srv := httpserver.New(cfg.Addr, router)

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting contactd", "addr", cfg.Addr, "env", cfg.Environment, "notify", cfg.Notify.Provider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore selects redis when REDIS_URL is set and the in-memory store
// otherwise.
func buildStore(ctx context.Context, cfg config.Server, log *slog.Logger) (kv.Store, kv.HealthChecker, func(), error) {
	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, nil, nil, err
	}
	if client == nil {
		log.Warn("REDIS_URL not set, using in-memory store; limits are per process")
		return kv.NewMemoryStore(), nil, func() {}, nil
	}

	log.Info("connected to redis")
	store := kv.NewRedisStore(client.Client)
	return store, store, func() { _ = client.Close() }, nil
}
