package requestlimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"contactd/internal/ratelimit/config"
	"contactd/internal/ratelimit/metrics"
	"contactd/internal/ratelimit/models"
	"contactd/internal/ratelimit/ports"
	"contactd/pkg/platform/privacy"
	"contactd/pkg/platform/sentinel"
	"contactd/pkg/requestcontext"
)

// BucketStore is re-exported so callers can wire the service without
// importing ports directly.
type BucketStore = ports.BucketStore

// Service enforces the nested sliding windows of each dimension.
//
// The read-filter-append-write sequence is not atomic. Concurrent requests
// for the same key can all observe the same under-limit log and all be
// admitted, overshooting the limit by up to the number of racers; the last
// write wins. Store failures fail open.
type Service struct {
	buckets BucketStore
	logger  *slog.Logger
	config  *config.Config
	metrics *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(buckets BucketStore, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("buckets store is required")
	}

	svc := &Service{
		buckets: buckets,
		config:  config.DefaultConfig(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.config == nil {
		return nil, errors.New("rate limit config is required")
	}

	return svc, nil
}

// CheckIP counts a submission against the client IP.
func (s *Service) CheckIP(ctx context.Context, ip string) *models.Verdict {
	if ip == "" {
		ip = "unknown"
	}
	return s.check(ctx, models.DimensionIP, ip, s.config.IP, privacy.AnonymizeIP(ip))
}

// CheckEmail counts a submission against the normalized submitter address.
func (s *Service) CheckEmail(ctx context.Context, email string) *models.Verdict {
	normalized := models.NormalizeEmail(email)
	return s.check(ctx, models.DimensionEmail, normalized, s.config.Email, privacy.EmailDomain(normalized))
}

// Reset clears both windows of a dimension for identifier.
func (s *Service) Reset(ctx context.Context, dimension models.Dimension, identifier string) error {
	limits, ok := s.config.For(dimension)
	if !ok {
		return fmt.Errorf("unknown rate limit dimension %q", dimension)
	}
	if dimension == models.DimensionEmail {
		identifier = models.NormalizeEmail(identifier)
	}
	for _, w := range []config.Window{limits.Short, limits.Long} {
		if err := s.buckets.Delete(ctx, models.NewKey(dimension, w.Name, identifier).String()); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) check(
	ctx context.Context,
	dimension models.Dimension,
	identifier string,
	limits config.DimensionLimit,
	logIdentifier string,
) *models.Verdict {
	now := requestcontext.Now(ctx)
	nowSec := now.Unix()

	shortKey := models.NewKey(dimension, limits.Short.Name, identifier).String()
	longKey := models.NewKey(dimension, limits.Long.Name, identifier).String()

	short, err := s.load(ctx, shortKey)
	if err != nil {
		return s.failOpen(ctx, dimension, limits, now, logIdentifier, err)
	}
	long, err := s.load(ctx, longKey)
	if err != nil {
		return s.failOpen(ctx, dimension, limits, now, logIdentifier, err)
	}

	short = liveSince(short, nowSec, limits.Short.Length)
	long = liveSince(long, nowSec, limits.Long.Length)

	// Either window can reject on its own. When both do, report the one
	// that stays closed longer so Retry-After is not a false promise.
	var rejected *models.Verdict
	for _, w := range []struct {
		window config.Window
		log    []int64
	}{
		{limits.Short, short},
		{limits.Long, long},
	} {
		if len(w.log) < w.window.Limit {
			continue
		}
		resetAt := time.Unix(earliest(w.log), 0).Add(w.window.Length)
		if rejected != nil && !resetAt.After(rejected.ResetAt) {
			continue
		}
		rejected = &models.Verdict{
			Allowed:        false,
			Dimension:      dimension,
			Limit:          w.window.Limit,
			Remaining:      0,
			ResetAt:        resetAt,
			RetryAfter:     retryAfter(now, resetAt),
			ViolatedWindow: w.window.Name,
		}
	}
	if rejected != nil {
		s.logger.InfoContext(ctx, string(dimension)+"_rate_limit_exceeded",
			"identifier", logIdentifier,
			"window", rejected.ViolatedWindow,
			"limit", rejected.Limit,
			"retry_after", rejected.RetryAfter,
			"request_id", requestcontext.RequestID(ctx),
		)
		if s.metrics != nil {
			s.metrics.RecordRejection(string(dimension), string(rejected.ViolatedWindow))
		}
		return rejected
	}

	// Admitted by both windows: record in both.
	prevShort := short
	short = append(short, nowSec)
	long = append(long, nowSec)
	if err := s.buckets.Save(ctx, shortKey, short, limits.Short.Length); err != nil {
		return s.failOpen(ctx, dimension, limits, now, logIdentifier, err)
	}
	if err := s.buckets.Save(ctx, longKey, long, limits.Long.Length); err != nil {
		s.restore(ctx, shortKey, prevShort, limits.Short.Length)
		return s.failOpen(ctx, dimension, limits, now, logIdentifier, err)
	}

	if s.metrics != nil {
		s.metrics.RecordAdmitted(string(dimension))
	}

	return &models.Verdict{
		Allowed:   true,
		Dimension: dimension,
		Limit:     limits.Tightest(),
		Remaining: max(0, min(limits.Short.Limit-len(short), limits.Long.Limit-len(long))),
		ResetAt:   time.Unix(earliest(short), 0).Add(limits.Short.Length),
	}
}

// load reads a window log. An undecodable record is discarded and treated
// as empty; the next admitted request overwrites it.
func (s *Service) load(ctx context.Context, key string) ([]int64, error) {
	timestamps, err := s.buckets.Load(ctx, key)
	if errors.Is(err, sentinel.ErrInvalidState) {
		s.logger.WarnContext(ctx, "discarding corrupt rate limit record", "key_window", key, "error", err)
		return nil, nil
	}
	return timestamps, err
}

// restore puts a window log back to its pre-admission state so a request
// that failed open is not counted in one window only. Best effort: a
// failure here leaves the extra entry to expire with the window.
func (s *Service) restore(ctx context.Context, key string, timestamps []int64, ttl time.Duration) {
	var err error
	if len(timestamps) == 0 {
		err = s.buckets.Delete(ctx, key)
	} else {
		err = s.buckets.Save(ctx, key, timestamps, ttl)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "rate limit rollback failed", "key_window", key, "error", err)
	}
}

func (s *Service) failOpen(
	ctx context.Context,
	dimension models.Dimension,
	limits config.DimensionLimit,
	now time.Time,
	logIdentifier string,
	err error,
) *models.Verdict {
	s.logger.ErrorContext(ctx, "rate limit store unavailable, failing open",
		"dimension", dimension,
		"identifier", logIdentifier,
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	if s.metrics != nil {
		s.metrics.RecordFailOpen(string(dimension))
	}
	return &models.Verdict{
		Allowed:    true,
		Dimension:  dimension,
		Limit:      limits.Tightest(),
		Remaining:  limits.Tightest(),
		ResetAt:    now.Add(limits.Short.Length),
		FailedOpen: true,
	}
}

// liveSince drops timestamps at or before now-window. Logs are appended in
// arrival order, so expired entries sit at the front.
func liveSince(timestamps []int64, nowSec int64, window time.Duration) []int64 {
	cutoff := nowSec - int64(window/time.Second)
	live := make([]int64, 0, len(timestamps)+1)
	for _, ts := range timestamps {
		if ts > cutoff {
			live = append(live, ts)
		}
	}
	return live
}

func earliest(timestamps []int64) int64 {
	oldest := timestamps[0]
	for _, ts := range timestamps[1:] {
		if ts < oldest {
			oldest = ts
		}
	}
	return oldest
}

func retryAfter(now, resetAt time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	return max(1, secs)
}
