// Package service runs a raw contact submission through the abuse pipeline
// and, when it survives, archives it and notifies the site owner.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"contactd/internal/contact/heuristics"
	"contactd/internal/contact/models"
	"contactd/internal/contact/sanitize"
	"contactd/internal/contact/validation"
	"contactd/internal/platform/metrics"
	rlmodels "contactd/internal/ratelimit/models"
	"contactd/pkg/platform/privacy"
	"contactd/pkg/requestcontext"
)

// RateLimiter admits or rejects a submission per dimension. It never
// errors; store failures surface as an admitted verdict.
type RateLimiter interface {
	CheckIP(ctx context.Context, ip string) *rlmodels.Verdict
	CheckEmail(ctx context.Context, email string) *rlmodels.Verdict
}

// CaptchaVerifier reduces a challenge token to a verdict.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token, ip string) bool
}

// Archiver persists an accepted message and returns its key.
type Archiver interface {
	Save(ctx context.Context, msg models.OutboundMessage) (string, error)
}

// Notifier delivers an accepted message.
type Notifier interface {
	Send(ctx context.Context, msg models.OutboundMessage) error
}

// DefaultOutboundTimeout bounds each captcha, archive and notify call.
const DefaultOutboundTimeout = 5 * time.Second

// Service is the submission dispatcher. Each check either passes or ends
// the request with an Outcome; nothing is retried.
type Service struct {
	validator       *validation.Validator
	rules           *heuristics.Rules
	limiter         RateLimiter
	captcha         CaptchaVerifier
	archive         Archiver
	notifier        Notifier
	logger          *slog.Logger
	metrics         *metrics.Metrics
	outboundTimeout time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRules(rules *heuristics.Rules) Option {
	return func(s *Service) {
		s.rules = rules
	}
}

func WithOutboundTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.outboundTimeout = d
		}
	}
}

func New(limiter RateLimiter, captcha CaptchaVerifier, archive Archiver, notifier Notifier, opts ...Option) (*Service, error) {
	if limiter == nil {
		return nil, errors.New("rate limiter is required")
	}
	if captcha == nil {
		return nil, errors.New("captcha verifier is required")
	}
	if archive == nil {
		return nil, errors.New("archiver is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}

	svc := &Service{
		validator:       validation.New(),
		rules:           heuristics.DefaultRules(),
		limiter:         limiter,
		captcha:         captcha,
		archive:         archive,
		notifier:        notifier,
		logger:          slog.Default(),
		outboundTimeout: DefaultOutboundTimeout,
	}
	for _, opt := range opts {
		opt(svc)
	}
	if svc.rules == nil {
		return nil, errors.New("heuristic rules are required")
	}
	return svc, nil
}

// Submit processes one raw JSON body. The client IP, request time and
// request id are read from ctx.
func (s *Service) Submit(ctx context.Context, raw []byte) models.Outcome {
	return s.finish(ctx, s.submit(ctx, raw))
}

func (s *Service) submit(ctx context.Context, raw []byte) models.Outcome {
	requestID := requestcontext.RequestID(ctx)
	ip := requestcontext.ClientIP(ctx)

	res, err := s.validator.Validate(raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "unreadable contact payload", "error", err, "request_id", requestID)
		return serverError()
	}

	// A filled honeypot wins over field issues so bots learn nothing.
	if heuristics.IsHoneypot(res.Honeypot) {
		s.logger.InfoContext(ctx, "honeypot triggered", "ip", privacy.AnonymizeIP(ip), "request_id", requestID)
		return models.Outcome{Kind: models.OutcomeHoneypot}
	}

	if !res.Valid() {
		return models.Outcome{Kind: models.OutcomeInvalid, Message: models.MsgValidationFailed, Issues: res.Issues}
	}
	sub := res.Submission

	if s.rules.TooFast(sub, requestcontext.Now(ctx)) {
		return models.Outcome{Kind: models.OutcomeTooFast, Message: models.MsgTooFast}
	}

	if v := s.limiter.CheckIP(ctx, ip); !v.Allowed {
		return rateLimited(v)
	}

	if s.rules.IsDisposable(sub.Email) {
		s.logger.InfoContext(ctx, "disposable email rejected",
			"email_domain", privacy.EmailDomain(sub.Email),
			"request_id", requestID,
		)
		return models.Outcome{
			Kind:    models.OutcomeDisposable,
			Message: models.MsgDisposable,
			Issues:  []models.Issue{{Path: "email", Message: models.MsgDisposableIssue}},
		}
	}

	if v := s.limiter.CheckEmail(ctx, sub.Email); !v.Allowed {
		return rateLimited(v)
	}

	if !s.verifyCaptcha(ctx, sub.CaptchaToken, ip) {
		return models.Outcome{
			Kind:    models.OutcomeCaptcha,
			Message: models.MsgCaptchaFailed,
			Issues:  []models.Issue{{Path: "captcha", Message: models.MsgCaptchaIssue}},
		}
	}

	if s.rules.IsSpam(sub.Subject, sub.Message) {
		s.logger.InfoContext(ctx, "spam content rejected", "ip", privacy.AnonymizeIP(ip), "request_id", requestID)
		return models.Outcome{Kind: models.OutcomeSpam, Message: models.MsgSpam}
	}

	msg := models.OutboundMessage{
		Name:            sanitize.Text(sub.Name, sanitize.NameMax),
		Email:           sub.Email,
		Subject:         sanitize.Text(sub.Subject, sanitize.SubjectMax),
		Message:         sanitize.Text(sub.Message, sanitize.MessageMax),
		TimestampMillis: sub.TimestampMillis,
		Language:        sub.Language,
		CreatedAt:       requestcontext.Now(ctx).UTC(),
	}
	if msg.Language == "" {
		msg.Language = models.DefaultLanguage
	}

	if err := s.dispatch(ctx, msg); err != nil {
		return serverError()
	}
	return models.Outcome{Kind: models.OutcomeAccepted}
}

// verifyCaptcha runs the verifier detached from caller cancellation with a
// fixed timeout. A timeout is a failed verification.
func (s *Service) verifyCaptcha(ctx context.Context, token, ip string) bool {
	outCtx, cancel := s.outbound(ctx)
	defer cancel()
	return s.captcha.Verify(outCtx, token, ip)
}

// dispatch archives and notifies concurrently. Only the archive result
// decides the outcome; a failed notification is logged and dropped and
// never undoes the archive write.
func (s *Service) dispatch(ctx context.Context, msg models.OutboundMessage) error {
	outCtx, cancel := s.outbound(ctx)
	defer cancel()

	requestID := requestcontext.RequestID(ctx)
	var key string

	var g errgroup.Group
	g.Go(func() error {
		start := time.Now()
		k, err := s.archive.Save(outCtx, msg)
		s.observe("archive", start)
		if err != nil {
			s.logger.ErrorContext(ctx, "archive write failed", "error", err, "request_id", requestID)
			if s.metrics != nil {
				s.metrics.IncrementArchiveFailures()
			}
			return err
		}
		key = k
		return nil
	})
	g.Go(func() error {
		start := time.Now()
		err := s.notifier.Send(outCtx, msg)
		s.observe("notify", start)
		if err != nil {
			s.logger.ErrorContext(ctx, "email send failed", "error", err, "request_id", requestID)
			if s.metrics != nil {
				s.metrics.IncrementNotificationFailures()
			}
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "contact message accepted",
		"key", key,
		"email_domain", privacy.EmailDomain(msg.Email),
		"lang", msg.Language,
		"request_id", requestID,
	)
	return nil
}

func (s *Service) outbound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.outboundTimeout)
}

func (s *Service) observe(target string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveOutbound(target, time.Since(start))
	}
}

func (s *Service) finish(ctx context.Context, out models.Outcome) models.Outcome {
	if s.metrics != nil {
		s.metrics.RecordOutcome(string(out.Kind))
	}
	s.logger.DebugContext(ctx, "contact submission finished",
		"outcome", out.Kind,
		"request_id", requestcontext.RequestID(ctx),
	)
	return out
}

func rateLimited(v *rlmodels.Verdict) models.Outcome {
	return models.Outcome{
		Kind:       models.OutcomeRateLimited,
		Message:    v.Message(),
		RetryAfter: v.RetryAfter,
	}
}

func serverError() models.Outcome {
	return models.Outcome{Kind: models.OutcomeError, Message: models.MsgServerError}
}
