package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"contactd/internal/contact/models"
)

// ErrCircuitOpen is returned while the provider is considered down.
var ErrCircuitOpen = errors.New("notification circuit open")

// Breaker wraps a Notifier and stops calling it after threshold consecutive
// failures. While open, Send fails immediately; after cooldown one send is
// let through and its result decides whether the circuit closes again.
type Breaker struct {
	next   Notifier
	logger *slog.Logger
	now    func() time.Time

	mu        sync.Mutex
	threshold int
	cooldown  time.Duration
	failures  int
	openUntil time.Time
	open      bool
	// probing is set while the single half-open send is in flight.
	probing bool
}

type BreakerOption func(*Breaker)

func WithBreakerLogger(logger *slog.Logger) BreakerOption {
	return func(b *Breaker) {
		b.logger = logger
	}
}

func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		b.now = now
	}
}

// NewBreaker wraps next. Non-positive threshold and cooldown fall back to
// 5 failures and one minute.
func NewBreaker(next Notifier, threshold int, cooldown time.Duration, opts ...BreakerOption) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = time.Minute
	}
	b := &Breaker{
		next:      next,
		logger:    slog.Default(),
		now:       time.Now,
		threshold: threshold,
		cooldown:  cooldown,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Breaker) Send(ctx context.Context, msg models.OutboundMessage) error {
	if !b.allow() {
		return ErrCircuitOpen
	}
	err := b.next.Send(ctx, msg)
	if err != nil {
		if b.recordFailure() {
			b.logger.WarnContext(ctx, "notification circuit opened",
				"failures", b.threshold,
				"cooldown", b.cooldown,
				"error", err,
			)
		}
		return err
	}
	b.recordSuccess()
	return nil
}

// IsOpen reports whether sends are currently short-circuited.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open && (b.probing || b.now().Before(b.openUntil))
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return true
	}
	if b.probing || b.now().Before(b.openUntil) {
		return false
	}
	// Half-open: exactly one caller probes until it reports back.
	b.probing = true
	return true
}

// recordFailure reports whether this failure opened the circuit. A failed
// probe reopens it for another cooldown.
func (b *Breaker) recordFailure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	if b.probing {
		b.probing = false
		b.openUntil = b.now().Add(b.cooldown)
		return true
	}
	if b.failures >= b.threshold && !b.open {
		b.open = true
		b.openUntil = b.now().Add(b.cooldown)
		return true
	}
	return false
}

func (b *Breaker) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.open = false
	b.probing = false
}
