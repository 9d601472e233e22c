// Package heuristics holds the stateless abuse checks run against a
// validated submission. The domain list and spam patterns are data carried
// by Rules, so they can be swapped without touching the pipeline.
package heuristics

import (
	"regexp"
	"strings"
	"time"

	"contactd/internal/contact/models"
)

// DefaultMinFillTime is how long a human needs at least to fill the form.
const DefaultMinFillTime = 2 * time.Second

// Rules is the configuration data the checks evaluate against.
type Rules struct {
	DisposableDomains map[string]struct{}
	SpamPatterns      []*regexp.Regexp
	MinFillTime       time.Duration
}

// DefaultRules returns the built-in domain list and spam patterns.
func DefaultRules() *Rules {
	return NewRules(DefaultDisposableDomains, DefaultSpamPatterns(), DefaultMinFillTime)
}

// NewRules builds Rules from plain data. Domains are lowercased.
func NewRules(domains []string, patterns []*regexp.Regexp, minFill time.Duration) *Rules {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			set[d] = struct{}{}
		}
	}
	return &Rules{
		DisposableDomains: set,
		SpamPatterns:      patterns,
		MinFillTime:       minFill,
	}
}

// WithExtraDomains returns a copy of r with more disposable domains.
func (r *Rules) WithExtraDomains(domains ...string) *Rules {
	merged := make([]string, 0, len(r.DisposableDomains)+len(domains))
	for d := range r.DisposableDomains {
		merged = append(merged, d)
	}
	merged = append(merged, domains...)
	return NewRules(merged, r.SpamPatterns, r.MinFillTime)
}

// IsHoneypot reports whether the hidden field was filled in.
func IsHoneypot(company string) bool {
	return strings.TrimSpace(company) != ""
}

// TooFast reports whether the form was submitted sooner after rendering
// than a human could manage. Without a client timestamp it never fires.
// Elapsed time equal to the threshold passes.
func (r *Rules) TooFast(sub *models.Submission, now time.Time) bool {
	if sub.TimestampMillis == nil {
		return false
	}
	elapsed := now.UnixMilli() - *sub.TimestampMillis
	return elapsed < r.MinFillTime.Milliseconds()
}

// IsDisposable reports whether the address belongs to a throwaway provider.
// The comparison is case-insensitive.
func (r *Rules) IsDisposable(email string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	_, ok := r.DisposableDomains[domain]
	return ok
}

// IsSpam reports whether subject or message match a spam pattern.
// It is a coarse filter; false positives are accepted.
func (r *Rules) IsSpam(subject, message string) bool {
	text := strings.ToLower(subject + " " + message)
	for _, p := range r.SpamPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}
