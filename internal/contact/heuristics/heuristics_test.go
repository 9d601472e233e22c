package heuristics

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"contactd/internal/contact/models"
)

func TestIsHoneypot(t *testing.T) {
	assert.False(t, IsHoneypot(""))
	assert.False(t, IsHoneypot("   "))
	assert.True(t, IsHoneypot("Acme Inc"))
}

func TestTooFast(t *testing.T) {
	rules := DefaultRules()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	at := func(elapsed time.Duration) *models.Submission {
		ts := now.Add(-elapsed).UnixMilli()
		return &models.Submission{TimestampMillis: &ts}
	}

	assert.True(t, rules.TooFast(at(DefaultMinFillTime-time.Millisecond), now), "one millisecond short")
	assert.False(t, rules.TooFast(at(DefaultMinFillTime), now), "exactly the threshold")
	assert.False(t, rules.TooFast(at(3*time.Second), now))
	assert.True(t, rules.TooFast(at(-time.Minute), now), "timestamp from the future")
	assert.False(t, rules.TooFast(&models.Submission{}, now), "absent timestamp skips the check")
}

func TestIsDisposable(t *testing.T) {
	rules := DefaultRules()

	assert.True(t, rules.IsDisposable("user@tempmail.com"))
	assert.True(t, rules.IsDisposable("USER@TempMail.COM"))
	assert.True(t, rules.IsDisposable("bot@mailinator.net"))
	assert.False(t, rules.IsDisposable("user@example.com"))
	assert.False(t, rules.IsDisposable("user@sub.tempmail.com"), "only exact domains are listed")
	assert.False(t, rules.IsDisposable("no-at-sign"))
}

func TestWithExtraDomains(t *testing.T) {
	rules := DefaultRules().WithExtraDomains("Burner.Example")

	assert.True(t, rules.IsDisposable("x@burner.example"))
	assert.True(t, rules.IsDisposable("x@yopmail.com"))
	assert.False(t, DefaultRules().IsDisposable("x@burner.example"), "original rules untouched")
}

func TestIsSpam(t *testing.T) {
	rules := DefaultRules()

	cases := []struct {
		subject, message string
		spam             bool
	}{
		{"Hello", "I'd like a quote for a website.", false},
		{"You are a WINNER", "Claim today.", true},
		{"Question", "Please CLICK HERE to continue.", true},
		{"Family matter", "A Nigerian Prince left you something.", true},
		{"Casinos", "casinobonus offers", false},
		{"Pricing", "What is the cost of the premium plan?", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.spam, rules.IsSpam(tc.subject, tc.message), "%q / %q", tc.subject, tc.message)
	}
}

func TestSwappableRules(t *testing.T) {
	rules := NewRules([]string{"only.example"}, []*regexp.Regexp{regexp.MustCompile(`crypto`)}, time.Second)

	assert.True(t, rules.IsDisposable("a@only.example"))
	assert.False(t, rules.IsDisposable("a@tempmail.com"))
	assert.True(t, rules.IsSpam("", "Crypto giveaway"))
	assert.False(t, rules.IsSpam("", "casino"))
}
