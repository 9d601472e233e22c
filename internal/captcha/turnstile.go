// Package captcha verifies challenge tokens against Cloudflare Turnstile.
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"contactd/internal/platform/config"
	"contactd/internal/platform/metrics"
	"contactd/pkg/platform/privacy"
)

// DefaultVerifyURL is the Turnstile siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Turnstile checks tokens against the siteverify API. It never returns an
// error; every failure is a false verdict.
type Turnstile struct {
	secret     string
	strict     bool
	verifyURL  string
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

type Option func(*Turnstile)

func WithHTTPClient(c *http.Client) Option {
	return func(t *Turnstile) {
		t.httpClient = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Turnstile) {
		t.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Turnstile) {
		t.metrics = m
	}
}

// NewTurnstile builds a verifier from cfg. With no secret configured the
// verifier passes every token unless cfg.Strict is set, in which case it
// fails every token.
func NewTurnstile(cfg config.CaptchaConfig, opts ...Option) *Turnstile {
	t := &Turnstile{
		secret:     cfg.Secret,
		strict:     cfg.Strict,
		verifyURL:  cfg.VerifyURL,
		httpClient: &http.Client{Timeout: 5 * time.Second},
		logger:     slog.Default(),
	}
	if t.verifyURL == "" {
		t.verifyURL = DefaultVerifyURL
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Enabled reports whether tokens are checked against the provider.
func (t *Turnstile) Enabled() bool {
	return t.secret != ""
}

func (t *Turnstile) Verify(ctx context.Context, token, ip string) bool {
	if !t.Enabled() {
		if t.strict {
			t.logger.WarnContext(ctx, "captcha secret missing in strict mode, rejecting")
			return false
		}
		return true
	}
	if strings.TrimSpace(token) == "" {
		return false
	}

	start := time.Now()
	ok, err := t.siteverify(ctx, token, ip)
	if t.metrics != nil {
		t.metrics.ObserveOutbound("captcha", time.Since(start))
	}
	if err != nil {
		t.logger.WarnContext(ctx, "captcha verification failed",
			"error", err,
			"ip", privacy.AnonymizeIP(ip),
		)
		return false
	}
	return ok
}

func (t *Turnstile) siteverify(ctx context.Context, token, ip string) (bool, error) {
	form := url.Values{
		"secret":   {t.secret},
		"response": {token},
	}
	if ip != "" {
		form.Set("remoteip", ip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := t.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return false, fmt.Errorf("siteverify returned status %d", res.StatusCode)
	}

	var out struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success && len(out.ErrorCodes) > 0 {
		t.logger.InfoContext(ctx, "captcha token rejected", "error_codes", out.ErrorCodes)
	}
	return out.Success, nil
}
