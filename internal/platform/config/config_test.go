package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("CAPTCHA_STRICT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("TRUST_PROXY", "")

	cfg := FromEnv()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.False(t, cfg.Captcha.Strict)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Second, cfg.Contact.MinFillTime)
	assert.Equal(t, 365*24*time.Hour, cfg.Contact.ArchiveTTL)
	assert.Equal(t, 5*time.Second, cfg.Contact.OutboundTimeout)
	assert.Equal(t, 5, cfg.Notify.BreakerThreshold)
	assert.Equal(t, time.Minute, cfg.Notify.BreakerCooldown)
	assert.Equal(t, int64(64<<10), cfg.MaxBodyBytes)
	assert.Equal(t, "none", cfg.TrustProxy)
}

func TestFromEnvCaptchaStrictness(t *testing.T) {
	t.Run("production defaults to strict", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProduction)
		t.Setenv("CAPTCHA_STRICT", "")
		assert.True(t, FromEnv().Captcha.Strict)
	})

	t.Run("explicit flag wins over environment", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvProduction)
		t.Setenv("CAPTCHA_STRICT", "false")
		assert.False(t, FromEnv().Captcha.Strict)
	})

	t.Run("secret presence does not imply strictness", func(t *testing.T) {
		t.Setenv("APP_ENV", EnvDevelopment)
		t.Setenv("CAPTCHA_STRICT", "")
		t.Setenv("TURNSTILE_SECRET", "s3cret")
		cfg := FromEnv()
		assert.Equal(t, "s3cret", cfg.Captcha.Secret)
		assert.False(t, cfg.Captcha.Strict)
	})
}

func TestFromEnvLists(t *testing.T) {
	t.Setenv("CONTACT_TO", " a@example.com, ,b@example.com,a@example.com ")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://example.com")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("MIN_FILL_TIME", "1500ms")

	cfg := FromEnv()

	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.Notify.To)
	assert.Equal(t, []string{"https://example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, 1500*time.Millisecond, cfg.Contact.MinFillTime)
}
