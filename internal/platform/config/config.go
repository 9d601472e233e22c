package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Server captures process level configuration.
type Server struct {
	Addr           string
	Environment    string
	LogLevel       slog.Level
	LogFormat      string
	AllowedOrigins []string
	MaxBodyBytes   int64
	// TrustProxy selects which forwarding headers name the client IP:
	// none, cloudflare or xff.
	TrustProxy string

	Redis   RedisConfig
	Captcha CaptchaConfig
	Notify  NotifyConfig
	Contact ContactConfig
}

// RedisConfig configures the shared key-value store. An empty URL selects
// the in-memory store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// CaptchaConfig configures Turnstile verification. Strict decides what a
// missing secret means; it is never inferred from the secret itself.
type CaptchaConfig struct {
	Secret    string
	Strict    bool
	VerifyURL string
}

// NotifyConfig selects and configures the notification provider.
type NotifyConfig struct {
	Provider       string
	SendGridAPIKey string
	SendGridURL    string
	To             []string
	From           string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string

	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// ContactConfig carries the submission pipeline knobs.
type ContactConfig struct {
	MinFillTime            time.Duration
	ArchiveTTL             time.Duration
	OutboundTimeout        time.Duration
	ExtraDisposableDomains []string
}

// DefaultAllowedOrigins are echoed back in Access-Control-Allow-Origin.
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"https://kinaltech-dev.web.app",
}

// FromEnv builds a Server config from environment variables so main stays
// lean. A .env file in the working directory is loaded first when present.
func FromEnv() Server {
	_ = godotenv.Load()

	env := getEnv("APP_ENV", EnvDevelopment)
	production := env == EnvProduction

	origins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(origins) == 0 {
		origins = DefaultAllowedOrigins
	}

	logFormat := "text"
	if production {
		logFormat = "json"
	}

	return Server{
		Addr:           getEnv("CONTACT_ADDR", ":8080"),
		Environment:    env,
		LogLevel:       parseLevel(os.Getenv("LOG_LEVEL")),
		LogFormat:      getEnv("LOG_FORMAT", logFormat),
		AllowedOrigins: origins,
		MaxBodyBytes:   int64(getInt("MAX_BODY_BYTES", 64<<10)),
		TrustProxy:     getEnv("TRUST_PROXY", "none"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", time.Second),
		},
		Captcha: CaptchaConfig{
			Secret:    os.Getenv("TURNSTILE_SECRET"),
			Strict:    getBool("CAPTCHA_STRICT", production),
			VerifyURL: getEnv("TURNSTILE_VERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify"),
		},
		Notify: NotifyConfig{
			Provider:       getEnv("NOTIFY_PROVIDER", "sendgrid"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			SendGridURL:    getEnv("SENDGRID_URL", "https://api.sendgrid.com/v3/mail/send"),
			To:             splitList(os.Getenv("CONTACT_TO")),
			From:           os.Getenv("CONTACT_FROM"),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getInt("SMTP_PORT", 587),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),

			BreakerThreshold: getInt("NOTIFY_BREAKER_THRESHOLD", 5),
			BreakerCooldown:  getDuration("NOTIFY_BREAKER_COOLDOWN", time.Minute),
		},
		Contact: ContactConfig{
			MinFillTime:            getDuration("MIN_FILL_TIME", 2*time.Second),
			ArchiveTTL:             getDuration("ARCHIVE_TTL", 365*24*time.Hour),
			OutboundTimeout:        getDuration("OUTBOUND_TIMEOUT", 5*time.Second),
			ExtraDisposableDomains: splitList(os.Getenv("DISPOSABLE_DOMAINS_EXTRA")),
		},
	}
}

// IsProduction reports whether the process runs with production defaults.
func (s Server) IsProduction() bool {
	return s.Environment == EnvProduction
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// splitList splits a comma separated value, trimming entries and dropping
// empty and repeated ones. Order is preserved.
func splitList(s string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if _, dup := seen[part]; dup {
			continue
		}
		seen[part] = struct{}{}
		out = append(out, part)
	}
	return out
}
