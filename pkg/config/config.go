package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Session store backends.
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Backend  BackendConfig
	Session  SessionConfig
	Redis    RedisConfig
	Cache    CacheConfig
	CSRF     CSRFConfig
	CORS     CORSConfig
	Log      LogConfig
	Payment  PaymentConfig
	Outreach OutreachConfig
}

// BackendConfig points the portal at the coaching REST API.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls the browser session cookie and its server-side record.
type SessionConfig struct {
	CookieName    string
	TTL           time.Duration
	SecureCookie  bool
	Store         string
	LoginGuardTTL time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	TLS      bool
}

// CacheConfig governs the read-through cache of backend collections.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// CSRFConfig protects HTML form submissions.
type CSRFConfig struct {
	Enabled        bool
	Key            string
	TrustedOrigins []string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PaymentConfig tunes the mocked checkout.
type PaymentConfig struct {
	Delay time.Duration
}

// OutreachConfig holds the canned texts used by bulk lead dispatch.
type OutreachConfig struct {
	BulkEmailSubject   string
	BulkEmailPrompt    string
	BulkWhatsAppPrompt string
	EmailSubject       string
	EmailPrompt        string
	WhatsAppPrompt     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Backend = BackendConfig{
		BaseURL: strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		Timeout: parseDuration(v.GetString("BACKEND_TIMEOUT"), 15*time.Second),
	}

	store := strings.ToLower(strings.TrimSpace(v.GetString("SESSION_STORE")))
	if store != SessionStoreRedis {
		store = SessionStoreMemory
	}
	cfg.Session = SessionConfig{
		CookieName:    v.GetString("SESSION_COOKIE_NAME"),
		TTL:           parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		SecureCookie:  v.GetBool("SESSION_SECURE_COOKIE"),
		Store:         store,
		LoginGuardTTL: parseDuration(v.GetString("LOGIN_GUARD_TTL"), 30*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		TLS:      v.GetBool("REDIS_TLS"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), time.Minute),
	}

	cfg.CSRF = CSRFConfig{
		Enabled:        v.GetBool("CSRF_ENABLED"),
		Key:            v.GetString("CSRF_KEY"),
		TrustedOrigins: splitAndTrim(v.GetString("CSRF_TRUSTED_ORIGINS")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Payment = PaymentConfig{
		Delay: parseDuration(v.GetString("PAYMENT_DELAY"), 2*time.Second),
	}

	cfg.Outreach = OutreachConfig{
		BulkEmailSubject:   v.GetString("BULK_EMAIL_SUBJECT"),
		BulkEmailPrompt:    v.GetString("BULK_EMAIL_PROMPT"),
		BulkWhatsAppPrompt: v.GetString("BULK_WHATSAPP_PROMPT"),
		EmailSubject:       v.GetString("LEAD_EMAIL_SUBJECT"),
		EmailPrompt:        v.GetString("LEAD_EMAIL_PROMPT"),
		WhatsAppPrompt:     v.GetString("LEAD_WHATSAPP_PROMPT"),
	}

	if cfg.Session.Store == SessionStoreRedis && cfg.Redis.Host == "" {
		return nil, errors.New("SESSION_STORE=redis requires REDIS_HOST")
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("BACKEND_URL", "http://localhost:8000")
	v.SetDefault("BACKEND_TIMEOUT", "15s")

	v.SetDefault("SESSION_COOKIE_NAME", "portal_session")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("SESSION_STORE", SessionStoreMemory)
	v.SetDefault("LOGIN_GUARD_TTL", "30s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TLS", false)

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "1m")

	v.SetDefault("CSRF_ENABLED", true)
	v.SetDefault("CSRF_KEY", "dev-csrf-key-change-me-32-bytes!")
	v.SetDefault("CSRF_TRUSTED_ORIGINS", "localhost:8080,127.0.0.1:8080")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PAYMENT_DELAY", "2s")

	v.SetDefault("BULK_EMAIL_SUBJECT", "Update from Python Coaching")
	v.SetDefault("BULK_EMAIL_PROMPT", "Write a short update email for our students.")
	v.SetDefault("BULK_WHATSAPP_PROMPT", "Write a short update message.")
	v.SetDefault("LEAD_EMAIL_SUBJECT", "Welcome to Python Coaching")
	v.SetDefault("LEAD_EMAIL_PROMPT", "We are excited to have you interested in our Python Mastery Program. Our course offers comprehensive training, hands-on projects, and expert mentorship to help you become a proficient Python developer.\n\nWe would love to discuss your learning goals. Please feel free to reply to this email or reach out to us directly.")
	v.SetDefault("LEAD_WHATSAPP_PROMPT", "Send a friendly message about our Python course")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
