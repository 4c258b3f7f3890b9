package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SAP-F-2025/thesis-review-portal/internal/validator"
)

const (
	SessionStoreMemory   = "memory"
	SessionStoreRedis    = "redis"
	SessionStorePostgres = "postgres"
)

type Config struct {
	Port        string     `validate:"required"`
	Environment string     `validate:"required,oneof=development staging production test"`
	LogLevel    slog.Level `validate:"-"`

	Backend BackendConfig
	Session SessionConfig
	Events  EventsConfig
	UI      UIConfig
	Limits  RateLimitConfig

	RedisURL    string
	DatabaseURL string
}

type BackendConfig struct {
	// URL is the backend origin; the /api prefix is appended by the gateway.
	URL string `validate:"required,url"`
	// Timeout of zero means requests wait as long as the backend takes.
	Timeout time.Duration `validate:"min=0"`
}

type SessionConfig struct {
	Store        string `validate:"required,oneof=memory redis postgres"`
	CookieName   string `validate:"required"`
	CookieSecure bool
	// TrustedProxies are the addresses allowed to set X-Forwarded-For.
	TrustedProxies []string
}

type EventsConfig struct {
	KafkaBrokers []string
	Topic        string `validate:"required"`
}

type UIConfig struct {
	SearchDebounce time.Duration `validate:"gt=0"`
	RenderMarkdown bool
	Timezone       string `validate:"required"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `validate:"min=0"`
	Burst             int     `validate:"min=0"`
}

// LoadConfig reads an optional .env file and the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Backend: BackendConfig{
			URL:     strings.TrimRight(getEnv("BACKEND_URL", "http://127.0.0.1:5000"), "/"),
			Timeout: getEnvAsDuration("BACKEND_TIMEOUT", 0),
		},
		Session: SessionConfig{
			Store:          getEnv("SESSION_STORE", ""),
			CookieName:     getEnv("SESSION_COOKIE", "sid"),
			CookieSecure:   getEnvAsBool("COOKIE_SECURE", false),
			TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),
		},
		Events: EventsConfig{
			KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:        getEnv("EVENTS_TOPIC", "thesis-review.activity"),
		},
		UI: UIConfig{
			SearchDebounce: getEnvAsDuration("SEARCH_DEBOUNCE", 300*time.Millisecond),
			RenderMarkdown: getEnvAsBool("RENDER_MARKDOWN", false),
			Timezone:       getEnv("TIMEZONE", "UTC"),
		},
		Limits: RateLimitConfig{
			RequestsPerSecond: getEnvAsFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 40),
		},
		RedisURL:    os.Getenv("REDIS_URL"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	if cfg.Session.Store == "" {
		cfg.Session.Store = defaultSessionStore(cfg)
	}

	if errs := validator.New().Validate(cfg); errs != nil {
		return nil, fmt.Errorf("invalid configuration: %w", errs)
	}
	if cfg.Session.Store == SessionStoreRedis && cfg.RedisURL == "" {
		return nil, fmt.Errorf("invalid configuration: REDIS_URL is required for the redis session store")
	}
	if cfg.Session.Store == SessionStorePostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("invalid configuration: DATABASE_URL is required for the postgres session store")
	}
	if _, err := time.LoadLocation(cfg.UI.Timezone); err != nil {
		return nil, fmt.Errorf("invalid configuration: TIMEZONE: %w", err)
	}

	return cfg, nil
}

// Location returns the configured display timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func defaultSessionStore(cfg *Config) string {
	switch {
	case cfg.RedisURL != "":
		return SessionStoreRedis
	case cfg.DatabaseURL != "":
		return SessionStorePostgres
	default:
		return SessionStoreMemory
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func parseLogLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
