package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("BACKEND_URL", "http://backend.local:5000/")
	t.Setenv("SESSION_STORE", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Session.TrustedProxies)

	assert.Equal(t, "http://backend.local:5000", cfg.Backend.URL)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 300*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout)
	assert.Equal(t, "sid", cfg.Session.CookieName)
}

func TestLoadConfig_RedisSelectedFromURL(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.1, 10.0.0.0/8")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Events.KafkaBrokers)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.0/8"}, cfg.Session.TrustedProxies)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "bad backend url", env: map[string]string{"BACKEND_URL": "not a url"}},
		{name: "unknown store", env: map[string]string{"SESSION_STORE": "etcd"}},
		{name: "redis without url", env: map[string]string{"SESSION_STORE": "redis", "REDIS_URL": ""}},
		{name: "postgres without dsn", env: map[string]string{"SESSION_STORE": "postgres", "DATABASE_URL": ""}},
		{name: "bad timezone", env: map[string]string{"TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
