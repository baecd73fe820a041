package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 2*time.Second, cfg.Payment.Delay)
	assert.Equal(t, []string{"localhost:8080", "127.0.0.1:8080"}, cfg.CSRF.TrustedOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	chdirTemp(t)
	t.Setenv("BACKEND_URL", "https://api.example.com/")
	t.Setenv("SESSION_STORE", "REDIS")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("PAYMENT_DELAY", "not-a-duration")
	t.Setenv("CACHE_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, SessionStoreRedis, cfg.Session.Store)
	assert.Equal(t, 2*time.Second, cfg.Payment.Delay)
	assert.True(t, cfg.Cache.Enabled)
}

func TestSplitAndTrim(t *testing.T) {
	assert.Nil(t, splitAndTrim(""))
	assert.Equal(t, []string{"a", "b"}, splitAndTrim(" a , ,b "))
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
