package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigEmptyValues(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, key := range []string{"LOG_LEVEL", "PAYLOAD_DIR", "PAYLOAD_RELOAD_SCHEDULE",
		"RENDER_CACHE_EXPIRATION", "ALLOWED_ORIGINS", "RATE_LIMIT_RPS"} {
		t.Setenv(key, "")
	}
	t.Setenv("PORT", "8080")

	LoadConfig()
	require.NotNil(t, Cfg)

	assert.Equal(t, "8080", Cfg.Port)
	assert.Equal(t, 10*time.Minute, Cfg.RenderCacheExpiration)
	assert.Equal(t, 10, Cfg.RateLimitRPS)
	assert.Empty(t, Cfg.AllowedOrigins)
	// An empty schedule disables reloading.
	assert.Equal(t, "", Cfg.PayloadReloadSchedule)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("PAYLOAD_DIR", "/data/output")
	t.Setenv("PAYLOAD_RELOAD_SCHEDULE", "@hourly")
	t.Setenv("RENDER_CACHE_EXPIRATION", "90s")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, ,http://b.example")
	t.Setenv("RATE_LIMIT_RPS", "25")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	LoadConfig()

	assert.Equal(t, "9090", Cfg.Port)
	assert.Equal(t, "debug", Cfg.LogLevel)
	assert.Equal(t, "/data/output", Cfg.PayloadDir)
	assert.Equal(t, "@hourly", Cfg.PayloadReloadSchedule)
	assert.Equal(t, 90*time.Second, Cfg.RenderCacheExpiration)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, Cfg.AllowedOrigins)
	assert.Equal(t, 25, Cfg.RateLimitRPS)
	assert.Equal(t, 30, Cfg.RateLimitBurst)
}

func TestGetEnvAsDurationInvalid(t *testing.T) {
	t.Setenv("SOME_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvAsDuration("SOME_DURATION", time.Minute))
}
