package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	unsetEnv(t, "APP_PORT", "DB_DRIVER", "DB_CONNECTION_STRING", "SESSION_TTL", "SESSION_STORE",
		"API_REQUIRE_AUTH", "CSRF_ENABLED", "CORS_ALLOWED_ORIGINS", "NATS_URL", "AUTH_MIN_PASSWORD_LENGTH", "ARTIFACTS_DIR", "GO_ENV")

	cfg := Load()

	assert.Equal(t, "3000", cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "app.db", cfg.Database.Connection)
	assert.Equal(t, "memory", cfg.Session.Store)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Empty(t, cfg.App.NatsURL)
	assert.False(t, cfg.Auth.APIRequireAuth)
	assert.True(t, cfg.App.CSRFEnabled)
	assert.Equal(t, "*", cfg.App.CorsAllowedOrigins)
	assert.Equal(t, 6, cfg.Auth.MinPasswordLength)
	assert.Equal(t, "artifacts", cfg.Model.ArtifactsDir)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("API_REQUIRE_AUTH", "true")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("AUTH_MIN_PASSWORD_LENGTH", "10")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.True(t, cfg.Auth.APIRequireAuth)
	assert.False(t, cfg.App.CSRFEnabled)
	assert.Equal(t, 10, cfg.Auth.MinPasswordLength)
	assert.True(t, cfg.IsProduction())
}

func TestGetEnvAsDuration_InvalidFallsBack(t *testing.T) {
	t.Setenv("SESSION_TTL", "tomorrow")
	assert.Equal(t, time.Hour, getEnvAsDuration("SESSION_TTL", time.Hour))

	t.Setenv("SESSION_TTL", "-5m")
	assert.Equal(t, time.Hour, getEnvAsDuration("SESSION_TTL", time.Hour))
}
