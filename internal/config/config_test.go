package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("PORT", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "./data/tasks.db", cfg.Store.Path)
	assert.Equal(t, "5001", cfg.HTTP.Port)
	assert.Equal(t, "/api", cfg.HTTP.BasePath)
	assert.Equal(t, 100, cfg.RateLimit.Max)
	assert.Equal(t, 15*time.Minute, cfg.RateLimit.Window)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, "0.0.0.0:5001", cfg.Address())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("STORE_DRIVER", "Bolt")
	t.Setenv("PORT", "9000")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("API_BASE_PATH", "/v1/")
	t.Setenv("RATE_LIMIT_WINDOW", "60")
	t.Setenv("REDIS_URL", "redis://cache:6379/0")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverBolt, cfg.Store.Driver)
	assert.Equal(t, "9000", cfg.HTTP.Port)
	assert.Equal(t, "/v1", cfg.HTTP.BasePath)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.True(t, cfg.Redis.Enabled())
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := Load()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: "5432", Name: "tasks", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/tasks?sslmode=disable", d.DSN())

	d.URL = "postgres://override"
	assert.Equal(t, "postgres://override", d.DSN())
}
