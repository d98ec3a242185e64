package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = strings.Repeat("s", MinJWTSecretLength)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AUTH_JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3*time.Second, cfg.Chat.PollInterval)
	assert.Equal(t, time.Second, cfg.Chat.TickInterval)
	assert.Equal(t, 2*time.Hour, cfg.Cleanup.AttemptTTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	content := `
server:
  port: 9090
  allowed_origins: ["https://portal.example.com"]
backend:
  base_url: https://backend.example.com/api
  timeout: 10s
database:
  driver: postgres
  dsn: postgres://gw:gw@localhost:5432/gw?sslmode=disable
chat:
  poll_interval: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("AUTH_JWT_SECRET", testSecret)
	t.Setenv("SERVER_PORT", "9191")
	t.Setenv("REDIS_ADDRESS", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port, "env overrides file")
	assert.Equal(t, []string{"https://portal.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "https://backend.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Chat.PollInterval)
	assert.Equal(t, time.Second, cfg.Chat.TickInterval, "untouched values keep defaults")
	assert.Equal(t, "localhost:6379", cfg.Redis.Address)
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("AUTH_JWT_SECRET", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT secret")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"no jwt secret", func(c *Config) { c.Auth.JWTSecret = "" }},
		{"short jwt secret", func(c *Config) { c.Auth.JWTSecret = "changeme" }},
		{"no backend", func(c *Config) { c.Backend.BaseURL = "" }},
		{"bad driver", func(c *Config) { c.Database.Driver = "mysql" }},
		{"no dsn", func(c *Config) { c.Database.DSN = "" }},
		{"zero poll", func(c *Config) { c.Chat.PollInterval = 0 }},
		{"zero page", func(c *Config) { c.Chat.PageSize = 0 }},
		{"ratio", func(c *Config) { c.Tracing.SampleRatio = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.Auth.JWTSecret = testSecret
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.Error(t, Defaults().Validate(), "defaults carry no secret")

	valid := Defaults()
	valid.Auth.JWTSecret = testSecret
	assert.NoError(t, valid.Validate())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warning"}.SlogLevel())
	assert.Equal(t, slog.LevelError, LogConfig{Level: "error"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: ""}.SlogLevel())
}
