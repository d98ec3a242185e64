package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for portal-gateway
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Auth     AuthConfig     `yaml:"auth"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Chat     ChatConfig     `yaml:"chat"`
	Cleanup  CleanupConfig  `yaml:"cleanup"`
	Tracing  TracingConfig  `yaml:"tracing"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// BackendConfig holds the PHP backend connection settings
type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MinJWTSecretLength is the shortest HMAC key accepted for token
// verification
const MinJWTSecretLength = 32

// AuthConfig holds identity-provider token verification settings
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
	Audience  string `yaml:"audience"`
}

// DatabaseConfig holds submission log storage configuration
type DatabaseConfig struct {
	Driver        string `yaml:"driver"` // postgres | sqlite
	DSN           string `yaml:"dsn"`
	MigrationsDir string `yaml:"migrations_dir"`
	MaxOpenConns  int    `yaml:"max_open_conns"`
	MaxIdleConns  int    `yaml:"max_idle_conns"`
}

// RedisConfig holds Redis configuration. An empty address keeps the
// catalog snapshot in process memory.
type RedisConfig struct {
	Address   string `yaml:"address"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

// ChatConfig holds chat polling configuration
type ChatConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
	TickInterval time.Duration `yaml:"tick_interval"`
	PageSize     int           `yaml:"page_size"`
}

// CleanupConfig holds the abandoned-attempt sweeper configuration
type CleanupConfig struct {
	Interval   time.Duration `yaml:"interval"`
	AttemptTTL time.Duration `yaml:"attempt_ttl"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Exporter    string  `yaml:"exporter"` // stdout | otlp
	Endpoint    string  `yaml:"endpoint"`
	SampleRatio float64 `yaml:"sample_ratio"`
	ServiceName string  `yaml:"service_name"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// Defaults returns the configuration used when neither a file nor the
// environment sets a value
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost/api",
			Timeout: 30 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:        "sqlite",
			DSN:           "file:portal-gateway.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)",
			MigrationsDir: "./migrations",
			MaxOpenConns:  10,
			MaxIdleConns:  2,
		},
		Redis: RedisConfig{
			KeyPrefix: "portal:",
		},
		Chat: ChatConfig{
			PollInterval: 3 * time.Second,
			TickInterval: time.Second,
			PageSize:     20,
		},
		Cleanup: CleanupConfig{
			Interval:   5 * time.Minute,
			AttemptTTL: 2 * time.Hour,
		},
		Tracing: TracingConfig{
			Exporter:    "stdout",
			SampleRatio: 0.1,
			ServiceName: "portal-gateway",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the optional YAML file named by CONFIG_FILE,
// then applies environment variable overrides
func Load() (*Config, error) {
	cfg := Defaults()

	if path := getEnv("CONFIG_FILE", ""); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFile overlays the YAML file on top of the current values
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.Port = getEnvAsInt("SERVER_PORT", c.Server.Port)
	c.Server.AllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", c.Server.AllowedOrigins)

	c.Backend.BaseURL = getEnv("BACKEND_BASE_URL", c.Backend.BaseURL)
	c.Backend.Timeout = getEnvAsDuration("BACKEND_TIMEOUT", c.Backend.Timeout)

	c.Auth.JWTSecret = getEnv("AUTH_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = getEnv("AUTH_ISSUER", c.Auth.Issuer)
	c.Auth.Audience = getEnv("AUTH_AUDIENCE", c.Auth.Audience)

	c.Database.Driver = getEnv("DATABASE_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DATABASE_DSN", c.Database.DSN)
	c.Database.MigrationsDir = getEnv("DATABASE_MIGRATIONS_DIR", c.Database.MigrationsDir)
	c.Database.MaxOpenConns = getEnvAsInt("DATABASE_MAX_OPEN_CONNS", c.Database.MaxOpenConns)
	c.Database.MaxIdleConns = getEnvAsInt("DATABASE_MAX_IDLE_CONNS", c.Database.MaxIdleConns)

	c.Redis.Address = getEnv("REDIS_ADDRESS", c.Redis.Address)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	c.Redis.DB = getEnvAsInt("REDIS_DB", c.Redis.DB)
	c.Redis.KeyPrefix = getEnv("REDIS_KEY_PREFIX", c.Redis.KeyPrefix)

	c.Chat.PollInterval = getEnvAsDuration("CHAT_POLL_INTERVAL", c.Chat.PollInterval)
	c.Chat.TickInterval = getEnvAsDuration("CHAT_TICK_INTERVAL", c.Chat.TickInterval)
	c.Chat.PageSize = getEnvAsInt("CHAT_PAGE_SIZE", c.Chat.PageSize)

	c.Cleanup.Interval = getEnvAsDuration("CLEANUP_INTERVAL", c.Cleanup.Interval)
	c.Cleanup.AttemptTTL = getEnvAsDuration("ATTEMPT_TTL", c.Cleanup.AttemptTTL)

	c.Tracing.Enabled = getEnvAsBool("TRACING_ENABLED", c.Tracing.Enabled)
	c.Tracing.Exporter = getEnv("TRACING_EXPORTER", c.Tracing.Exporter)
	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.SampleRatio = getEnvAsFloat("TRACING_SAMPLE_RATIO", c.Tracing.SampleRatio)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Backend.BaseURL == "" {
		return fmt.Errorf("backend base URL is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth JWT secret is required")
	}

	if len(c.Auth.JWTSecret) < MinJWTSecretLength {
		return fmt.Errorf("auth JWT secret must be at least %d bytes", MinJWTSecretLength)
	}

	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("database DSN is required")
	}

	if c.Chat.PollInterval <= 0 || c.Chat.TickInterval <= 0 {
		return fmt.Errorf("chat intervals must be positive")
	}

	if c.Chat.PageSize <= 0 {
		return fmt.Errorf("chat page size must be positive: %d", c.Chat.PageSize)
	}

	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio must be within [0,1]: %v", c.Tracing.SampleRatio)
	}

	return nil
}

// SlogLevel maps the configured level name to a slog.Level
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}
