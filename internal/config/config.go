// Package config provides application configuration management.
// Configuration is loaded from environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Audit store (PostgreSQL). Empty disables auth event recording.
	DatabaseURL string `env:"DATABASE_URL"`
	// Apply embedded migrations at startup when DATABASE_URL is set.
	AutoMigrate           bool          `env:"AUTO_MIGRATE" envDefault:"true"`
	DatabaseMaxConns      int32         `env:"DATABASE_MAX_CONNS" envDefault:"5"`
	AuditStatementTimeout time.Duration `env:"AUDIT_STATEMENT_TIMEOUT" envDefault:"2s"`

	// Rate limit backend (Redis). Empty disables rate limiting.
	RedisURL      string `env:"REDIS_URL"`
	RedisPoolSize int    `env:"REDIS_POOL_SIZE" envDefault:"5"`

	// Demo account accepted by POST /api/login.
	DemoEmail    string `env:"DEMO_EMAIL" envDefault:"admin@hospital.com"`
	DemoPassword string `env:"DEMO_PASSWORD" envDefault:"password123"`
	DemoUserName string `env:"DEMO_USER_NAME" envDefault:"Admin User"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Per-IP rate limiting of the login and signup endpoints
	RateLimitAuthEnabled bool `env:"RATE_LIMIT_AUTH_ENABLED" envDefault:"true"`
	RateLimitAuthRPM     int  `env:"RATE_LIMIT_AUTH_RPM" envDefault:"30"`
	RateLimitAuthBurst   int  `env:"RATE_LIMIT_AUTH_BURST" envDefault:"10"`

	// Comma-separated list of allowed origins (e.g., "http://localhost:3000")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// AuditEnabled reports whether auth events are persisted.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}

// RateLimitEnabled reports whether auth requests are rate limited.
// Rate limiting needs Redis; without it the flag is ignored.
func (c *Config) RateLimitEnabled() bool {
	return c.RateLimitAuthEnabled && c.RedisURL != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field constraints the env parser cannot express.
func (c *Config) Validate() error {
	if c.DemoEmail == "" || c.DemoPassword == "" {
		return errors.New("DEMO_EMAIL and DEMO_PASSWORD must not be empty")
	}
	if c.RateLimitAuthRPM < 0 || c.RateLimitAuthBurst < 0 {
		return errors.New("rate limit values must not be negative")
	}
	if c.DatabaseMaxConns < 0 || c.RedisPoolSize < 0 {
		return errors.New("DATABASE_MAX_CONNS and REDIS_POOL_SIZE must not be negative")
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unsupported LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are ignored; existing variables are not overridden.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
