package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AppEnv != "development" {
		t.Errorf("expected default AppEnv 'development', got %s", cfg.AppEnv)
	}

	if cfg.AppPort != 8080 {
		t.Errorf("expected default AppPort 8080, got %d", cfg.AppPort)
	}

	if cfg.DemoEmail != "admin@hospital.com" {
		t.Errorf("expected default DemoEmail, got %s", cfg.DemoEmail)
	}

	if cfg.DemoPassword != "password123" {
		t.Errorf("expected default DemoPassword, got %s", cfg.DemoPassword)
	}

	if cfg.DemoUserName != "Admin User" {
		t.Errorf("expected default DemoUserName, got %s", cfg.DemoUserName)
	}

	if cfg.LogFormat != "json" {
		t.Errorf("expected default LogFormat 'json', got %s", cfg.LogFormat)
	}

	if cfg.AuditEnabled() {
		t.Error("expected audit disabled without DATABASE_URL")
	}

	if cfg.RateLimitEnabled() {
		t.Error("expected rate limit disabled without REDIS_URL")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("DEMO_EMAIL", "nurse@hospital.com")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	t.Setenv("RATE_LIMIT_AUTH_RPM", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.AppPort != 9090 {
		t.Errorf("expected AppPort 9090, got %d", cfg.AppPort)
	}
	if cfg.DemoEmail != "nurse@hospital.com" {
		t.Errorf("expected overridden DemoEmail, got %s", cfg.DemoEmail)
	}
	if !cfg.RateLimitEnabled() {
		t.Error("expected rate limit enabled with REDIS_URL")
	}
	if cfg.RateLimitAuthRPM != 5 {
		t.Errorf("expected RateLimitAuthRPM 5, got %d", cfg.RateLimitAuthRPM)
	}
}

func TestLoad_PoolSettings(t *testing.T) {
	t.Setenv("DATABASE_MAX_CONNS", "8")
	t.Setenv("REDIS_POOL_SIZE", "3")
	t.Setenv("AUDIT_STATEMENT_TIMEOUT", "750ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.DatabaseMaxConns != 8 || cfg.RedisPoolSize != 3 {
		t.Errorf("pool settings = %d/%d, want 8/3", cfg.DatabaseMaxConns, cfg.RedisPoolSize)
	}
	if cfg.AuditStatementTimeout != 750*time.Millisecond {
		t.Errorf("AuditStatementTimeout = %v, want 750ms", cfg.AuditStatementTimeout)
	}
}

func TestLoad_InvalidLogFormat(t *testing.T) {
	t.Setenv("LOG_FORMAT", "xml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported log format, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	base := Config{
		DemoEmail:    "admin@hospital.com",
		DemoPassword: "password123",
		LogFormat:    "json",
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"text format", func(c *Config) { c.LogFormat = "text" }, false},
		{"empty demo email", func(c *Config) { c.DemoEmail = "" }, true},
		{"empty demo password", func(c *Config) { c.DemoPassword = "" }, true},
		{"negative rpm", func(c *Config) { c.RateLimitAuthRPM = -1 }, true},
		{"negative burst", func(c *Config) { c.RateLimitAuthBurst = -1 }, true},
		{"negative db pool", func(c *Config) { c.DatabaseMaxConns = -1 }, true},
		{"negative redis pool", func(c *Config) { c.RedisPoolSize = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := base
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("MEDPORTAL_TEST_DOTENV=loaded\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("MEDPORTAL_TEST_DOTENV") })

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv("MEDPORTAL_TEST_DOTENV"); got != "loaded" {
		t.Errorf("expected variable from .env, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected missing file to be ignored, got %v", err)
	}
}

func TestConfig_IsDevelopment(t *testing.T) {
	cfg := &Config{AppEnv: "development"}
	if !cfg.IsDevelopment() {
		t.Error("expected IsDevelopment to return true")
	}

	cfg.AppEnv = "production"
	if cfg.IsDevelopment() {
		t.Error("expected IsDevelopment to return false")
	}
}

func TestConfig_IsProduction(t *testing.T) {
	cfg := &Config{AppEnv: "production"}
	if !cfg.IsProduction() {
		t.Error("expected IsProduction to return true")
	}

	cfg.AppEnv = "development"
	if cfg.IsProduction() {
		t.Error("expected IsProduction to return false")
	}
}

func TestConfig_GetCORSAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " http://localhost:3000, ,https://portal.example.com "}

	got := cfg.GetCORSAllowedOrigins()
	want := []string{"http://localhost:3000", "https://portal.example.com"}

	if len(got) != len(want) {
		t.Fatalf("expected %d origins, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if (&Config{}).GetCORSAllowedOrigins() != nil {
		t.Error("expected nil for empty origins")
	}
}
