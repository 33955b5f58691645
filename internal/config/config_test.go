package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
)

func parse(t *testing.T, vars map[string]string) (*Config, error) {
	t.Helper()
	return Parse(env.Options{Environment: vars})
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := parse(t, map[string]string{})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.APIBaseURL != "http://localhost:8000" {
		t.Errorf("APIBaseURL = %q, want %q", cfg.APIBaseURL, "http://localhost:8000")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.RequestTimeout != 10*time.Second {
		t.Errorf("RequestTimeout = %v, want 10s", cfg.RequestTimeout)
	}
	if cfg.SimulateStartup {
		t.Errorf("SimulateStartup should default to false")
	}
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Errorf("SlogLevel() = %v, want info", cfg.SlogLevel())
	}
}

func TestLoad_CustomValues(t *testing.T) {
	cfg, err := parse(t, map[string]string{
		"REGFORM_API_BASE_URL":         "https://api.craftmerge.com",
		"REGFORM_HTTP_HOST":            "0.0.0.0",
		"REGFORM_HTTP_PORT":            "3000",
		"REGFORM_ENV":                  "production",
		"REGFORM_LOG_LEVEL":            "debug",
		"REGFORM_LOCALE":               "en",
		"REGFORM_THEME_VARIANT":        "dark",
		"REGFORM_REQUEST_TIMEOUT":      "3s",
		"REGFORM_SIMULATE_STARTUP":     "true",
		"REGFORM_CSRF_TRUSTED_ORIGINS": "app.craftmerge.com,admin.craftmerge.com",
		"REGFORM_RATE_LIMIT_RPS":       "0.5",
		"REGFORM_RATE_LIMIT_BURST":     "2",
	})
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() || cfg.SlogLevel() != slog.LevelDebug {
		t.Errorf("unexpected env/log level %q/%q", cfg.Env, cfg.LogLevel)
	}
	if cfg.Locale != "en" || cfg.ThemeVariant != "dark" || !cfg.SimulateStartup {
		t.Errorf("unexpected values %+v", cfg)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Errorf("RequestTimeout = %v, want 3s", cfg.RequestTimeout)
	}
	if len(cfg.CSRFTrustedOrigins) != 2 || cfg.CSRFTrustedOrigins[1] != "admin.craftmerge.com" {
		t.Errorf("CSRFTrustedOrigins = %v", cfg.CSRFTrustedOrigins)
	}
	if cfg.RateLimitRPS != 0.5 || cfg.RateLimitBurst != 2 {
		t.Errorf("rate limit = %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"relative url": {"REGFORM_API_BASE_URL": "/api"},
		"bad port":     {"REGFORM_HTTP_PORT": "70000"},
		"bad timeout":  {"REGFORM_REQUEST_TIMEOUT": "0s"},
		"zero burst":   {"REGFORM_RATE_LIMIT_BURST": "0"},
		"not a number": {"REGFORM_HTTP_PORT": "http"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parse(t, vars); err == nil {
				t.Fatalf("expected error for %v", vars)
			}
		})
	}
}
