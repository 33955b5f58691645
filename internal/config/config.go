// Package config loads runtime settings from REGFORM_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Prefix is prepended to every variable name.
const Prefix = "REGFORM_"

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL" envDefault:"http://localhost:8000"`
	HTTPHost       string        `env:"HTTP_HOST" envDefault:"localhost"`
	HTTPPort       int           `env:"HTTP_PORT" envDefault:"8080"`
	Env            string        `env:"ENV" envDefault:"development"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	Locale         string        `env:"LOCALE"` // empty negotiates from Accept-Language
	Theme          string        `env:"THEME" envDefault:"craftmerge"`
	ThemeVariant   string        `env:"THEME_VARIANT"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`

	// Startup registrations succeed locally after a fixed delay instead of
	// reaching the API.
	SimulateStartup bool `env:"SIMULATE_STARTUP" envDefault:"false"`

	// Host-only values (e.g. "app.example.com") allowed to post forms
	// cross-origin.
	CSRFTrustedOrigins []string `env:"CSRF_TRUSTED_ORIGINS" envSeparator:","`

	// Per-client form submissions.
	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS" envDefault:"1"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST" envDefault:"5"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.HTTPHost, c.HTTPPort)
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	return Parse(env.Options{})
}

// Parse reads the configuration with extra options, such as an Environment
// map in tests.
func Parse(opts env.Options) (*Config, error) {
	opts.Prefix = Prefix
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%sAPI_BASE_URL must be an absolute http(s) URL, got %q", Prefix, c.APIBaseURL)
	}
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("%sHTTP_PORT out of range: %d", Prefix, c.HTTPPort)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%sREQUEST_TIMEOUT must be positive", Prefix)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("%sRATE_LIMIT_RPS and %sRATE_LIMIT_BURST must be positive", Prefix, Prefix)
	}
	return nil
}
