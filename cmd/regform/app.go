package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	regform "github.com/craftmerge/go-regform"
	"github.com/craftmerge/go-regform/internal/config"
	"github.com/craftmerge/go-regform/pkg/renderers/tui"
)

// app holds the flags shared by every command and builds the runtime from
// them on first use.
type app struct {
	envFile string
	apiURL  string
	locale  string

	cfg    *config.Config
	logger *slog.Logger
	forms  *regform.Forms
}

func (a *app) load() error {
	if a.forms != nil {
		return nil
	}
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", a.envFile, err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.apiURL != "" {
		cfg.APIBaseURL = a.apiURL
	}
	if a.locale != "" {
		cfg.Locale = a.locale
	}
	a.cfg = cfg

	// Prompts own stdout, so logs go to stderr.
	a.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	forms, err := regform.New(regform.Config{
		BaseURL:         cfg.APIBaseURL,
		Locale:          cfg.Locale,
		SimulateStartup: cfg.SimulateStartup,
		Timeout:         cfg.RequestTimeout,
		Logger:          a.logger,
		UserAgent:       regform.DefaultUserAgent + " (cli)",
	})
	if err != nil {
		return err
	}
	a.forms = forms
	return nil
}

func (a *app) localeName() string {
	return a.forms.Locale(a.cfg.Locale)
}

func (a *app) session(opts ...tui.Option) *tui.Session {
	base := []tui.Option{
		tui.WithTranslator(a.forms.Catalog(), a.localeName()),
		tui.WithLogger(a.logger),
	}
	return tui.New(append(base, opts...)...)
}
