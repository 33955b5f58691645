package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	regform "github.com/craftmerge/go-regform"
	"github.com/craftmerge/go-regform/internal/config"
	"github.com/craftmerge/go-regform/internal/site"
	"github.com/craftmerge/go-regform/pkg/renderers/html"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	forms, err := regform.New(regform.Config{
		BaseURL:         cfg.APIBaseURL,
		Locale:          cfg.Locale,
		SimulateStartup: cfg.SimulateStartup,
		Timeout:         cfg.RequestTimeout,
		Logger:          logger,
	})
	if err != nil {
		return err
	}

	themes, err := html.NewThemes(cfg.ThemeVariant, html.DefaultManifest())
	if err != nil {
		return fmt.Errorf("themes: %w", err)
	}
	sel, err := themes.Select(cfg.Theme, cfg.ThemeVariant)
	if err != nil {
		return fmt.Errorf("theme %q: %w", cfg.Theme, err)
	}
	renderer, err := html.New(
		html.WithTheme(html.RendererConfig(sel)),
		html.WithTranslator(forms.Catalog()),
	)
	if err != nil {
		return err
	}

	server, err := site.New(forms,
		site.WithLogger(logger),
		site.WithRenderer(renderer),
		site.WithLocale(cfg.Locale),
		site.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		site.WithTrustedOrigins(cfg.CSRFTrustedOrigins),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           server.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "api", cfg.APIBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
