package tui

import (
	"io"
	"log/slog"

	"github.com/craftmerge/go-regform/pkg/render"
)

// Theme captures optional formatting hints the session applies when printing
// messages. Keep minimal to avoid coupling prompt logic to ANSI specifics.
type Theme struct {
	InfoPrefix    string
	ErrorPrefix   string
	RequiredMark  string
	SuccessPrefix string
}

// DefaultTheme marks required fields with an asterisk.
var DefaultTheme = Theme{
	ErrorPrefix:   "✗ ",
	SuccessPrefix: "✓ ",
	RequiredMark:  " *",
}

// Option configures a Session.
type Option func(*Session)

// WithPromptDriver overrides the prompt driver used by the session.
func WithPromptDriver(driver PromptDriver) Option {
	return func(s *Session) {
		if driver != nil {
			s.driver = driver
		}
	}
}

// WithOutput redirects informational output of the default survey driver.
func WithOutput(w io.Writer) Option {
	return func(s *Session) {
		if w != nil {
			s.out = w
		}
	}
}

// WithTranslator localizes the session's own prompts (retry, resend and the
// error header). Form text comes from the workflow schema.
func WithTranslator(t render.Translator, locale string) Option {
	return func(s *Session) {
		s.translator = t
		s.locale = locale
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(s *Session) {
		s.theme = theme
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}
