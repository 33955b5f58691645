// Package tui drives the registration and resend flows from a terminal.
package tui

import (
	"context"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

// Session prompts for form values and reports workflow outcomes.
type Session struct {
	driver     PromptDriver
	out        io.Writer
	translator render.Translator
	locale     string
	theme      Theme
	logger     *slog.Logger
}

// New constructs a session with defaults (survey driver on stdout).
func New(options ...Option) *Session {
	s := &Session{
		out:    os.Stdout,
		theme:  DefaultTheme,
		logger: slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if s.driver == nil {
		s.driver = newSurveyDriver(s.out)
	}
	return s
}

// Run prompts for every field, submits, and keeps asking for the fields the
// validator or the server rejected until the form succeeds. After a general
// failure the user decides whether to resubmit the same values. The returned
// snapshot is the last one observed.
func (s *Session) Run(ctx context.Context, wf *workflow.Workflow) (workflow.Snapshot, error) {
	if wf == nil {
		return workflow.Snapshot{}, ErrNilWorkflow
	}
	schema := wf.Schema()
	pending := schema.Keys()

	for {
		snap := wf.Snapshot()
		view := render.NewFormView(schema, snap.State, snap.Errors, snap.Message, snap.Status)
		for _, key := range pending {
			fv, _ := view.Field(key)
			if fv.Error != "" {
				s.print(ctx, s.theme.ErrorPrefix+fv.Label+": "+fv.Error)
			}
			value, err := s.prompt(ctx, fv, snap.State.Value(key))
			if err != nil {
				return snap, err
			}
			if err := wf.Set(key, value); err != nil {
				return snap, err
			}
		}

		snap, err := wf.Submit(ctx)
		if err != nil {
			return snap, err
		}
		s.logger.Debug("tui submit", "form", schema.ID, "status", snap.Status)

		switch snap.Status {
		case model.StatusSucceeded:
			s.print(ctx, s.theme.SuccessPrefix+snap.Message)
			return snap, nil
		case model.StatusFailed:
			s.print(ctx, s.theme.ErrorPrefix+snap.Errors[model.GeneralKey])
			retry, err := s.driver.Confirm(ctx, ConfirmConfig{
				Message: s.text("tui.retry", "Try again?"),
				Default: true,
			})
			if err != nil || !retry {
				return snap, err
			}
			pending = nil
		default:
			pending = invalidKeys(schema, snap.Errors)
			if len(pending) == 0 {
				return snap, nil
			}
			s.print(ctx, s.theme.InfoPrefix+s.text("tui.fixErrors", "Please fix the highlighted fields:"))
		}
	}
}

// RunResend asks for an email address, prefilled with the flow's current
// one, and sends the activation email again.
func (s *Session) RunResend(ctx context.Context, r *workflow.Resend) (workflow.ResendSnapshot, error) {
	if r == nil {
		return workflow.ResendSnapshot{}, ErrNilWorkflow
	}
	email, err := s.driver.Input(ctx, InputConfig{
		Message: s.text("resend.title", "Send the activation email again"),
		Default: r.Snapshot().Email,
		Help:    s.text("resend.placeholder", "Enter your email address"),
	})
	if err != nil {
		return r.Snapshot(), err
	}
	if err := r.SetEmail(email); err != nil {
		return r.Snapshot(), err
	}

	snap, err := r.Send(ctx)
	if err != nil {
		return snap, err
	}
	if snap.Error != "" {
		s.print(ctx, s.theme.ErrorPrefix+snap.Error)
	} else {
		s.print(ctx, s.theme.SuccessPrefix+snap.Message)
	}
	return snap, nil
}

// OfferResend asks whether to send the activation email again and runs the
// resend flow when the user agrees.
func (s *Session) OfferResend(ctx context.Context, r *workflow.Resend) (bool, error) {
	ok, err := s.driver.Confirm(ctx, ConfirmConfig{
		Message: s.text("tui.resend", "Send the activation email again?"),
	})
	if err != nil || !ok {
		return false, err
	}
	_, err = s.RunResend(ctx, r)
	return err == nil, err
}

func (s *Session) prompt(ctx context.Context, fv render.FieldView, current model.Value) (model.Value, error) {
	label := fv.Label
	if fv.Required {
		label += s.theme.RequiredMark
	}
	help := fv.Help

	switch fv.Kind {
	case model.KindPassword:
		v, err := s.driver.Password(ctx, InputConfig{Message: label, Help: help})
		return model.Text(v), err
	case model.KindBoolean:
		v, err := s.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: current.Bool(), Help: help})
		return model.Flag(v), err
	case model.KindChoice:
		cfg := selectConfig(label, help, fv.Options)
		idx, err := s.driver.Select(ctx, cfg)
		if err != nil || idx < 0 || idx >= len(fv.Options) {
			return model.Zero(fv.Kind), err
		}
		return model.Choice(fv.Options[idx].Value), nil
	case model.KindMultiSelect:
		cfg := selectConfig(label, help, fv.Options)
		indices, err := s.driver.MultiSelect(ctx, cfg)
		if err != nil {
			return model.Zero(fv.Kind), err
		}
		values := make([]string, 0, len(indices))
		for _, idx := range indices {
			if idx >= 0 && idx < len(fv.Options) {
				values = append(values, fv.Options[idx].Value)
			}
		}
		return model.Set(values...), nil
	default:
		v, err := s.driver.Input(ctx, InputConfig{
			Message:     label,
			Default:     current.String(),
			Help:        help,
			Placeholder: fv.Placeholder,
		})
		return model.Text(v), err
	}
}

func (s *Session) print(ctx context.Context, msg string) {
	if err := s.driver.Info(ctx, msg); err != nil {
		s.logger.Debug("tui output failed", "error", err)
	}
}

func (s *Session) text(key, fallback string) string {
	if s.translator == nil {
		return fallback
	}
	msg, err := s.translator.Translate(s.locale, key)
	if err != nil || strings.TrimSpace(msg) == "" {
		return fallback
	}
	return msg
}

func selectConfig(label, help string, options []render.OptionView) SelectConfig {
	cfg := SelectConfig{Message: label, Help: help, DefaultIndex: -1}
	for i, opt := range options {
		cfg.Options = append(cfg.Options, opt.Label)
		if opt.Selected {
			if cfg.DefaultIndex < 0 {
				cfg.DefaultIndex = i
			}
			cfg.Defaults = append(cfg.Defaults, i)
		}
	}
	return cfg
}

// invalidKeys lists rejected fields in schema order, plus any field that
// must match a rejected one.
func invalidKeys(schema model.Schema, errs model.ValidationErrors) []string {
	var keys []string
	for _, key := range schema.Keys() {
		if errs.Has(key) {
			keys = append(keys, key)
			continue
		}
		for _, m := range schema.Matches {
			if m.Key == key && errs.Has(m.Other) {
				keys = append(keys, key)
				break
			}
		}
	}
	return slices.Clip(keys)
}
