package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig describes a free-text or masked prompt. Placeholder is shown
// as help when Help is empty.
type InputConfig struct {
	Message     string
	Default     string
	Help        string
	Placeholder string
	Validator   func(string) error
}

// ConfirmConfig describes a yes/no question.
type ConfirmConfig struct {
	Message string
	Default bool
	Help    string
}

// SelectConfig describes a pick-one or pick-many question. DefaultIndex
// applies to Select and Defaults to MultiSelect; both index into Options and
// out-of-range entries are ignored.
type SelectConfig struct {
	Message      string
	Options      []string
	DefaultIndex int
	Defaults     []int
	Help         string
	PageSize     int
}

// PromptDriver is the terminal seen by a Session. Every method returns
// ErrAborted when the user interrupts the prompt.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Password(ctx context.Context, cfg InputConfig) (string, error)
	Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error)
	Select(ctx context.Context, cfg SelectConfig) (int, error)
	MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error)
	Info(ctx context.Context, msg string) error
}

// surveyDriver asks through survey on the process terminal and prints
// informational lines to out.
type surveyDriver struct {
	out io.Writer
}

func newSurveyDriver(out io.Writer) PromptDriver {
	return &surveyDriver{out: out}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	err := ask(ctx, &survey.Input{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    helpText(cfg),
	}, &answer, cfg.Validator)
	return answer, err
}

// Password never pre-fills; survey masks the typed characters.
func (d *surveyDriver) Password(ctx context.Context, cfg InputConfig) (string, error) {
	var answer string
	err := ask(ctx, &survey.Password{
		Message: cfg.Message,
		Help:    helpText(cfg),
	}, &answer, cfg.Validator)
	return answer, err
}

func (d *surveyDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	var answer bool
	err := ask(ctx, &survey.Confirm{
		Message: cfg.Message,
		Default: cfg.Default,
		Help:    cfg.Help,
	}, &answer, nil)
	return answer, err
}

func (d *surveyDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	prompt := &survey.Select{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	if valid(cfg.Options, cfg.DefaultIndex) {
		prompt.Default = cfg.Options[cfg.DefaultIndex]
	}
	var answer string
	if err := ask(ctx, prompt, &answer, nil); err != nil {
		return -1, err
	}
	if i, ok := positions(cfg.Options)[answer]; ok {
		return i, nil
	}
	return -1, nil
}

func (d *surveyDriver) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	prompt := &survey.MultiSelect{
		Message:  cfg.Message,
		Options:  cfg.Options,
		Help:     cfg.Help,
		PageSize: cfg.PageSize,
	}
	var defaults []string
	for _, idx := range cfg.Defaults {
		if valid(cfg.Options, idx) {
			defaults = append(defaults, cfg.Options[idx])
		}
	}
	if len(defaults) > 0 {
		prompt.Default = defaults
	}

	var answers []string
	if err := ask(ctx, prompt, &answers, nil); err != nil {
		return nil, err
	}
	index := positions(cfg.Options)
	picked := make([]int, 0, len(answers))
	for _, a := range answers {
		if i, ok := index[a]; ok {
			picked = append(picked, i)
		}
	}
	return picked, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

// ask runs one survey prompt unless ctx is already done. Interrupts become
// ErrAborted.
func ask(ctx context.Context, prompt survey.Prompt, response any, validate func(string) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var opts []survey.AskOpt
	if validate != nil {
		opts = append(opts, survey.WithValidator(func(ans any) error {
			s, _ := ans.(string)
			return validate(s)
		}))
	}
	err := survey.AskOne(prompt, response, opts...)
	if errors.Is(err, terminal.InterruptErr) {
		return ErrAborted
	}
	return err
}

func helpText(cfg InputConfig) string {
	if cfg.Help != "" {
		return cfg.Help
	}
	return cfg.Placeholder
}

func valid(options []string, idx int) bool {
	return idx >= 0 && idx < len(options)
}

func positions(options []string) map[string]int {
	index := make(map[string]int, len(options))
	for i, opt := range options {
		if _, seen := index[opt]; !seen {
			index[opt] = i
		}
	}
	return index
}
