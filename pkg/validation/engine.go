// Package validation turns a form schema and a state snapshot into the set of
// field messages the user must fix before a submission may leave the client.
// Validation is pure: the same schema and state always yield the same errors.
package validation

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/craftmerge/go-regform/pkg/model"
)

// requiredTag is the validator tag every required field is checked with.
const requiredTag = "required"

// Validator reports whether a non-empty input satisfies a named format.
type Validator func(value string) bool

// Option configures an Engine.
type Option func(*Engine)

// WithValidator registers fn under name, replacing any built-in of the same
// name. Names the validator tag syntax cannot carry are ignored and later
// reported by CheckSchema as unknown formats.
func WithValidator(name string, fn Validator) Option {
	return func(e *Engine) {
		if name == "" || fn == nil {
			return
		}
		if err := e.register(name, fn); err != nil {
			delete(e.formats, name)
		}
	}
}

// Engine evaluates schemas against states. Presence and format checks run
// as go-playground/validator tags.
type Engine struct {
	validate *validator.Validate
	formats  map[string]string

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// New returns an engine preloaded with the built-in formats.
func New(opts ...Option) *Engine {
	e := &Engine{
		validate: validator.New(),
		formats: map[string]string{
			FormatPasswordLength: fmt.Sprintf("min=%d", MinPasswordLength),
		},
		patterns: make(map[string]*regexp.Regexp),
	}
	for name, fn := range builtinValidators() {
		if err := e.register(name, fn); err != nil {
			panic(fmt.Sprintf("validation: register %q: %v", name, err))
		}
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

var defaultEngine = New()

// Validate runs the default engine.
func Validate(schema model.Schema, state model.State) model.ValidationErrors {
	return defaultEngine.Validate(schema, state)
}

// Validate returns one message per failing field. A required field that is
// empty reports its required message; format checks only run on non-empty
// input; paired fields report a mismatch under the pair key when both sides
// are filled, differ and the key carries no other message.
func (e *Engine) Validate(schema model.Schema, state model.State) model.ValidationErrors {
	errs := make(model.ValidationErrors)

	for _, field := range schema.Fields {
		value := selectedValue(field, state.Value(field.Key))
		if err := e.validate.Var(presence(field, value), requiredTag); err != nil {
			if field.Required {
				errs[field.Key] = field.RequiredMessage
			}
			continue
		}
		if ok := e.checkFormat(field, value.String()); !ok {
			errs[field.Key] = formatMessage(field)
		}
	}

	for _, pair := range schema.Matches {
		if errs.Has(pair.Key) {
			continue
		}
		left := state.Value(pair.Key)
		right := state.Value(pair.Other)
		if left.Empty() || right.Empty() {
			continue
		}
		if !left.Equal(right) {
			errs[pair.Key] = pair.Message
		}
	}

	return errs
}

// CheckSchema reports format names the engine cannot evaluate and patterns
// that fail to compile.
func (e *Engine) CheckSchema(schema model.Schema) error {
	for _, field := range schema.Fields {
		switch field.Format {
		case "":
		case FormatPattern:
			if _, err := e.pattern(field.Pattern); err != nil {
				return fmt.Errorf("validation: schema %q field %q: %w", schema.ID, field.Key, err)
			}
		default:
			if _, ok := e.formats[field.Format]; !ok {
				return fmt.Errorf("validation: schema %q field %q: %w %q", schema.ID, field.Key, ErrUnknownFormat, field.Format)
			}
		}
	}
	return nil
}

func (e *Engine) checkFormat(field model.Field, input string) bool {
	format := field.Format
	if format == "" && field.Kind == model.KindNumber {
		format = FormatNumber
	}
	switch format {
	case "":
		return true
	case FormatPattern:
		re, err := e.pattern(field.Pattern)
		if err != nil {
			return false
		}
		return re.MatchString(input)
	}
	tag, ok := e.formats[format]
	if !ok {
		return false
	}
	return e.validate.Var(input, tag) == nil
}

// register installs fn as a validator tag and maps the format name to it.
// The library panics on reserved tag names; that is reported as an error.
func (e *Engine) register(name string, fn Validator) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w %q: %v", ErrUnknownFormat, name, r)
		}
	}()
	err = e.validate.RegisterValidation(name, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().String())
	})
	if err != nil {
		return err
	}
	e.formats[name] = name
	return nil
}

func (e *Engine) pattern(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, ErrEmptyPattern
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if re, ok := e.patterns[expr]; ok {
		return re, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	e.patterns[expr] = re
	return re, nil
}

// selectedValue drops selections that are not declared options so a forged
// choice counts as nothing selected.
func selectedValue(field model.Field, value model.Value) model.Value {
	switch field.Kind {
	case model.KindChoice:
		if !field.HasOption(value.String()) {
			return model.Choice("")
		}
	case model.KindMultiSelect:
		var kept []string
		for _, v := range value.Values() {
			if field.HasOption(v) {
				kept = append(kept, v)
			}
		}
		return model.Set(kept...)
	}
	return value
}

// presence is what the required tag sees: the trimmed text, the number of
// selections or the flag.
func presence(field model.Field, value model.Value) any {
	switch field.Kind {
	case model.KindMultiSelect:
		return len(value.Values())
	case model.KindBoolean:
		return value.Bool()
	default:
		return strings.TrimSpace(value.String())
	}
}

func formatMessage(field model.Field) string {
	if field.FormatMessage != "" {
		return field.FormatMessage
	}
	return field.RequiredMessage
}
