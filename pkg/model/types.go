package model

import (
	"fmt"
	"strings"
)

// FieldKind enumerates the inputs a registration form can declare.
type FieldKind string

const (
	KindText        FieldKind = "text"
	KindPassword    FieldKind = "password"
	KindNumber      FieldKind = "number"
	KindMultiSelect FieldKind = "multiselect"
	KindChoice      FieldKind = "choice"
	KindBoolean     FieldKind = "boolean"
)

// Valid reports whether k is a known kind.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindPassword, KindNumber, KindMultiSelect, KindChoice, KindBoolean:
		return true
	}
	return false
}

// HasOptions reports whether the kind selects from a declared option list.
func (k FieldKind) HasOptions() bool {
	return k == KindMultiSelect || k == KindChoice
}

// GeneralKey is the ValidationErrors key reserved for form-level messages.
const GeneralKey = "general"

// Option is a selectable entry of a multi-select or choice field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// Field describes a single form input. Format names a validator registered
// with the validation engine; API is the request payload name, and fields
// without one are not sent.
type Field struct {
	Key             string            `json:"key" yaml:"key"`
	Kind            FieldKind         `json:"kind" yaml:"kind"`
	Label           string            `json:"label,omitempty" yaml:"label"`
	Placeholder     string            `json:"placeholder,omitempty" yaml:"placeholder"`
	Help            string            `json:"help,omitempty" yaml:"help"`
	Required        bool              `json:"required,omitempty" yaml:"required"`
	RequiredMessage string            `json:"requiredMessage,omitempty" yaml:"requiredMessage"`
	Format          string            `json:"format,omitempty" yaml:"format"`
	Pattern         string            `json:"pattern,omitempty" yaml:"pattern"`
	FormatMessage   string            `json:"formatMessage,omitempty" yaml:"formatMessage"`
	Options         []Option          `json:"options,omitempty" yaml:"options"`
	API             string            `json:"api,omitempty" yaml:"api"`
	Metadata        map[string]string `json:"metadata,omitempty" yaml:"metadata"`
}

// HasOption reports whether value is one of the declared options.
func (f Field) HasOption(value string) bool {
	for _, opt := range f.Options {
		if opt.Value == value {
			return true
		}
	}
	return false
}

// Match pairs two fields that must hold equal values, e.g. a password and
// its confirmation. The mismatch is reported under Key.
type Match struct {
	Key     string `json:"key" yaml:"key"`
	Other   string `json:"other" yaml:"other"`
	Message string `json:"message" yaml:"message"`
}

// Messages holds the fixed user-facing outcome messages of a form.
type Messages struct {
	Success       string `json:"success" yaml:"success"`
	General       string `json:"general" yaml:"general"`
	ResendSuccess string `json:"resendSuccess,omitempty" yaml:"resendSuccess"`
}

// Schema is an ordered form description. Role is the constant account role
// sent with every registration payload and Operation the API operation id the
// form submits to.
type Schema struct {
	ID        string   `json:"id" yaml:"id"`
	Title     string   `json:"title,omitempty" yaml:"title"`
	Role      string   `json:"role,omitempty" yaml:"role"`
	Operation string   `json:"operation,omitempty" yaml:"operation"`
	Fields    []Field  `json:"fields" yaml:"fields"`
	Matches   []Match  `json:"match,omitempty" yaml:"match"`
	Messages  Messages `json:"messages" yaml:"messages"`
}

// Field returns the descriptor registered under key.
func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

// FieldByAPI resolves a payload name back to its descriptor.
func (s Schema) FieldByAPI(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.API != "" && f.API == name {
			return f, true
		}
	}
	return Field{}, false
}

// Keys lists the field keys in declaration order.
func (s Schema) Keys() []string {
	out := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		out = append(out, f.Key)
	}
	return out
}

// Validate checks the structural invariants of the schema: non-empty unique
// keys, known kinds, option lists on selection fields and resolvable match
// references.
func (s Schema) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: schema id is required", ErrInvalidSchema)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	apiSeen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		key := strings.TrimSpace(f.Key)
		if key == "" {
			return fmt.Errorf("%w: schema %q field %d has no key", ErrInvalidSchema, s.ID, i)
		}
		if key == GeneralKey {
			return fmt.Errorf("%w: schema %q uses reserved key %q", ErrInvalidSchema, s.ID, GeneralKey)
		}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: schema %q field %q", ErrDuplicateField, s.ID, key)
		}
		seen[key] = struct{}{}

		if !f.Kind.Valid() {
			return fmt.Errorf("%w: schema %q field %q has unknown kind %q", ErrInvalidSchema, s.ID, key, f.Kind)
		}
		if f.Kind.HasOptions() && len(f.Options) == 0 {
			return fmt.Errorf("%w: schema %q field %q declares no options", ErrInvalidSchema, s.ID, key)
		}
		if f.Required && strings.TrimSpace(f.RequiredMessage) == "" {
			return fmt.Errorf("%w: schema %q field %q is required but has no message", ErrInvalidSchema, s.ID, key)
		}
		if f.API != "" {
			if _, dup := apiSeen[f.API]; dup {
				return fmt.Errorf("%w: schema %q payload name %q", ErrDuplicateField, s.ID, f.API)
			}
			apiSeen[f.API] = struct{}{}
		}
	}
	for _, m := range s.Matches {
		if _, ok := seen[m.Key]; !ok {
			return fmt.Errorf("%w: schema %q match key %q", ErrUnknownField, s.ID, m.Key)
		}
		if _, ok := seen[m.Other]; !ok {
			return fmt.Errorf("%w: schema %q match other %q", ErrUnknownField, s.ID, m.Other)
		}
	}
	return nil
}

// Status is the submission state of a workflow.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)
