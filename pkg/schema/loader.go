// Package schema loads registration form schemas from YAML or JSON documents.
// The investor and startup forms ship embedded; callers may load their own
// directory with LoadFS.
package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/validation"
)

// Identifiers of the bundled forms.
const (
	InvestorID = "investor"
	StartupID  = "startup"
)

// Store holds loaded schemas keyed by id.
type Store struct {
	forms map[string]model.Schema
}

// Option configures LoadFS.
type Option func(*loadConfig)

type loadConfig struct {
	engine *validation.Engine
}

// WithEngine checks format names against engine instead of the default one.
func WithEngine(engine *validation.Engine) Option {
	return func(cfg *loadConfig) {
		if engine != nil {
			cfg.engine = engine
		}
	}
}

// LoadFS walks fsys and parses every .yaml, .yml and .json file as one form
// schema. Each schema must pass model.Schema.Validate and reference only
// formats the engine knows. When fsys is nil the returned store is empty.
func LoadFS(fsys fs.FS, opts ...Option) (*Store, error) {
	cfg := loadConfig{engine: validation.New()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	store := &Store{forms: make(map[string]model.Schema)}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}

		form, err := Parse(data, path)
		if err != nil {
			return err
		}
		if err := cfg.engine.CheckSchema(form); err != nil {
			return fmt.Errorf("schema: file %s: %w", path, err)
		}
		if _, exists := store.forms[form.ID]; exists {
			return fmt.Errorf("schema: duplicate form %q (file %s)", form.ID, path)
		}
		store.forms[form.ID] = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Parse decodes a single schema document. JSON is tried first, then YAML.
func Parse(data []byte, source string) (model.Schema, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return model.Schema{}, fmt.Errorf("schema: file %s is empty", source)
	}

	var form model.Schema
	if err := json.Unmarshal(data, &form); err != nil {
		form = model.Schema{}
		if err := yaml.Unmarshal(data, &form); err != nil {
			return model.Schema{}, fmt.Errorf("schema: parse %s: %w", source, err)
		}
	}

	form.ID = strings.TrimSpace(form.ID)
	for i := range form.Fields {
		form.Fields[i].Key = strings.TrimSpace(form.Fields[i].Key)
		form.Fields[i].Kind = model.FieldKind(strings.ToLower(string(form.Fields[i].Kind)))
		if form.Fields[i].Kind == "" {
			form.Fields[i].Kind = model.KindText
		}
	}

	if err := form.Validate(); err != nil {
		return model.Schema{}, fmt.Errorf("schema: file %s: %w", source, err)
	}
	return form, nil
}

// Form returns the schema registered under id.
func (s *Store) Form(id string) (model.Schema, bool) {
	if s == nil {
		return model.Schema{}, false
	}
	form, ok := s.forms[id]
	return form, ok
}

// MustForm panics when id is missing. Useful for init-time wiring.
func (s *Store) MustForm(id string) model.Schema {
	form, ok := s.Form(id)
	if !ok {
		panic(fmt.Sprintf("schema: form %q not found", id))
	}
	return form
}

// IDs lists the loaded form ids in sorted order.
func (s *Store) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.forms))
	for id := range s.forms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the store built from the embedded forms.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = LoadFS(EmbeddedFS())
	})
	return defaultStore, defaultErr
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}
