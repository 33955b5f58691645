// Package render holds presentation support shared by the terminal and HTML
// front ends: message catalogs and locale negotiation, schema localization,
// server error mapping and the FormView model renderers draw from.
package render

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/craftmerge/go-regform/pkg/model"
)

//go:embed locales
var localesFS embed.FS

// DefaultLocale is the language the bundled schemas are written in.
const DefaultLocale = "uk"

var (
	// ErrMissingTranslator is reported when no translator is configured.
	ErrMissingTranslator = errors.New("render: translator is nil")
	// ErrMissingTranslation is reported for keys absent from every locale.
	ErrMissingTranslation = errors.New("render: missing translation")
)

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler decides what to show when a key cannot be
// translated.
type MissingTranslationHandler func(locale, key string, args []any, err error) string

func missingTranslationDefault(_ string, key string, args []any, _ error) string {
	for _, arg := range args {
		if m, ok := arg.(map[string]any); ok {
			if def, ok := m["default"].(string); ok && strings.TrimSpace(def) != "" {
				return def
			}
		}
	}
	return key
}

type messageFile struct {
	Language string `json:"language"`
	Messages []struct {
		ID          string `json:"id"`
		Translation string `json:"translation"`
	} `json:"messages"`
}

// Catalog holds flat key/message tables per locale.
type Catalog struct {
	mu           sync.RWMutex
	translations map[string]map[string]string
	supported    []language.Tag
	matcher      language.Matcher
	defaultLang  string
}

// NewCatalog reads <locale>/messages.json files from fsys. defaultLang must
// be one of them and is used for fallback and negotiation misses.
func NewCatalog(fsys fs.FS, defaultLang string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("render: read locales: %w", err)
	}

	c := &Catalog{
		translations: make(map[string]map[string]string),
		defaultLang:  defaultLang,
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := c.loadLanguage(fsys, entry.Name()); err != nil {
			return nil, err
		}
	}
	if _, ok := c.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("render: default locale %q has no messages", defaultLang)
	}

	langs := make([]string, 0, len(c.translations))
	for lang := range c.translations {
		if lang != defaultLang {
			langs = append(langs, lang)
		}
	}
	slices.Sort(langs)
	// The first tag is the matcher's fallback.
	c.supported = append(c.supported, language.MustParse(defaultLang))
	for _, lang := range langs {
		c.supported = append(c.supported, language.MustParse(lang))
	}
	c.matcher = language.NewMatcher(c.supported)
	return c, nil
}

func (c *Catalog) loadLanguage(fsys fs.FS, lang string) error {
	file := path.Join(lang, "messages.json")
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("render: read %s: %w", file, err)
	}
	var msgFile messageFile
	if err := json.Unmarshal(data, &msgFile); err != nil {
		return fmt.Errorf("render: parse %s: %w", file, err)
	}
	if _, err := language.Parse(lang); err != nil {
		return fmt.Errorf("render: locale %q: %w", lang, err)
	}

	table := make(map[string]string, len(msgFile.Messages))
	for _, msg := range msgFile.Messages {
		table[msg.ID] = msg.Translation
	}
	c.mu.Lock()
	c.translations[lang] = table
	c.mu.Unlock()
	return nil
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     *Catalog
	defaultCatalogErr  error
)

// DefaultCatalog returns the embedded Ukrainian and English catalogs.
func DefaultCatalog() (*Catalog, error) {
	defaultCatalogOnce.Do(func() {
		sub, err := fs.Sub(localesFS, "locales")
		if err != nil {
			defaultCatalogErr = err
			return
		}
		defaultCatalog, defaultCatalogErr = NewCatalog(sub, DefaultLocale)
	})
	return defaultCatalog, defaultCatalogErr
}

// Locales lists supported locales, default first.
func (c *Catalog) Locales() []string {
	out := make([]string, 0, len(c.supported))
	for _, tag := range c.supported {
		out = append(out, tag.String())
	}
	return out
}

// Match picks the best supported locale for a language code or an
// Accept-Language header value. Unparseable input yields the default.
func (c *Catalog) Match(preference string) string {
	preference = strings.TrimSpace(preference)
	if preference == "" {
		return c.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(preference)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(preference)
		if err != nil {
			return c.defaultLang
		}
		tags = []language.Tag{tag}
	}
	_, idx, conf := c.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(c.supported) {
		return c.defaultLang
	}
	return c.supported[idx].String()
}

// Translate looks key up in locale, then in the default locale. Arguments
// are applied with fmt.Sprintf.
func (c *Catalog) Translate(locale, key string, args ...any) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	msg, ok := c.translations[locale][key]
	if !ok {
		msg, ok = c.translations[c.defaultLang][key]
	}
	if !ok {
		return "", fmt.Errorf("%w: %s (%s)", ErrMissingTranslation, key, locale)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...), nil
	}
	return msg, nil
}

// LocalizeSchema returns a copy of schema with user-facing strings replaced
// by catalog entries. Keys follow "<form>.<field>.<attr>",
// "<form>.<field>.option.<value>", "<form>.match.<field>", "<form>.title"
// and "<form>.messages.<name>". Missing keys keep the schema's own text.
func LocalizeSchema(schema model.Schema, locale string, t Translator, onMissing MissingTranslationHandler) model.Schema {
	if onMissing == nil {
		onMissing = missingTranslationDefault
	}
	tr := func(key, fallback string) string {
		if fallback == "" {
			return ""
		}
		return translate(locale, schema.ID+"."+key, fallback, t, onMissing)
	}

	out := schema
	out.Title = tr("title", schema.Title)
	out.Fields = make([]model.Field, len(schema.Fields))
	// Option slices are copied so the caller's schema stays untouched.
	for i, field := range schema.Fields {
		prefix := field.Key + "."
		field.Label = tr(prefix+"label", field.Label)
		field.Placeholder = tr(prefix+"placeholder", field.Placeholder)
		field.Help = tr(prefix+"help", field.Help)
		field.RequiredMessage = tr(prefix+"required", field.RequiredMessage)
		field.FormatMessage = tr(prefix+"format", field.FormatMessage)
		if len(field.Options) > 0 {
			options := make([]model.Option, len(field.Options))
			for j, opt := range field.Options {
				opt.Label = tr(prefix+"option."+opt.Value, opt.Label)
				options[j] = opt
			}
			field.Options = options
		}
		out.Fields[i] = field
	}
	if len(schema.Matches) > 0 {
		out.Matches = make([]model.Match, len(schema.Matches))
		for i, m := range schema.Matches {
			m.Message = tr("match."+m.Key, m.Message)
			out.Matches[i] = m
		}
	}
	out.Messages = model.Messages{
		Success:       tr("messages.success", schema.Messages.Success),
		General:       tr("messages.general", schema.Messages.General),
		ResendSuccess: tr("messages.resendSuccess", schema.Messages.ResendSuccess),
	}
	return out
}

func translate(locale, key, fallback string, t Translator, onMissing MissingTranslationHandler) string {
	args := []any{map[string]any{"default": fallback}}
	if t == nil {
		return onMissing(locale, key, args, ErrMissingTranslator)
	}
	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	return onMissing(locale, key, args, err)
}
