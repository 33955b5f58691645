package html

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	theme "github.com/goliatone/go-theme"
)

// DefaultThemeName is the bundled theme.
const DefaultThemeName = "craftmerge"

// ErrUnknownTheme is returned when a theme name is not registered.
var ErrUnknownTheme = errors.New("html: unknown theme")

// DefaultManifest describes the bundled look: brand colors and a dark
// variant, with the stylesheet served under /assets.
func DefaultManifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    DefaultThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"brand":          "#4338ca",
			"brand-contrast": "#ffffff",
			"surface":        "#ffffff",
			"surface-alt":    "#f3f4f6",
			"text":           "#111827",
			"muted":          "#6b7280",
			"error":          "#b91c1c",
			"success":        "#15803d",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files: map[string]string{
				"stylesheet": StylesheetName,
			},
		},
		Variants: map[string]theme.Variant{
			"dark": {
				Tokens: map[string]string{
					"surface":     "#111827",
					"surface-alt": "#1f2937",
					"text":        "#f9fafb",
					"muted":       "#9ca3af",
				},
			},
		},
	}
}

// DefaultPartials maps page templates to their bundled files. A manifest
// overrides an entry by listing the same key under templates.
var DefaultPartials = map[string]string{
	PageHome: "home.html",
	PageForm: "form.html",
	"page":   "page.html",
}

// Themes registers manifests with a go-theme registry and selects from it.
type Themes struct {
	registry *theme.MemoryRegistry
	selector theme.Selector
}

// NewThemes registers manifests. The first one is the default theme.
func NewThemes(defaultVariant string, manifests ...*theme.Manifest) (*Themes, error) {
	registry := theme.NewRegistry()
	defaultTheme := ""
	for _, m := range manifests {
		if m == nil {
			continue
		}
		if err := registry.Register(m); err != nil {
			return nil, fmt.Errorf("html: register theme %q: %w", m.Name, err)
		}
		if defaultTheme == "" {
			defaultTheme = m.Name
		}
	}
	if defaultTheme == "" {
		return nil, fmt.Errorf("%w: no manifests", ErrUnknownTheme)
	}
	return &Themes{
		registry: registry,
		selector: theme.Selector{
			Registry:       registry,
			DefaultTheme:   defaultTheme,
			DefaultVariant: strings.TrimSpace(defaultVariant),
		},
	}, nil
}

// Select resolves name and variant, falling back to the defaults for empty
// values. A name that is set must be registered. An unknown variant selects
// the base theme.
func (t *Themes) Select(name, variant string, opts ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		if _, err := t.registry.Theme(name, opts...); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownTheme, name)
		}
	}
	sel, err := t.selector.Select(name, strings.TrimSpace(variant), opts...)
	if err != nil {
		return nil, fmt.Errorf("html: %w", err)
	}
	if _, ok := sel.Manifest.Variants[sel.Variant]; !ok {
		sel.Variant = ""
	}
	return sel, nil
}

var _ theme.ThemeSelector = (*Themes)(nil)

// RendererConfig resolves a selection against DefaultPartials.
func RendererConfig(sel *theme.Selection) *theme.RendererConfig {
	if sel == nil || sel.Manifest == nil {
		return nil
	}
	cfg := sel.RendererTheme(DefaultPartials)
	return &cfg
}

// themeView is the template-facing subset of a renderer configuration.
type themeView struct {
	Name         string
	Variant      string
	CSSVarsStyle string
}

func newThemeView(cfg *theme.RendererConfig) themeView {
	if cfg == nil {
		return themeView{}
	}
	return themeView{
		Name:         cfg.Theme,
		Variant:      cfg.Variant,
		CSSVarsStyle: cssVarsStyle(cfg.CSSVars),
	}
}

func cssVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range slices.Sorted(maps.Keys(vars)) {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(vars[key])
		b.WriteString("; ")
	}
	return strings.TrimSpace(b.String())
}
