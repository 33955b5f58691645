// Package html renders the site pages and registration forms with pongo2
// templates.
package html

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

// Page names understood by the bundled templates. Pages without a template
// of their own render page.html with the page.<name>.title and
// page.<name>.body messages.
const (
	PageHome      = "home"
	PageLogin     = "login"
	PageForm      = "form"
	PageStartup   = "startup"
	PageDashboard = "dashboard"
	PageMessages  = "messages"
	PageNotFound  = "notfound"
)

var textPages = map[string]bool{
	PageLogin:     true,
	PageStartup:   true,
	PageDashboard: true,
	PageMessages:  true,
	PageNotFound:  true,
}

// NavItem is a header link. Key is a catalog key.
type NavItem struct {
	Path   string
	Key    string
	Active bool
}

// DefaultNav lists the site header links in display order.
var DefaultNav = []NavItem{
	{Path: "/", Key: "nav.home"},
	{Path: "/login", Key: "nav.login"},
	{Path: "/register", Key: "nav.register"},
	{Path: "/registerstartup", Key: "nav.registerStartup"},
	{Path: "/dashboard", Key: "nav.dashboard"},
	{Path: "/messages", Key: "nav.messages"},
}

// Page is everything a page template needs.
type Page struct {
	Name   string
	Locale string
	// Path marks the active header link.
	Path string
	// Param fills the %s in page title and body messages.
	Param  string
	Form   *render.FormView
	Action string
	// Resend adds the resend-activation block when set.
	Resend       *workflow.ResendSnapshot
	ResendAction string
	// Notice is a catalog key shown above the form.
	Notice string
}

// Option configures the renderer.
type Option func(*config)

type config struct {
	templateFS fs.FS
	baseDir    string
	translator render.Translator
	theme      *theme.RendererConfig
	nav        []NavItem
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk before the
// embedded bundle.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		if _, err := os.Stat(path); err == nil {
			cfg.baseDir = path
		}
	}
}

// WithTranslator sets the catalog behind the t() template function.
func WithTranslator(t render.Translator) Option {
	return func(cfg *config) {
		cfg.translator = t
	}
}

// WithTheme applies a resolved theme: CSS variables and asset URLs.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *config) {
		c.theme = cfg
	}
}

// WithNav replaces the header links.
func WithNav(items []NavItem) Option {
	return func(cfg *config) {
		cfg.nav = items
	}
}

// Renderer writes HTML pages.
type Renderer struct {
	templates  *engine
	translator render.Translator
	theme      *theme.RendererConfig
	nav        []NavItem
}

// New constructs the renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS(), nav: DefaultNav}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.translator == nil {
		catalog, err := render.DefaultCatalog()
		if err != nil {
			return nil, fmt.Errorf("html renderer: %w", err)
		}
		cfg.translator = catalog
	}

	if err := registerFilters(); err != nil {
		return nil, err
	}
	eng, err := newEngine(cfg.templateFS, cfg.baseDir)
	if err != nil {
		return nil, fmt.Errorf("html renderer: configure templates: %w", err)
	}

	r := &Renderer{
		templates:  eng,
		translator: cfg.translator,
		theme:      cfg.theme,
		nav:        cfg.nav,
	}
	eng.globals(map[string]any{
		"theme": newThemeView(cfg.theme),
		"asset": r.assetURL,
	})
	return r, nil
}

func (r *Renderer) Name() string {
	return "html"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render executes the template named by page.Name into w.
func (r *Renderer) Render(w io.Writer, page Page) error {
	if page.Name == "" {
		return fmt.Errorf("html renderer: page name is empty")
	}
	ctx := pongo2.Context{
		"page": page,
		"nav":  r.navFor(page.Path),
	}
	for name, fn := range render.TemplateI18nFuncs(r.translator, page.Locale, render.TemplateI18nConfig{}) {
		ctx[name] = fn
	}
	if page.Form != nil {
		ctx["form"] = page.Form
		ctx["succeeded"] = page.Form.Status == model.StatusSucceeded
	}
	if page.Resend != nil {
		ctx["resend"] = page.Resend
	}
	name := page.Name
	if textPages[name] {
		tr := ctx["t"].(func(string, ...any) string)
		var args []any
		if page.Param != "" {
			args = append(args, page.Param)
		}
		ctx["title"] = tr("page."+name+".title", args...)
		ctx["body"] = tr("page."+name+".body", args...)
		name = "page"
	}
	if err := r.templates.execute(r.templateFor(name), ctx, w); err != nil {
		return fmt.Errorf("html renderer: %w", err)
	}
	return nil
}

func (r *Renderer) navFor(current string) []NavItem {
	items := make([]NavItem, len(r.nav))
	for i, item := range r.nav {
		item.Active = item.Path == current
		items[i] = item
	}
	return items
}

// templateFor returns the theme's partial for a page, or the page name.
func (r *Renderer) templateFor(name string) string {
	if r.theme != nil {
		if file := r.theme.Partials[name]; file != "" {
			return file
		}
	}
	return name
}

func (r *Renderer) assetURL(key string) string {
	if r.theme != nil && r.theme.AssetURL != nil {
		if url := r.theme.AssetURL(key); url != "" {
			return url
		}
	}
	if key == "stylesheet" {
		return "/assets/" + StylesheetName
	}
	return ""
}
