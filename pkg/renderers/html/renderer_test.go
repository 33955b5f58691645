package html

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/google/go-cmp/cmp"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/schema"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

func renderPage(t *testing.T, r *Renderer, page Page) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, page); err != nil {
		t.Fatalf("render %s: %v", page.Name, err)
	}
	return buf.String()
}

func newRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r, err := New(opts...)
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	return r
}

func TestRenderFormPage(t *testing.T) {
	store, err := schema.Default()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	investor := store.MustForm(schema.InvestorID)
	state := model.InitialState(investor).
		With("email", model.Text("bob@investor.com")).
		With("password", model.Text("Secret1!")).
		With("representing", model.Set("company"))
	errs := model.ValidationErrors{"companyName": "Не ввели назву компанії"}
	view := render.NewFormView(investor, state, errs, "", model.StatusIdle)

	out := renderPage(t, newRenderer(t), Page{
		Name:         PageForm,
		Locale:       "uk",
		Path:         "/register",
		Form:         &view,
		Action:       "/register",
		Resend:       &workflow.ResendSnapshot{Email: "bob@investor.com"},
		ResendAction: "/register/resend",
	})

	for _, want := range []string{
		`<html lang="uk">`,
		investor.Title,
		`action="/register"`,
		`value="bob@investor.com"`,
		`<p class="error" role="alert">Не ввели назву компанії</p>`,
		`type="checkbox" name="representing" value="company" checked`,
		`action="/register/resend"`,
		`href="/register" aria-current="page"`,
		`inputmode="decimal"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Secret1!") {
		t.Fatalf("password echoed in output")
	}
}

func TestRenderSucceededFormHidesInputs(t *testing.T) {
	store, err := schema.Default()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	startup := store.MustForm(schema.StartupID)
	view := render.NewFormView(startup, model.InitialState(startup), nil, startup.Messages.Success, model.StatusSucceeded)

	out := renderPage(t, newRenderer(t), Page{Name: PageForm, Locale: "uk", Form: &view, Action: "/registerstartup"})
	if strings.Contains(out, `action="/registerstartup"`) {
		t.Fatalf("form should not be rendered after success")
	}
	if !strings.Contains(out, "notice-success") {
		t.Fatalf("success message missing:\n%s", out)
	}
}

func TestRenderSanitizesMessages(t *testing.T) {
	view := render.FormView{ID: "investor", Title: "T", General: `<b>Помилка</b> & зв'яжіться`}
	out := renderPage(t, newRenderer(t), Page{Name: PageForm, Locale: "uk", Form: &view})

	if strings.Contains(out, "<b>") {
		t.Fatalf("markup not stripped:\n%s", out)
	}
	if !strings.Contains(out, "Помилка &amp; зв&#39;яжіться") {
		t.Fatalf("message not escaped once:\n%s", out)
	}
}

func TestRenderTextPages(t *testing.T) {
	r := newRenderer(t)

	out := renderPage(t, r, Page{Name: PageNotFound, Locale: "en", Param: "/nope"})
	if !strings.Contains(out, "The page /nope does not exist.") {
		t.Fatalf("not found body missing:\n%s", out)
	}

	out = renderPage(t, r, Page{Name: PageStartup, Locale: "en", Param: "42"})
	if !strings.Contains(out, "<h1>Startup 42</h1>") {
		t.Fatalf("startup title missing:\n%s", out)
	}

	out = renderPage(t, r, Page{Name: PageHome, Locale: "en", Path: "/"})
	if !strings.Contains(out, `href="/registerstartup"`) {
		t.Fatalf("home links missing:\n%s", out)
	}

	if err := r.Render(&bytes.Buffer{}, Page{}); err == nil {
		t.Fatalf("expected error for empty page name")
	}
}

func TestThemes(t *testing.T) {
	themes, err := NewThemes("", DefaultManifest())
	if err != nil {
		t.Fatalf("themes: %v", err)
	}

	sel, err := themes.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if sel.Theme != DefaultThemeName || sel.Variant != "dark" {
		t.Fatalf("unexpected selection %s/%s", sel.Theme, sel.Variant)
	}
	cfg := RendererConfig(sel)
	if cfg.CSSVars["--surface"] != "#111827" || cfg.CSSVars["--brand"] != "#4338ca" {
		t.Fatalf("variant tokens not merged: %v", cfg.CSSVars)
	}
	if got := cfg.AssetURL("stylesheet"); got != "/assets/"+StylesheetName {
		t.Fatalf("unexpected stylesheet url %q", got)
	}

	if sel, _ := themes.Select("", "sepia"); sel.Variant != "" {
		t.Fatalf("unknown variant should select base theme, got %q", sel.Variant)
	}
	if _, err := themes.Select("nope", ""); !errors.Is(err, ErrUnknownTheme) {
		t.Fatalf("expected ErrUnknownTheme, got %v", err)
	}
	if diff := cmp.Diff(DefaultPartials, cfg.Partials); diff != "" {
		t.Fatalf("partials mismatch (-want +got):\n%s", diff)
	}

	out := renderPage(t, newRenderer(t, WithTheme(cfg)), Page{Name: PageHome, Locale: "uk"})
	if !strings.Contains(out, "--surface: #111827;") || !strings.Contains(out, `data-variant="dark"`) {
		t.Fatalf("theme not applied:\n%s", out)
	}
}

func TestThemeMatchesSelector(t *testing.T) {
	registry := theme.NewRegistry()
	if err := registry.Register(DefaultManifest()); err != nil {
		t.Fatalf("register: %v", err)
	}
	direct, err := theme.Selector{Registry: registry, DefaultTheme: DefaultThemeName}.Select("", "dark")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := direct.RendererTheme(DefaultPartials)

	themes, err := NewThemes("dark", DefaultManifest())
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	sel, err := themes.Select(DefaultThemeName, "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	got := RendererConfig(sel)

	if diff := cmp.Diff(want.CSSVars, got.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Tokens, got.Tokens); diff != "" {
		t.Fatalf("tokens mismatch (-want +got):\n%s", diff)
	}
	if want.AssetURL("stylesheet") != got.AssetURL("stylesheet") {
		t.Fatalf("asset url %q, want %q", got.AssetURL("stylesheet"), want.AssetURL("stylesheet"))
	}
	if got.AssetURL("missing") != "" {
		t.Fatalf("unknown asset should resolve to empty, got %q", got.AssetURL("missing"))
	}
}

func TestThemeTemplateOverride(t *testing.T) {
	manifest := DefaultManifest()
	manifest.Templates = map[string]string{PageHome: "page.html"}
	themes, err := NewThemes("", manifest)
	if err != nil {
		t.Fatalf("themes: %v", err)
	}
	sel, err := themes.Select("", "")
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	out := renderPage(t, newRenderer(t, WithTheme(RendererConfig(sel))), Page{Name: PageHome, Locale: "uk"})
	if strings.Contains(out, `class="card hero"`) || !strings.Contains(out, `<section class="card">`) {
		t.Fatalf("home should render through the themed partial:\n%s", out)
	}
}

func TestRegisterFilters(t *testing.T) {
	for range 2 {
		if err := registerFilters(); err != nil {
			t.Fatalf("register filters: %v", err)
		}
	}
	newRenderer(t)
	if !pongo2.FilterExists(cleanFilter) {
		t.Fatalf("%q filter not registered", cleanFilter)
	}
}

func TestSanitize(t *testing.T) {
	if got := Sanitize(`<script>alert(1)</script>ok`); got != "ok" {
		t.Fatalf("unexpected sanitize result %q", got)
	}
}
