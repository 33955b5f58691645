// Package site serves the registration pages over HTTP.
package site

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	regform "github.com/craftmerge/go-regform"
	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/renderers/html"
	"github.com/craftmerge/go-regform/pkg/schema"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the default HTML renderer.
func WithRenderer(r *html.Renderer) Option {
	return func(s *Server) {
		if r != nil {
			s.renderer = r
		}
	}
}

// WithLocale pins every page to locale instead of negotiating it.
func WithLocale(locale string) Option {
	return func(s *Server) {
		s.locale = strings.TrimSpace(locale)
	}
}

// WithRateLimit sets the per-client budget for form posts.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps > 0 && burst > 0 {
			s.limiter = newLimiterCache(rps, burst)
		}
	}
}

// WithTrustedOrigins allows cross-origin posts from the given hosts.
func WithTrustedOrigins(origins []string) Option {
	return func(s *Server) {
		s.trustedOrigins = origins
	}
}

// Server renders pages and runs one workflow per form post.
type Server struct {
	forms          *regform.Forms
	renderer       *html.Renderer
	logger         *slog.Logger
	locale         string
	limiter        *limiterCache
	trustedOrigins []string
	csrfKey        []byte
}

// New builds a server on top of forms.
func New(forms *regform.Forms, opts ...Option) (*Server, error) {
	if forms == nil {
		return nil, fmt.Errorf("site: forms are required")
	}
	s := &Server{
		forms:   forms,
		logger:  slog.Default(),
		limiter: newLimiterCache(1, 5),
		csrfKey: make([]byte, 32),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.renderer == nil {
		r, err := html.New(html.WithTranslator(forms.Catalog()))
		if err != nil {
			return nil, fmt.Errorf("site: %w", err)
		}
		s.renderer = r
	}
	if _, err := rand.Read(s.csrfKey); err != nil {
		return nil, fmt.Errorf("site: csrf key: %w", err)
	}
	return s, nil
}

// Handler returns the router with middleware installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(s.protect)

	handlers := map[string]http.HandlerFunc{
		"home":                   s.textPage(html.PageHome),
		"login":                  s.textPage(html.PageLogin),
		"register":               s.showInvestor,
		"register.submit":        s.submitInvestor,
		"register.resend":        s.submitResend,
		"registerstartup":        s.showStartup,
		"registerstartup.submit": s.submitStartup,
		"startup":                s.startupProfile,
		"dashboard":              s.textPage(html.PageDashboard),
		"messages":               s.textPage(html.PageMessages),
		"assets":                 http.StripPrefix("/assets/", http.FileServerFS(html.AssetsFS())).ServeHTTP,
	}
	for _, rt := range routeTable {
		h := handlers[rt.Name]
		if rt.Method == http.MethodPost {
			h = s.limit(h)
		}
		r.Method(rt.Method, rt.Pattern, h)
	}
	r.NotFound(s.notFound)
	return r
}

func (s *Server) textPage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.render(w, r, http.StatusOK, html.Page{Name: name})
	}
}

func (s *Server) startupProfile(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, html.Page{Name: html.PageStartup, Param: chi.URLParam(r, "id")})
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, html.Page{Name: html.PageNotFound, Param: r.URL.Path})
}

func (s *Server) showInvestor(w http.ResponseWriter, r *http.Request) {
	locale := s.localeFor(r)
	form, _ := s.forms.Schema(schema.InvestorID, locale)
	s.renderForm(w, r, http.StatusOK, form, workflow.Snapshot{State: model.InitialState(form)}, &workflow.ResendSnapshot{})
}

func (s *Server) showStartup(w http.ResponseWriter, r *http.Request) {
	locale := s.localeFor(r)
	form, _ := s.forms.Schema(schema.StartupID, locale)
	s.renderForm(w, r, http.StatusOK, form, workflow.Snapshot{State: model.InitialState(form)}, nil)
}

func (s *Server) submitInvestor(w http.ResponseWriter, r *http.Request) {
	wf := s.forms.Investor(s.localeFor(r))
	s.submit(w, r, wf, &workflow.ResendSnapshot{})
}

func (s *Server) submitStartup(w http.ResponseWriter, r *http.Request) {
	wf := s.forms.Startup(s.localeFor(r))
	s.submit(w, r, wf, nil)
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request, wf *workflow.Workflow, resend *workflow.ResendSnapshot) {
	defer wf.Close()
	form := wf.Schema()
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	if err := wf.Load(bindState(form, r)); err != nil {
		s.fail(w, r, err)
		return
	}
	snap, err := wf.Submit(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.renderForm(w, r, statusFor(snap), form, snap, resend)
}

func (s *Server) submitResend(w http.ResponseWriter, r *http.Request) {
	locale := s.localeFor(r)
	form, _ := s.forms.Schema(schema.InvestorID, locale)
	resend := s.forms.Resend(locale)
	defer resend.Close()
	email := r.PostFormValue(workflow.EmailKey)
	if err := resend.SetEmail(email); err != nil {
		s.fail(w, r, err)
		return
	}

	snap, err := resend.Send(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	status := http.StatusOK
	if snap.Error != "" {
		status = http.StatusBadGateway
		if strings.TrimSpace(email) == "" {
			status = http.StatusUnprocessableEntity
		}
	}
	s.renderForm(w, r, status, form, workflow.Snapshot{State: model.InitialState(form)}, &snap)
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, form model.Schema, snap workflow.Snapshot, resend *workflow.ResendSnapshot) {
	view := render.NewFormView(form, snap.State, snap.Errors, snap.Message, snap.Status)
	page := html.Page{
		Name:   html.PageForm,
		Form:   &view,
		Action: r.URL.Path,
		Resend: resend,
	}
	if strings.HasSuffix(page.Action, "/resend") {
		page.Action = strings.TrimSuffix(page.Action, "/resend")
	}
	if resend != nil {
		page.ResendAction = page.Action + "/resend"
	}
	s.render(w, r, status, page)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page html.Page) {
	page.Locale = s.localeFor(r)
	if page.Path == "" {
		page.Path = r.URL.Path
	}
	if page.Action != "" {
		page.Path = page.Action
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, page); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Content-Language", page.Locale)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", chimw.GetReqID(r.Context()))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// localeFor honours a pinned locale, then ?lang=, then Accept-Language.
func (s *Server) localeFor(r *http.Request) string {
	if s.locale != "" {
		return s.forms.Locale(s.locale)
	}
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return s.forms.Locale(lang)
	}
	return s.forms.Locale(r.Header.Get("Accept-Language"))
}

func (s *Server) text(locale, key string) string {
	msg, err := s.forms.Catalog().Translate(locale, key)
	if err != nil {
		return http.StatusText(http.StatusTooManyRequests)
	}
	return msg
}

// statusFor maps a finished submit to the HTTP status of the re-rendered
// page.
func statusFor(snap workflow.Snapshot) int {
	switch snap.Status {
	case model.StatusSucceeded:
		return http.StatusOK
	case model.StatusFailed:
		return http.StatusBadGateway
	}
	return http.StatusUnprocessableEntity
}

// bindState reads posted values for the fields form declares. Checkbox and
// radio groups post one value per selection.
func bindState(form model.Schema, r *http.Request) model.State {
	state := model.InitialState(form)
	for _, field := range form.Fields {
		values := r.PostForm[field.Key]
		first := ""
		if len(values) > 0 {
			first = values[0]
		}
		switch field.Kind {
		case model.KindMultiSelect:
			state = state.With(field.Key, model.Set(values...))
		case model.KindChoice:
			state = state.With(field.Key, model.Choice(first))
		case model.KindBoolean:
			state = state.With(field.Key, model.Flag(first == "true" || first == "on"))
		default:
			state = state.With(field.Key, model.Text(first))
		}
	}
	return state
}
