// Package regform wires the CraftMerge registration flows: the bundled form
// schemas, the API client and the message catalogs.
//
//	forms, err := regform.New(regform.Config{BaseURL: "https://api.craftmerge.com"})
//	wf := forms.Investor("uk")
//	defer wf.Close()
//	snap, err := wf.Submit(ctx)
package regform

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/craftmerge/go-regform/pkg/client"
	"github.com/craftmerge/go-regform/pkg/contract"
	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/schema"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

// Config configures New.
type Config struct {
	// BaseURL is the registration API root, e.g. https://api.craftmerge.com.
	BaseURL string
	// Locale is used when a caller passes an empty locale.
	Locale string
	// SimulateStartup makes startup registrations succeed locally after
	// SimulatedDelay instead of calling the API.
	SimulateStartup bool
	SimulatedDelay  time.Duration
	// Timeout bounds each API call when HTTPClient is nil.
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *slog.Logger
	// UserAgent is sent with every API call. Empty means DefaultUserAgent.
	UserAgent string
	// Poster replaces the HTTP client, mainly in tests.
	Poster workflow.Poster
}

// DefaultUserAgent identifies the module to the registration API.
const DefaultUserAgent = "go-regform"

// Forms builds workflows bound to localized schemas.
type Forms struct {
	store    *schema.Store
	catalog  *render.Catalog
	locale   string
	logger   *slog.Logger
	register workflow.Submitter
	startup  workflow.Submitter
	resend   workflow.Submitter

	localized map[string]model.Schema
}

// New loads the embedded schemas and catalogs and connects them to the API.
func New(cfg Config) (*Forms, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	store, err := schema.Default()
	if err != nil {
		return nil, fmt.Errorf("regform: %w", err)
	}
	catalog, err := render.DefaultCatalog()
	if err != nil {
		return nil, fmt.Errorf("regform: %w", err)
	}

	poster := cfg.Poster
	if poster == nil {
		hc := cfg.HTTPClient
		if hc == nil {
			timeout := cfg.Timeout
			if timeout <= 0 {
				timeout = client.DefaultTimeout
			}
			hc = &http.Client{Timeout: timeout}
		}
		userAgent := cfg.UserAgent
		if userAgent == "" {
			userAgent = DefaultUserAgent
		}
		c, err := client.New(cfg.BaseURL,
			client.WithHTTPClient(hc),
			client.WithLogger(logger),
			client.WithHeader("User-Agent", userAgent),
		)
		if err != nil {
			return nil, fmt.Errorf("regform: %w", err)
		}
		poster = c
	}

	f := &Forms{
		store:     store,
		catalog:   catalog,
		locale:    catalog.Match(cfg.Locale),
		logger:    logger,
		register:  workflow.Endpoint(poster, contract.OpRegister),
		resend:    workflow.Endpoint(poster, contract.OpResend),
		localized: make(map[string]model.Schema),
	}
	f.startup = f.register
	if cfg.SimulateStartup {
		delay := cfg.SimulatedDelay
		if delay <= 0 {
			delay = workflow.DefaultSimulatedDelay
		}
		f.startup = workflow.Simulated(delay)
	}

	// Every locale is localized up front so lookups need no locking.
	for _, id := range store.IDs() {
		form := store.MustForm(id)
		for _, locale := range catalog.Locales() {
			f.localized[id+"/"+locale] = render.LocalizeSchema(form, locale, catalog, nil)
		}
	}
	return f, nil
}

// Catalog returns the message catalog.
func (f *Forms) Catalog() *render.Catalog {
	return f.catalog
}

// Locale resolves a language preference (a code or an Accept-Language
// value) to a supported locale. Empty input yields the configured default.
func (f *Forms) Locale(preference string) string {
	if preference == "" {
		return f.locale
	}
	return f.catalog.Match(preference)
}

// Schema returns form id localized for locale.
func (f *Forms) Schema(id, locale string) (model.Schema, bool) {
	form, ok := f.localized[id+"/"+f.Locale(locale)]
	return form, ok
}

// Investor starts an investor registration. Extra options are applied after
// the defaults.
func (f *Forms) Investor(locale string, opts ...workflow.Option) *workflow.Workflow {
	return f.workflow(schema.InvestorID, locale, f.register, opts)
}

// Startup starts a startup registration.
func (f *Forms) Startup(locale string, opts ...workflow.Option) *workflow.Workflow {
	return f.workflow(schema.StartupID, locale, f.startup, opts)
}

// Resend starts a resend-activation flow using the investor messages.
func (f *Forms) Resend(locale string) *workflow.Resend {
	form, _ := f.Schema(schema.InvestorID, locale)
	return workflow.NewResend(form, f.resend, workflow.WithResendLogger(f.logger))
}

func (f *Forms) workflow(id, locale string, submitter workflow.Submitter, opts []workflow.Option) *workflow.Workflow {
	form, _ := f.Schema(id, locale)
	return workflow.New(form, submitter, append([]workflow.Option{workflow.WithLogger(f.logger)}, opts...)...)
}
