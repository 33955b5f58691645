package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/craftmerge/go-regform/pkg/model"
)

// EmailKey is the form key the resend flow borrows its required message from.
const EmailKey = "email"

// ResendSnapshot is the observable state of the resend-activation flow.
type ResendSnapshot struct {
	Email   string
	Sending bool
	Message string
	Error   string
}

// ResendOption configures a Resend flow.
type ResendOption func(*Resend)

// WithResendLogger sets the structured logger.
func WithResendLogger(logger *slog.Logger) ResendOption {
	return func(r *Resend) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// OnResendChange registers an observer called after every transition.
func OnResendChange(fn func(ResendSnapshot)) ResendOption {
	return func(r *Resend) {
		if fn != nil {
			r.observers = append(r.observers, fn)
		}
	}
}

// Resend asks the API to send the activation email again. It keeps a single
// email value that is independent of the registration form state.
type Resend struct {
	submitter Submitter
	success   string
	general   string
	required  string
	logger    *slog.Logger
	observers []func(ResendSnapshot)

	life  context.Context
	close context.CancelFunc

	mu     sync.Mutex
	snap   ResendSnapshot
	closed bool
}

// NewResend builds the flow for schema, reusing its resend and general
// messages and the required message of its email field.
func NewResend(schema model.Schema, submitter Submitter, opts ...ResendOption) *Resend {
	life, cancel := context.WithCancel(context.Background())
	r := &Resend{
		submitter: submitter,
		success:   schema.Messages.ResendSuccess,
		general:   schema.Messages.General,
		logger:    slog.Default(),
		life:      life,
		close:     cancel,
	}
	if f, ok := schema.Field(EmailKey); ok {
		r.required = f.RequiredMessage
	}
	if r.required == "" {
		r.required = r.general
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.logger = r.logger.With("form", schema.ID, "flow", "resend")
	return r
}

// Snapshot returns the current state.
func (r *Resend) Snapshot() ResendSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snap
}

// SetEmail replaces the email value.
func (r *Resend) SetEmail(email string) error {
	_, err := r.install(func(s ResendSnapshot) ResendSnapshot {
		s.Email = email
		return s
	})
	return err
}

// Send clears previous messages and posts the email. A blank email is
// rejected locally with the required message and nothing is sent. A 2xx
// reply installs the confirmation and clears the email; anything else keeps
// the email and reports the general error. After Close the result of an
// in-flight request is dropped and ErrClosed is returned.
func (r *Resend) Send(ctx context.Context) (ResendSnapshot, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return ResendSnapshot{}, ErrClosed
	}
	if r.snap.Sending {
		snap := r.snap
		r.mu.Unlock()
		return snap, ErrSubmitInProgress
	}
	email := strings.TrimSpace(r.snap.Email)
	if email == "" {
		r.snap = ResendSnapshot{Email: r.snap.Email, Error: r.required}
		snap := r.snap
		r.mu.Unlock()
		r.notify(snap)
		return snap, nil
	}
	r.snap = ResendSnapshot{Email: r.snap.Email, Sending: true}
	sending := r.snap
	r.mu.Unlock()
	r.notify(sending)

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(r.life, cancel)
	reply, err := r.submitter.Submit(reqCtx, map[string]any{EmailKey: email})
	stop()
	cancel()

	switch {
	case err != nil:
		r.logger.Warn("resend failed", "error", err)
		return r.install(r.failed)
	case reply.StatusCode >= 200 && reply.StatusCode < 300:
		r.logger.Info("resend accepted", "status", reply.StatusCode)
		return r.install(func(ResendSnapshot) ResendSnapshot {
			return ResendSnapshot{Message: r.success}
		})
	default:
		r.logger.Warn("resend rejected", "status", reply.StatusCode)
		return r.install(r.failed)
	}
}

// Close detaches the flow. An in-flight request is cancelled and its result
// dropped; later calls return ErrClosed.
func (r *Resend) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	r.close()
}

func (r *Resend) failed(s ResendSnapshot) ResendSnapshot {
	return ResendSnapshot{Email: s.Email, Error: r.general}
}

func (r *Resend) install(fn func(ResendSnapshot) ResendSnapshot) (ResendSnapshot, error) {
	r.mu.Lock()
	if r.closed {
		snap := r.snap
		r.mu.Unlock()
		return snap, ErrClosed
	}
	r.snap = fn(r.snap)
	snap := r.snap
	r.mu.Unlock()
	r.notify(snap)
	return snap, nil
}

func (r *Resend) notify(snap ResendSnapshot) {
	for _, fn := range r.observers {
		fn(snap)
	}
}
