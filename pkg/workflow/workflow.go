// Package workflow drives a registration form through validation and
// submission. A Workflow owns one form instance: edits replace its state
// wholesale, Submit validates locally and, when clean, sends exactly one
// request and classifies the reply. Every transition installs a complete
// Snapshot so observers never see a half-applied result.
package workflow

import (
	"context"
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"sync"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/validation"
)

// Snapshot is the observable state of a workflow at one instant. Message
// holds the success confirmation; failures are reported in Errors.
type Snapshot struct {
	Status  model.Status
	State   model.State
	Errors  model.ValidationErrors
	Message string
}

// Busy reports whether a submission is underway.
func (s Snapshot) Busy() bool {
	return s.Status == model.StatusValidating || s.Status == model.StatusSubmitting
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithEngine overrides the validation engine.
func WithEngine(engine *validation.Engine) Option {
	return func(w *Workflow) {
		if engine != nil {
			w.engine = engine
		}
	}
}

// WithEncoder overrides payload encoding.
func WithEncoder(enc Encoder) Option {
	return func(w *Workflow) {
		if enc != nil {
			w.encode = enc
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workflow) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// OnChange registers an observer called after every transition, outside the
// workflow lock.
func OnChange(fn func(Snapshot)) Option {
	return func(w *Workflow) {
		if fn != nil {
			w.observers = append(w.observers, fn)
		}
	}
}

// Workflow is a single form instance bound to a schema and a submitter.
type Workflow struct {
	schema    model.Schema
	submitter Submitter
	engine    *validation.Engine
	encode    Encoder
	logger    *slog.Logger
	observers []func(Snapshot)

	life  context.Context
	close context.CancelFunc

	mu     sync.Mutex
	snap   Snapshot
	closed bool
}

// New creates an idle workflow with the schema's initial state.
func New(schema model.Schema, submitter Submitter, opts ...Option) *Workflow {
	life, cancel := context.WithCancel(context.Background())
	w := &Workflow{
		schema:    schema,
		submitter: submitter,
		engine:    validation.New(),
		encode:    EncodePayload,
		logger:    slog.Default(),
		life:      life,
		close:     cancel,
		snap: Snapshot{
			Status: model.StatusIdle,
			State:  model.InitialState(schema),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	w.logger = w.logger.With("form", schema.ID)
	return w
}

// Schema returns the schema the workflow was built with.
func (w *Workflow) Schema() model.Schema {
	return w.schema
}

// Snapshot returns the current snapshot.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snap
}

// Set replaces the value of one field. The value must fit the field kind.
func (w *Workflow) Set(key string, value model.Value) error {
	field, ok := w.schema.Field(key)
	if !ok {
		return unknownField(key)
	}
	if !value.Fits(field.Kind) {
		return kindMismatch(field)
	}
	return w.update(func(s Snapshot) Snapshot {
		s.State = s.State.With(key, value)
		return s
	})
}

// Toggle flips option in a multi-select field or selects it in a choice field.
// Selecting the current choice again clears it.
func (w *Workflow) Toggle(key, option string) error {
	field, ok := w.schema.Field(key)
	if !ok {
		return unknownField(key)
	}
	return w.update(func(s Snapshot) Snapshot {
		current := s.State.Value(key)
		switch field.Kind {
		case model.KindChoice:
			if current.Has(option) {
				s.State = s.State.With(key, model.Choice(""))
			} else {
				s.State = s.State.With(key, model.Choice(option))
			}
		case model.KindBoolean:
			s.State = s.State.With(key, model.Flag(!current.Bool()))
		default:
			s.State = s.State.With(key, current.Toggle(option))
		}
		return s
	})
}

// Load replaces the whole state, keeping only keys the schema declares. A
// value that does not fit its field kind rejects the whole load.
func (w *Workflow) Load(state model.State) error {
	next := model.InitialState(w.schema)
	for _, key := range state.Keys() {
		field, ok := w.schema.Field(key)
		if !ok {
			continue
		}
		if !state.Value(key).Fits(field.Kind) {
			return kindMismatch(field)
		}
		next = next.With(key, state.Value(key))
	}
	return w.update(func(s Snapshot) Snapshot {
		s.State = next
		return s
	})
}

// Submit validates the current state and, when it is clean, sends a single
// request. Validation failures and server replies are reported through the
// returned Snapshot; the error is only set when the submit could not start
// or its result was dropped because the workflow was closed.
func (w *Workflow) Submit(ctx context.Context) (Snapshot, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	if w.snap.Busy() {
		snap := w.snap
		w.mu.Unlock()
		return snap, ErrSubmitInProgress
	}
	validating := Snapshot{Status: model.StatusValidating, State: w.snap.State}
	w.snap = validating
	w.mu.Unlock()
	w.notify(validating)
	w.logger.Debug("form transition", "status", model.StatusValidating)

	if errs := w.engine.Validate(w.schema, validating.State); !errs.Empty() {
		w.logger.Debug("form invalid", "fields", sortedKeys(errs))
		return w.install(func(s Snapshot) Snapshot {
			return Snapshot{Status: model.StatusIdle, State: s.State, Errors: errs}
		})
	}

	payload, err := w.encode(w.schema, validating.State)
	if err != nil {
		w.logger.Warn("form encode failed", "error", err)
		return w.install(w.failed)
	}

	submitting, err := w.install(func(s Snapshot) Snapshot {
		return Snapshot{Status: model.StatusSubmitting, State: s.State}
	})
	if err != nil {
		return submitting, err
	}

	reqCtx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(w.life, cancel)
	reply, err := w.submitter.Submit(reqCtx, payload)
	stop()
	cancel()

	if err != nil {
		w.logger.Warn("form submit failed", "error", err)
		return w.install(w.failed)
	}
	return w.install(func(s Snapshot) Snapshot {
		return w.classify(s, reply)
	})
}

// Close detaches the workflow. In-flight requests are cancelled and their
// results dropped; later calls return ErrClosed.
func (w *Workflow) Close() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.close()
}

func (w *Workflow) classify(s Snapshot, reply Reply) Snapshot {
	switch {
	case reply.StatusCode == http.StatusCreated:
		w.logger.Info("form submitted", "status", reply.StatusCode)
		return Snapshot{
			Status:  model.StatusSucceeded,
			State:   model.InitialState(w.schema),
			Errors:  model.ValidationErrors{},
			Message: w.schema.Messages.Success,
		}
	case reply.StatusCode == http.StatusBadRequest:
		mapping := render.MapErrorPayload(w.schema, reply.Fields)
		if len(mapping.Form) > 0 {
			w.logger.Info("form rejected with detail", "detail", mapping.Form)
		}
		if errs := mapping.First(); !errs.Empty() {
			w.logger.Info("form rejected", "fields", sortedKeys(errs))
			return Snapshot{Status: model.StatusIdle, State: s.State, Errors: errs}
		}
	}
	w.logger.Warn("form submit failed", "status", reply.StatusCode)
	return w.failed(s)
}

func (w *Workflow) failed(s Snapshot) Snapshot {
	return Snapshot{
		Status: model.StatusFailed,
		State:  s.State,
		Errors: model.ValidationErrors{model.GeneralKey: w.schema.Messages.General},
	}
}

func (w *Workflow) update(fn func(Snapshot) Snapshot) error {
	_, err := w.install(fn)
	return err
}

func (w *Workflow) install(fn func(Snapshot) Snapshot) (Snapshot, error) {
	w.mu.Lock()
	if w.closed {
		snap := w.snap
		w.mu.Unlock()
		return snap, ErrClosed
	}
	w.snap = fn(w.snap)
	snap := w.snap
	w.mu.Unlock()
	w.notify(snap)
	return snap, nil
}

func (w *Workflow) notify(snap Snapshot) {
	for _, fn := range w.observers {
		fn(snap)
	}
}

func sortedKeys(errs model.ValidationErrors) []string {
	return slices.Sorted(maps.Keys(errs))
}
