package tui

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/craftmerge/go-regform/pkg/model"
	"github.com/craftmerge/go-regform/pkg/render"
	"github.com/craftmerge/go-regform/pkg/schema"
	"github.com/craftmerge/go-regform/pkg/workflow"
)

type stubDriver struct {
	inputs       []string
	passwords    []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	infoMessages []string
	inputConfigs []InputConfig
	inputPos     int
	passPos      int
	selectPos    int
	multiPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.inputConfigs = append(s.inputConfigs, cfg)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, _ InputConfig) (string, error) {
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, _ SelectConfig) (int, error) {
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, _ SelectConfig) ([]int, error) {
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func (s *stubDriver) saw(fragment string) bool {
	for _, msg := range s.infoMessages {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}

type scriptedSubmitter struct {
	replies  []workflow.Reply
	payloads []map[string]any
}

func (s *scriptedSubmitter) Submit(_ context.Context, payload map[string]any) (workflow.Reply, error) {
	s.payloads = append(s.payloads, payload)
	reply := s.replies[0]
	if len(s.replies) > 1 {
		s.replies = s.replies[1:]
	}
	return reply, nil
}

func startupForm(t *testing.T) model.Schema {
	t.Helper()
	store, err := schema.Default()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	return store.MustForm(schema.StartupID)
}

func TestRun_SubmitsCollectedValues(t *testing.T) {
	form := startupForm(t)
	driver := &stubDriver{
		inputs:    []string{"Acme", "ann@startup.io", "Doe", "Ann"},
		passwords: []string{"longpassword", "longpassword"},
		selectIdx: []int{1, 0},
	}
	sub := &scriptedSubmitter{replies: []workflow.Reply{{StatusCode: http.StatusCreated}}}
	wf := workflow.New(form, sub)
	defer wf.Close()

	snap, err := New(WithPromptDriver(driver)).Run(context.Background(), wf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if snap.Status != model.StatusSucceeded {
		t.Fatalf("expected success, got %s", snap.Status)
	}
	want := []map[string]any{{
		"company_name": "Acme",
		"email":        "ann@startup.io",
		"password":     "longpassword",
		"last_name":    "Doe",
		"first_name":   "Ann",
		"representing": "startup_project",
		"entity_type":  "sole_proprietor",
		"role":         "startup",
	}}
	if diff := cmp.Diff(want, sub.payloads); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
	if !driver.saw(form.Messages.Success) {
		t.Fatalf("success message not shown: %v", driver.infoMessages)
	}
}

func TestRun_ReasksOnlyInvalidFields(t *testing.T) {
	form := startupForm(t)
	driver := &stubDriver{
		inputs:    []string{"Acme", "bad", "Doe", "Ann", "ann@startup.io"},
		passwords: []string{"longpassword", "different1", "longpassword"},
		selectIdx: []int{0, 1},
	}
	sub := &scriptedSubmitter{replies: []workflow.Reply{{StatusCode: http.StatusCreated}}}
	wf := workflow.New(form, sub)
	defer wf.Close()

	snap, err := New(WithPromptDriver(driver)).Run(context.Background(), wf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if snap.Status != model.StatusSucceeded || len(sub.payloads) != 1 {
		t.Fatalf("expected one successful submit, got %s after %d", snap.Status, len(sub.payloads))
	}
	if driver.inputPos != 5 || driver.passPos != 3 || driver.selectPos != 2 {
		t.Fatalf("unexpected prompt counts: input=%d password=%d select=%d", driver.inputPos, driver.passPos, driver.selectPos)
	}
	if got := driver.inputConfigs[4].Default; got != "bad" {
		t.Fatalf("re-asked email should prefill last value, got %q", got)
	}
	if !driver.saw("Не вірна пошта") || !driver.saw("Паролі не співпадають") {
		t.Fatalf("field errors not shown: %v", driver.infoMessages)
	}
	if sub.payloads[0]["email"] != "ann@startup.io" {
		t.Fatalf("unexpected email %v", sub.payloads[0]["email"])
	}
}

func TestRun_ServerFieldErrorReasksField(t *testing.T) {
	form := startupForm(t)
	driver := &stubDriver{
		inputs:    []string{"Acme", "ann@startup.io", "Doe", "Ann", "ann2@startup.io"},
		passwords: []string{"longpassword", "longpassword"},
		selectIdx: []int{0, 0},
	}
	sub := &scriptedSubmitter{replies: []workflow.Reply{
		{StatusCode: http.StatusBadRequest, Fields: map[string][]string{"email": {"Already registered"}}},
		{StatusCode: http.StatusCreated},
	}}
	wf := workflow.New(form, sub)
	defer wf.Close()

	snap, err := New(WithPromptDriver(driver)).Run(context.Background(), wf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if snap.Status != model.StatusSucceeded || len(sub.payloads) != 2 {
		t.Fatalf("expected second submit to succeed, got %s after %d", snap.Status, len(sub.payloads))
	}
	if !driver.saw("Already registered") {
		t.Fatalf("server error not shown: %v", driver.infoMessages)
	}
	if sub.payloads[1]["email"] != "ann2@startup.io" {
		t.Fatalf("unexpected resubmitted email %v", sub.payloads[1]["email"])
	}
}

func TestRun_FailureRetryDeclined(t *testing.T) {
	form := startupForm(t)
	driver := &stubDriver{
		inputs:    []string{"Acme", "ann@startup.io", "Doe", "Ann"},
		passwords: []string{"longpassword", "longpassword"},
		selectIdx: []int{0, 0},
		confirm:   []bool{true, false},
	}
	sub := &scriptedSubmitter{replies: []workflow.Reply{{StatusCode: http.StatusInternalServerError}}}
	wf := workflow.New(form, sub)
	defer wf.Close()

	snap, err := New(WithPromptDriver(driver)).Run(context.Background(), wf)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if snap.Status != model.StatusFailed {
		t.Fatalf("expected failed, got %s", snap.Status)
	}
	if len(sub.payloads) != 2 {
		t.Fatalf("expected one retry, got %d submits", len(sub.payloads))
	}
	if !driver.saw(form.Messages.General) {
		t.Fatalf("general message not shown: %v", driver.infoMessages)
	}
	if snap.State.Value("email").String() != "ann@startup.io" {
		t.Fatalf("failure must keep the entered values")
	}
}

func TestRun_AbortStopsSession(t *testing.T) {
	form := startupForm(t)
	wf := workflow.New(form, &scriptedSubmitter{replies: []workflow.Reply{{StatusCode: http.StatusCreated}}})
	defer wf.Close()

	_, err := New(WithPromptDriver(&stubDriver{})).Run(context.Background(), wf)
	if err == nil {
		t.Fatalf("expected prompt error")
	}
	if _, err := New(WithPromptDriver(&stubDriver{})).Run(context.Background(), nil); !errors.Is(err, ErrNilWorkflow) {
		t.Fatalf("expected ErrNilWorkflow, got %v", err)
	}
}

func TestRunResend(t *testing.T) {
	store, err := schema.Default()
	if err != nil {
		t.Fatalf("schemas: %v", err)
	}
	investor := store.MustForm(schema.InvestorID)

	t.Run("blank email", func(t *testing.T) {
		sub := &scriptedSubmitter{replies: []workflow.Reply{{StatusCode: http.StatusOK}}}
		driver := &stubDriver{inputs: []string{"  "}}
		snap, err := New(WithPromptDriver(driver)).RunResend(context.Background(), workflow.NewResend(investor, sub))
		if err != nil {
			t.Fatalf("resend: %v", err)
		}
		if len(sub.payloads) != 0 || snap.Error == "" {
			t.Fatalf("blank email must not be sent: %+v", snap)
		}
	})

	t.Run("accepted", func(t *testing.T) {
		sub := &scriptedSubmitter{replies: []workflow.Reply{{StatusCode: http.StatusOK}}}
		driver := &stubDriver{inputs: []string{"bob@investor.com"}, confirm: []bool{true}}
		sess := New(WithPromptDriver(driver))
		ok, err := sess.OfferResend(context.Background(), workflow.NewResend(investor, sub))
		if err != nil || !ok {
			t.Fatalf("offer resend: %v %v", ok, err)
		}
		if diff := cmp.Diff([]map[string]any{{"email": "bob@investor.com"}}, sub.payloads); diff != "" {
			t.Fatalf("payload mismatch (-want +got):\n%s", diff)
		}
		if !driver.saw(investor.Messages.ResendSuccess) {
			t.Fatalf("confirmation not shown: %v", driver.infoMessages)
		}
	})
}

func TestSessionTextUsesTranslator(t *testing.T) {
	catalog, err := render.DefaultCatalog()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	en := New(WithPromptDriver(&stubDriver{}), WithTranslator(catalog, "en"))
	if got := en.text("tui.retry", "fallback"); got != "Try again?" {
		t.Fatalf("unexpected text %q", got)
	}
	if got := en.text("tui.unknown", "fallback"); got != "fallback" {
		t.Fatalf("missing key should use fallback, got %q", got)
	}
}
