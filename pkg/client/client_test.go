package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/craftmerge/go-regform/pkg/contract"
)

func TestNewRejectsRelativeURL(t *testing.T) {
	if _, err := New("/api"); !errors.Is(err, ErrBaseURL) {
		t.Fatalf("expected ErrBaseURL, got %v", err)
	}
}

func TestRegisterSendsJSONWithRequestID(t *testing.T) {
	var (
		gotPath   string
		gotMethod string
		gotID     string
		gotBody   map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotMethod = r.URL.Path, r.Method
		gotID = r.Header.Get(RequestIDHeader)
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	payload := map[string]any{
		"email":                "bob@investor.com",
		"password":             "Secret1!",
		"role":                 "investor",
		"company_name":         "Acme",
		"investment_range_min": float64(100),
		"investment_range_max": float64(200),
	}
	res, err := c.Register(context.Background(), payload)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if res.StatusCode != http.StatusCreated || !res.Success() {
		t.Fatalf("unexpected status %d", res.StatusCode)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/auth/register/" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	if gotID == "" || gotID != res.RequestID {
		t.Fatalf("request id mismatch: header=%q response=%q", gotID, res.RequestID)
	}
	if diff := cmp.Diff(payload, gotBody); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldErrorsAreParsed(t *testing.T) {
	tests := []struct {
		name string
		body string
		want Errors
	}{
		{name: "list", body: `{"email":["Ця електронна пошта вже зареєстрована"]}`, want: Errors{"email": {"Ця електронна пошта вже зареєстрована"}}},
		{name: "string", body: `{"detail":"nope"}`, want: Errors{"detail": {"nope"}}},
		{name: "envelope", body: `{"errors":{"password":["too short","too common"]}}`, want: Errors{"password": {"too short", "too common"}}},
		{name: "not json", body: `<html>oops</html>`, want: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			c, err := New(srv.URL)
			if err != nil {
				t.Fatalf("new: %v", err)
			}
			res, err := c.ResendActivation(context.Background(), "bob@investor.com")
			if err != nil {
				t.Fatalf("resend: %v", err)
			}
			if diff := cmp.Diff(tc.want, res.Fields); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContractViolationIsNeverSent(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	_, err = c.Register(context.Background(), map[string]any{"email": "a@b.c", "password": "Secret1!", "role": "admin"})
	if !errors.Is(err, contract.ErrPayloadRejected) {
		t.Fatalf("expected payload rejection, got %v", err)
	}
	if called {
		t.Fatalf("request must not be sent")
	}
}

func TestTransportErrorAndTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c, err := New(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := c.ResendActivation(context.Background(), "bob@investor.com"); err == nil {
		t.Fatalf("expected timeout error")
	}
}
