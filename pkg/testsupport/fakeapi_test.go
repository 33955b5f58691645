package testsupport

import (
	"context"
	"net/http"
	"testing"

	"github.com/craftmerge/go-regform/pkg/client"
	"github.com/craftmerge/go-regform/pkg/contract"
)

func TestFakeAPI_QueueAndDefaults(t *testing.T) {
	api := NewFakeAPI(t)
	api.Queue(contract.OpRegister, Reply{Status: http.StatusBadRequest, Body: map[string]any{"email": []string{"taken"}}})

	c, err := client.New(api.URL())
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	payload := map[string]any{"email": "a@b.co", "password": "Secret1!", "role": "investor"}

	resp, err := c.Register(context.Background(), payload)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest || resp.Fields.First("email") != "taken" {
		t.Fatalf("unexpected queued reply %+v", resp)
	}

	resp, err = c.Register(context.Background(), payload)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected default 201, got %+v %v", resp, err)
	}

	if _, err := c.ResendActivation(context.Background(), "a@b.co"); err != nil {
		t.Fatalf("resend: %v", err)
	}

	if got := len(api.CallsFor(contract.OpRegister)); got != 2 {
		t.Fatalf("expected 2 register calls, got %d", got)
	}
	resend := api.CallsFor(contract.OpResend)
	if len(resend) != 1 || resend[0].Payload["email"] != "a@b.co" || resend[0].RequestID == "" {
		t.Fatalf("unexpected resend calls %+v", resend)
	}
}
