// Package testsupport provides an in-process stand-in for the registration
// API so flows can be exercised end to end without a network.
package testsupport

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/craftmerge/go-regform/pkg/contract"
)

// Reply is a canned API answer.
type Reply struct {
	Status int
	Body   any
}

// Call is one request the fake API received.
type Call struct {
	Operation string
	RequestID string
	UserAgent string
	Payload   map[string]any
}

// FakeAPI serves the register and resend-activation endpoints. Replies are
// consumed in order per operation; once a queue is empty the default reply
// is used (201 for register, 200 for resend).
type FakeAPI struct {
	Server *httptest.Server

	mu      sync.Mutex
	calls   []Call
	replies map[string][]Reply
}

// NewFakeAPI starts the server and closes it when t finishes.
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	api := &FakeAPI{replies: make(map[string][]Reply)}

	r := chi.NewRouter()
	r.Post("/api/auth/register/", api.handle(contract.OpRegister, Reply{Status: http.StatusCreated, Body: map[string]any{"detail": "created"}}))
	r.Post("/api/auth/resend-activation/", api.handle(contract.OpResend, Reply{Status: http.StatusOK, Body: map[string]any{"detail": "sent"}}))

	api.Server = httptest.NewServer(r)
	t.Cleanup(api.Server.Close)
	return api
}

// URL is the server base URL.
func (a *FakeAPI) URL() string {
	return a.Server.URL
}

// Queue appends replies for operation.
func (a *FakeAPI) Queue(operation string, replies ...Reply) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.replies[operation] = append(a.replies[operation], replies...)
}

// Calls returns the requests received so far.
func (a *FakeAPI) Calls() []Call {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]Call(nil), a.calls...)
}

// CallsFor returns the requests received for operation.
func (a *FakeAPI) CallsFor(operation string) []Call {
	var out []Call
	for _, c := range a.Calls() {
		if c.Operation == operation {
			out = append(out, c)
		}
	}
	return out
}

func (a *FakeAPI) handle(operation string, fallback Reply) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &payload); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": "malformed json"})
			return
		}

		a.mu.Lock()
		a.calls = append(a.calls, Call{
			Operation: operation,
			RequestID: r.Header.Get("X-Request-ID"),
			UserAgent: r.UserAgent(),
			Payload:   payload,
		})
		reply := fallback
		if queue := a.replies[operation]; len(queue) > 0 {
			reply = queue[0]
			a.replies[operation] = queue[1:]
		}
		a.mu.Unlock()

		writeJSON(w, reply.Status, reply.Body)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
