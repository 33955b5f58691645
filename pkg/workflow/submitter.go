package workflow

import (
	"context"
	"net/http"
	"time"

	"github.com/craftmerge/go-regform/pkg/client"
)

// Reply is what a Submitter learned from the remote side.
type Reply struct {
	StatusCode int
	Fields     map[string][]string
}

// Submitter delivers an encoded payload. An error means no reply was
// obtained at all.
type Submitter interface {
	Submit(ctx context.Context, payload map[string]any) (Reply, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, payload map[string]any) (Reply, error)

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, payload map[string]any) (Reply, error) {
	return f(ctx, payload)
}

// Poster is the subset of client.Client the endpoint submitter needs.
type Poster interface {
	Do(ctx context.Context, operationID string, payload map[string]any) (*client.Response, error)
}

// Endpoint submits through p to the given API operation.
func Endpoint(p Poster, operationID string) Submitter {
	return SubmitterFunc(func(ctx context.Context, payload map[string]any) (Reply, error) {
		res, err := p.Do(ctx, operationID, payload)
		if err != nil {
			return Reply{}, err
		}
		return Reply{StatusCode: res.StatusCode, Fields: res.Fields}, nil
	})
}

// DefaultSimulatedDelay matches the pause of the offline startup flow.
const DefaultSimulatedDelay = 1500 * time.Millisecond

// Simulated waits for delay and then reports 201 without contacting anyone.
// A cancelled context ends the wait with the context error.
func Simulated(delay time.Duration) Submitter {
	return SubmitterFunc(func(ctx context.Context, _ map[string]any) (Reply, error) {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Reply{}, ctx.Err()
		case <-timer.C:
			return Reply{StatusCode: http.StatusCreated}, nil
		}
	})
}
