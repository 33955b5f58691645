// Package contract describes the remote registration API with an OpenAPI 3
// document. Clients resolve endpoints by operation id and check outgoing
// payloads against the request schema before anything is sent.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation ids declared by the bundled document.
const (
	OpRegister = "registerUser"
	OpResend   = "resendActivation"
)

var (
	// ErrUnknownOperation is returned for operation ids the document lacks.
	ErrUnknownOperation = errors.New("contract: unknown operation")
	// ErrPayloadRejected wraps request bodies that violate the schema.
	ErrPayloadRejected = errors.New("contract: payload rejected")
)

//go:embed api.yaml
var bundled []byte

// Endpoint is a resolved API operation.
type Endpoint struct {
	OperationID string
	Method      string
	Path        string
	Summary     string

	body *openapi3.SchemaRef
}

// Contract is a validated OpenAPI document indexed by operation id.
type Contract struct {
	doc       *openapi3.T
	endpoints map[string]Endpoint
}

// Load parses and validates an OpenAPI document.
func Load(ctx context.Context, data []byte) (*Contract, error) {
	if len(data) == 0 {
		return nil, errors.New("contract: document payload is empty")
	}

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: false,
	}
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("contract: load document: %w", err)
	}
	if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
		return nil, fmt.Errorf("contract: validate: %w", err)
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("contract: document does not contain any paths")
	}

	c := &Contract{doc: doc, endpoints: make(map[string]Endpoint)}
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil || op.OperationID == "" {
				continue
			}
			if _, dup := c.endpoints[op.OperationID]; dup {
				return nil, fmt.Errorf("contract: duplicate operation %q", op.OperationID)
			}
			c.endpoints[op.OperationID] = Endpoint{
				OperationID: op.OperationID,
				Method:      strings.ToUpper(method),
				Path:        path,
				Summary:     op.Summary,
				body:        jsonBodySchema(op.RequestBody),
			}
		}
	}
	return c, nil
}

var (
	defaultOnce     sync.Once
	defaultContract *Contract
	defaultErr      error
)

// Default returns the bundled registration API contract.
func Default() (*Contract, error) {
	defaultOnce.Do(func() {
		defaultContract, defaultErr = Load(context.Background(), bundled)
	})
	return defaultContract, defaultErr
}

// Endpoint resolves an operation id.
func (c *Contract) Endpoint(operationID string) (Endpoint, error) {
	ep, ok := c.endpoints[operationID]
	if !ok {
		return Endpoint{}, fmt.Errorf("%w %q", ErrUnknownOperation, operationID)
	}
	return ep, nil
}

// Operations lists the known operation ids in sorted order.
func (c *Contract) Operations() []string {
	ids := make([]string, 0, len(c.endpoints))
	for id := range c.endpoints {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Title reports the document title.
func (c *Contract) Title() string {
	if c.doc == nil || c.doc.Info == nil {
		return ""
	}
	return c.doc.Info.Title
}

// CheckPayload validates a JSON-shaped payload (strings, float64, bool,
// []any, map[string]any) against the operation's request schema.
func (c *Contract) CheckPayload(operationID string, payload map[string]any) error {
	ep, err := c.Endpoint(operationID)
	if err != nil {
		return err
	}
	if ep.body == nil || ep.body.Value == nil {
		return nil
	}
	if err := ep.body.Value.VisitJSON(payload, openapi3.MultiErrors()); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrPayloadRejected, operationID, err)
	}
	return nil
}

func jsonBodySchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	mt := body.Value.Content.Get("application/json")
	if mt == nil {
		return nil
	}
	return mt.Schema
}
