// Package client talks to the remote registration API. Endpoints are resolved
// from the OpenAPI contract and every payload is checked against it before a
// request leaves the process.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/craftmerge/go-regform/pkg/contract"
)

// DefaultTimeout bounds a single API call when no http.Client is supplied.
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 1 << 20

// RequestIDHeader carries the per-call correlation id.
const RequestIDHeader = "X-Request-ID"

// ErrBaseURL is returned by New for unusable base URLs.
var ErrBaseURL = errors.New("client: invalid base url")

// Errors maps payload field names to the messages the API returned for them.
type Errors map[string][]string

// First returns the first message for key.
func (e Errors) First(key string) string {
	if msgs := e[key]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Response is the outcome of a call that reached the API.
type Response struct {
	StatusCode int
	RequestID  string
	Fields     Errors
	Body       []byte
}

// Success reports a 2xx status.
func (r *Response) Success() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithContract swaps the bundled API contract.
func WithContract(ct *contract.Contract) Option {
	return func(c *Client) {
		if ct != nil {
			c.contract = ct
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if key != "" {
			c.headers[key] = value
		}
	}
}

// Client issues registration API calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	contract   *contract.Contract
	logger     *slog.Logger
	headers    map[string]string
}

// New builds a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("%w %q", ErrBaseURL, baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(parsed.String(), "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     slog.Default(),
		headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.contract == nil {
		ct, err := contract.Default()
		if err != nil {
			return nil, fmt.Errorf("client: %w", err)
		}
		c.contract = ct
	}
	return c, nil
}

// Do sends payload to the operation. A non-nil error means the request never
// produced a response: the payload violated the contract, the context ended or
// the transport failed. Any HTTP status is returned as a Response.
func (c *Client) Do(ctx context.Context, operationID string, payload map[string]any) (*Response, error) {
	ep, err := c.contract.Endpoint(operationID)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}
	if err := c.contract.CheckPayload(operationID, payload); err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("client: encode %s: %w", operationID, err)
	}

	req, err := http.NewRequestWithContext(ctx, ep.Method, c.baseURL+ep.Path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("client: build %s: %w", operationID, err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	started := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api request failed",
			"operation", operationID,
			"request_id", requestID,
			"error", err,
		)
		return nil, fmt.Errorf("client: %s %s: %w", ep.Method, ep.Path, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("client: read %s response: %w", operationID, err)
	}

	c.logger.Debug("api request",
		"operation", operationID,
		"method", ep.Method,
		"path", ep.Path,
		"status", res.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)

	out := &Response{
		StatusCode: res.StatusCode,
		RequestID:  requestID,
		Body:       raw,
	}
	if res.StatusCode >= 400 {
		out.Fields = parseErrors(raw)
	}
	return out, nil
}

// Register posts a registration payload.
func (c *Client) Register(ctx context.Context, payload map[string]any) (*Response, error) {
	return c.Do(ctx, contract.OpRegister, payload)
}

// ResendActivation asks the API to send the activation email again.
func (c *Client) ResendActivation(ctx context.Context, email string) (*Response, error) {
	return c.Do(ctx, contract.OpResend, map[string]any{"email": email})
}

// parseErrors reads {"field": ["msg", ...]} or {"field": "msg"} bodies. A
// nested {"errors": {...}} envelope is unwrapped first. Anything else yields
// nil.
func parseErrors(raw []byte) Errors {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}
	if nested, ok := decoded["errors"].(map[string]any); ok {
		decoded = nested
	}

	out := make(Errors, len(decoded))
	for key, value := range decoded {
		switch v := value.(type) {
		case string:
			out[key] = []string{v}
		case []any:
			for _, item := range v {
				if s, ok := item.(string); ok {
					out[key] = append(out[key], s)
				}
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
