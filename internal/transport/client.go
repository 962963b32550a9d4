// Package transport is the JSON-over-HTTP layer used to talk to the PMS
// backend. It owns request encoding, authentication, response decoding and
// the translation of transport failures into typed errors. Mapping HTTP
// statuses onto domain errors is left to the caller, which knows what
// resource a path refers to.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agentstation/placement/pkg/constants"
	"github.com/agentstation/placement/pkg/errors"
	"github.com/agentstation/placement/pkg/logging"
)

// DefaultHTTPTimeout is the default timeout for HTTP requests.
var DefaultHTTPTimeout = constants.DefaultHTTPTimeout

// Client provides HTTP client functionality with authentication.
type Client struct {
	baseURL string
	http    *http.Client
	auth    Authenticator
	apiKey  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the request timeout on the underlying client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithAPIKey authenticates every request with the key using auth.
func WithAPIKey(auth Authenticator, apiKey string) Option {
	return func(c *Client) {
		c.auth = auth
		c.apiKey = apiKey
	}
}

// New creates a new transport client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultHTTPTimeout},
		auth:    &NoAuth{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends a JSON request and decodes a JSON response into out. body and
// out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.WrapParse("json", method+" "+path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.WrapResource("create", "request", method+" "+path, err)
	}

	resp, err := c.DoWithContext(ctx, req)
	if err != nil {
		return errors.NewNetworkError(method, path, err)
	}

	return DecodeResponse(resp, path, out)
}

// DoWithContext performs an HTTP request with authentication and common
// headers applied.
func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	req.Header.Set("Accept", "application/json")
	if req.Body != nil && (req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch) {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)

	logger := logging.FromContext(ctx)
	event := logger.Debug().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Dur("duration", time.Since(start))
	if err != nil {
		event.Err(err).Msg("Backend request failed")
		return nil, err
	}
	event.Int("status", resp.StatusCode).Msg("Backend request")
	return resp, nil
}
