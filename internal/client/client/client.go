package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/taiglo/internal/common"
)

// TokenSource yields the credential to attach to outgoing requests.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a plain function to TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// Client is the API client for the Taiglo backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenSource sets the credential source used by Do.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// New creates a client for baseURL, e.g. "http://localhost:3000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetTokenSource wires the credential source after construction. The
// session manager needs the client before it exists, so the CLI calls this
// once at startup.
func (c *Client) SetTokenSource(ts TokenSource) {
	c.tokens = ts
}

// BaseURL returns the configured base URL without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// Do sends a JSON request to path (relative to the base URL) with the
// current credential attached and decodes a 2xx JSON response into out.
// body and out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var r io.Reader
	contentType := ""
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		r = bytes.NewReader(b)
		contentType = "application/json"
	}
	return c.send(ctx, method, c.baseURL+path, query, contentType, r, c.currentToken(), false, out)
}

func (c *Client) currentToken() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.Token()
}

// send performs one request. When forceBearer is set the Authorization
// header is sent even for an empty token.
func (c *Client) send(ctx context.Context, method, rawURL string, query url.Values, contentType string, body io.Reader, token string, forceBearer bool, out any) error {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" || forceBearer {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		switch {
		case errors.Is(ctx.Err(), context.Canceled):
			return fmt.Errorf("%w: request canceled: %w", ErrNetwork, ctx.Err())
		case errors.Is(ctx.Err(), context.DeadlineExceeded):
			return fmt.Errorf("%w: request timed out: %w", ErrNetwork, ctx.Err())
		}
		return fmt.Errorf("%w: cannot connect to backend at %s: %w", ErrNetwork, c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeRejection(resp)
	}

	if out == nil {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: reading response: %w", ErrNetwork, err)
		}
		*raw = b
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("invalid response from backend: %w", err)
	}
	return nil
}

func decodeRejection(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}

// Health calls the gateway's /health endpoint, which lives outside /api.
func (c *Client) Health(ctx context.Context) (string, error) {
	var out struct {
		Status string `json:"status"`
	}
	healthURL := strings.TrimSuffix(c.baseURL, "/api") + "/health"
	if err := c.send(ctx, http.MethodGet, healthURL, nil, "", nil, "", false, &out); err != nil {
		return "", err
	}
	return out.Status, nil
}
