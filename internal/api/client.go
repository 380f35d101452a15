// Package api is the typed HTTP client for the gate-server REST API.
// It owns token injection and the classification of every failed
// response into the shared error taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	obserrors "github.com/fleetyard/gate-ops/internal/observability/errors"
)

// TokenProvider supplies the current bearer token for outgoing requests.
// The client never holds a token itself: the session layer owns the
// token lifecycle and the client reads it per request. An empty string
// means "no token" and the Authorization header is omitted.
type TokenProvider interface {
	Token() string
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func() string

// Token implements the TokenProvider interface.
func (f TokenProviderFunc) Token() string {
	if f == nil {
		return ""
	}
	return f()
}

// Options groups dependencies for NewClient.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenProvider
	// OnAuthError is invoked once per request that came back 401,
	// regardless of which endpoint it hit. The session layer registers
	// its teardown here; the hook itself must be idempotent.
	OnAuthError func()
	Logger      *slog.Logger
}

// Client issues requests against the gate-server API.
type Client struct {
	baseURL     string
	http        *http.Client
	tokens      TokenProvider
	onAuthError func()
	logger      *slog.Logger
}

// NewClient constructs a Client from options, applying defaults for
// anything unset.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		http:        httpClient,
		tokens:      opts.Tokens,
		onAuthError: opts.OnAuthError,
		logger:      logger,
	}
}

// requestParams groups parameters for do to keep the param count down.
type requestParams struct {
	Method string
	Path   string
	Query  url.Values
	Body   any // marshaled to JSON when non-nil
	Out    any // response body decoded into this when non-nil
}

// errorBody is the wire shape of error responses from gate-server.
type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func (c *Client) do(ctx context.Context, p requestParams) error {
	endpoint := c.baseURL + p.Path
	if len(p.Query) > 0 {
		endpoint += "?" + p.Query.Encode()
	}

	var body io.Reader
	if p.Body != nil {
		payload, err := json.Marshal(p.Body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, p.Method, endpoint, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		netErr := &Error{Kind: KindNetwork, Message: "no response received", cause: err}
		c.logger.Warn("api request failed",
			slog.String("method", p.Method),
			slog.String("path", p.Path),
			slog.String("error_type", obserrors.Classify(err)))
		return netErr
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if p.Out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(p.Out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	return c.classifyResponse(p, resp)
}

// classifyResponse turns a non-2xx response into a classified *Error and
// fires the auth hook for 401s. This is the single interception layer:
// every failed response passes through here exactly once.
func (c *Client) classifyResponse(p requestParams, resp *http.Response) error {
	var eb errorBody
	// Error bodies are best-effort; a malformed body still classifies.
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb)

	apiErr := &Error{
		Kind:    classifyStatus(resp.StatusCode),
		Status:  resp.StatusCode,
		Code:    eb.Error,
		Message: eb.Message,
		Fields:  eb.Fields,
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}

	c.logger.Warn("api request rejected",
		slog.String("method", p.Method),
		slog.String("path", p.Path),
		slog.Int("status", resp.StatusCode),
		slog.String("kind", string(apiErr.Kind)))

	if apiErr.Kind == KindAuth && c.onAuthError != nil {
		c.onAuthError()
	}
	return apiErr
}
