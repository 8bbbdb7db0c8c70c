// Package api is the typed client for the Ferretex backend. It translates
// store-level intents into HTTP calls, normalizes the backend's inconsistent
// field naming into canonical records, and surfaces failures as coded errors.
// It holds no cache; caching is the store's responsibility.
package api

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
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	pkgerrors "github.com/ferretex/storefront-client/pkg/errors"
	"github.com/ferretex/storefront-client/pkg/logger"
)

const defaultTimeout = 15 * time.Second

var (
	errBaseURLRequired = errors.New("backend base url is required")
	errLoggerRequired  = errors.New("api logger is required")
)

// Resource names a backend collection with a change marker.
type Resource string

const (
	ResourceProducts Resource = "products"
	ResourceOrders   Resource = "orders"
)

// Client issues requests against the Ferretex backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	logger     *logger.Logger
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(userAgent)
		if trimmed != "" {
			c.userAgent = trimmed
		}
	}
}

// WithTimeout overrides the default request timeout on the built-in client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds a backend client rooted at baseURL.
func NewClient(baseURL string, logg *logger.Logger, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if logg == nil {
		return nil, errLoggerRequired
	}

	client := &Client{
		baseURL:   trimmed,
		userAgent: "ferretex-storefront/1.0",
		logger:    logg,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Health probes the backend health endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, requestSpec{method: http.MethodGet, path: "/api/health", op: "health"}, nil)
}

type requestSpec struct {
	method string
	path   string
	op     string
	token  string
	query  url.Values
	body   any
}

// requireToken guards endpoints that need a bearer credential. Callers fail
// fast instead of sending a request the backend will reject.
func requireToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return pkgerrors.New(pkgerrors.CodeAuthRequired, "bearer token required")
	}
	return nil
}

func (c *Client) do(ctx context.Context, spec requestSpec, out any) error {
	target := c.baseURL + spec.path
	if len(spec.query) > 0 {
		target += "?" + spec.query.Encode()
	}

	var body io.Reader
	if spec.body != nil {
		encoded, err := json.Marshal(spec.body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding request body")
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, spec.method, target, body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if spec.body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if spec.token != "" {
		req.Header.Set("Authorization", "Bearer "+spec.token)
	}

	ctx = c.logger.WithFields(ctx, map[string]any{
		"operation": spec.op,
		"method":    spec.method,
		"path":      spec.path,
	})
	c.logger.Debug(ctx, "backend request")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s request failed", spec.op))
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading response body")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := errorFromResponse(res.StatusCode, raw)
		c.logger.Debug(c.logger.WithField(ctx, "status", res.StatusCode), "backend error response")
		return apiErr
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decoding response body")
	}
	return nil
}

// errorFromResponse maps a non-2xx response onto the domain error taxonomy,
// extracting the human message from the body when one is present.
func errorFromResponse(status int, raw []byte) error {
	payload := parsePayload(raw)
	return pkgerrors.NewHTTP(status, errorMessage(payload, status), payload)
}

// parsePayload decodes a response body that may be JSON or plain text.
func parsePayload(raw []byte) any {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil
	}
	var decoded any
	if err := json.Unmarshal(trimmed, &decoded); err == nil {
		return decoded
	}
	return string(trimmed)
}

func errorMessage(payload any, status int) string {
	fallback := fmt.Sprintf("HTTP %d", status)
	switch typed := payload.(type) {
	case nil:
		return fallback
	case string:
		if typed != "" {
			return typed
		}
		return fallback
	case map[string]any:
		for _, key := range []string{"message", "error"} {
			if msg, ok := typed[key].(string); ok && msg != "" {
				return msg
			}
		}
		return fallback
	default:
		return fallback
	}
}
