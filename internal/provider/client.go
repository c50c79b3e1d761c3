// Package provider holds the HTTP plumbing shared by the Firecrawl, OpenAI
// and ElevenLabs clients: a gzip-aware transport, per-client rate limiting
// and conversion of error replies into apperr values.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzhttp"
	"golang.org/x/time/rate"

	"github.com/lexio-app/lexio/internal/apperr"
)

// DefaultTimeout bounds a single request, including reading the body.
const DefaultTimeout = 60 * time.Second

// DefaultRequestsPerMinute is the limiter default when none is configured.
const DefaultRequestsPerMinute = 120

const maxErrorBody = 64 << 10

// Options configures a Client.
type Options struct {
	BaseURL           string
	HTTPClient        *http.Client
	RequestsPerMinute int
}

// Option mutates Options.
type Option func(*Options)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(o *Options) {
		o.BaseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) {
		o.HTTPClient = c
	}
}

// WithRateLimit caps outgoing requests per minute. Zero or less disables
// limiting.
func WithRateLimit(perMinute int) Option {
	return func(o *Options) {
		o.RequestsPerMinute = perMinute
	}
}

// NewHTTPClient returns a client whose transport negotiates and transparently
// decodes gzip responses.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: gzhttp.Transport(http.DefaultTransport),
	}
}

// Client sends authenticated requests to one provider.
type Client struct {
	name    string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	headers http.Header
}

// New builds a client for the named provider. headers are added to every
// request.
func New(name, defaultBaseURL string, headers http.Header, opts ...Option) *Client {
	o := Options{
		BaseURL:           defaultBaseURL,
		RequestsPerMinute: DefaultRequestsPerMinute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.HTTPClient == nil {
		o.HTTPClient = NewHTTPClient(DefaultTimeout)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(o.RequestsPerMinute)), 1)
	}

	return &Client{
		name:    name,
		baseURL: o.BaseURL,
		http:    o.HTTPClient,
		limiter: limiter,
		headers: headers,
	}
}

// Name returns the provider name used in errors and logs.
func (c *Client) Name() string {
	return c.name
}

// BaseURL returns the API base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do waits for the rate limiter and sends req. Transport failures are
// returned as provider errors; the caller inspects the status code.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req.WithContext(ctx))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperr.Provider(c.name, 0, "request failed", err)
	}
	return resp, nil
}

// PostJSON marshals body and POSTs it to path under the base URL.
func (c *Client) PostJSON(ctx context.Context, path string, body any, accept string) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.Do(ctx, req)
}

// Get sends a GET to path under the base URL.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.Do(ctx, req)
}

// ReadJSON decodes a successful reply into v and closes the body.
func ReadJSON(resp *http.Response, v any) error {
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// OK reports whether resp carries a 2xx status.
func OK(resp *http.Response) bool {
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
