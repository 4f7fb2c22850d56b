package revit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"apsconnect/pkg/logging"
)

// Default connection parameters for the Routes API listener.
const (
	DefaultHost = "localhost"
	DefaultPort = 48884

	routePrefix = "/revit_mcp"

	// statusTimeout bounds the health probe so a hung listener does not
	// stall status checks for the full request timeout.
	statusTimeout = 10 * time.Second
)

// APIError is a non-200 response from the Routes API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("routes API returned %d: %s", e.StatusCode, e.Body)
}

// Client is an HTTP client for the local Routes API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

// NewClient creates a client for the Routes API at host:port. Zero values
// fall back to the defaults.
func NewClient(host string, port int, timeout time.Duration, maxRetries int, retryWait time.Duration, opts ...Option) *Client {
	if host == "" {
		host = DefaultHost
	}
	if port <= 0 {
		port = DefaultPort
	}

	c := &Client{
		baseURL: fmt.Sprintf("http://%s:%d%s", host, port, routePrefix),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient == nil {
		rc := retryablehttp.NewClient()
		rc.Logger = nil
		rc.RetryMax = maxRetries
		if rc.RetryMax <= 0 {
			rc.RetryMax = 3
		}
		rc.RetryWaitMin = retryWait
		if rc.RetryWaitMin <= 0 {
			rc.RetryWaitMin = 1 * time.Second
		}
		rc.HTTPClient.Timeout = timeout
		if rc.HTTPClient.Timeout <= 0 {
			rc.HTTPClient.Timeout = 30 * time.Second
		}
		c.httpClient = rc.StandardClient()
	}

	return c
}

// BaseURL returns the client's base URL including the route prefix.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get performs a GET against a Routes API endpoint and returns the raw
// JSON payload.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	u := c.baseURL + endpoint
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req)
}

// Post sends a JSON payload to a Routes API endpoint.
func (c *Client) Post(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	logging.Debug("RevitClient", "%s %s", req.Method, req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("routes API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return json.RawMessage(body), nil
}

// Status probes the Routes API health endpoint with a short deadline.
func (c *Client) Status(ctx context.Context) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()
	return c.Get(ctx, "/status/", nil)
}

// ModelInfo fetches information about the currently open model.
func (c *Client) ModelInfo(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "/model_info/", nil)
}

// ListLevels fetches the model's level listing.
func (c *Client) ListLevels(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "/list_levels/", nil)
}
