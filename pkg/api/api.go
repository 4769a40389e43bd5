// Package api is the authenticated HTTP client for the dashboard
// service's request/response API.
//
// Every request carries a freshly issued short-lived auth token as an
// Authorization bearer header. Non-success responses surface as
// *Error with the numeric status and response body text.
package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/fleetdash/fleetdash-go/pkg/log"
	"github.com/fleetdash/fleetdash-go/pkg/token"
	"github.com/fleetdash/fleetdash-go/pkg/version"
)

// DefaultTimeout is applied to every request when no timeout is
// configured.
const DefaultTimeout = 30 * time.Second

// Error is an API error response.
type Error struct {
	// StatusCode is the HTTP status.
	StatusCode int

	// Body is the response body text.
	Body string
}

// Error formats the status and body.
func (e *Error) Error() string {
	return fmt.Sprintf("API error %d: %s", e.StatusCode, e.Body)
}

// Config configures the API client.
type Config struct {
	// BaseURL is the API base URL, e.g. "https://dash.example.com/api/v1".
	BaseURL string

	// Timeout bounds every request (default: DefaultTimeout).
	Timeout time.Duration

	// TokenTTL is the lifetime of per-request tokens
	// (default: token.DefaultTTL).
	TokenTTL time.Duration

	// Logger receives request events. Optional.
	Logger log.Logger

	// HTTPClient optionally overrides the underlying client. The
	// configured Timeout is ignored when it is set.
	HTTPClient *http.Client
}

// Client makes authenticated requests to the dashboard API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	issuer     *token.Issuer
	tokenTTL   time.Duration
	deviceID   string
	logger     log.Logger
}

// NewClient creates an API client that signs requests with tokens
// from the given issuer.
func NewClient(cfg Config, issuer *token.Issuer, deviceID string) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = token.DefaultTTL
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: httpClient,
		issuer:     issuer,
		tokenTTL:   ttl,
		deviceID:   deviceID,
		logger:     log.OrNoop(cfg.Logger),
	}
}

// Get makes an authenticated GET request and decodes the JSON
// response into result (which may be nil).
func (c *Client) Get(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// Put makes an authenticated PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPut, path, body, result)
}

// Post makes an authenticated POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, result any) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// Delete makes an authenticated DELETE request.
func (c *Client) Delete(ctx context.Context, path string, result any) error {
	return c.do(ctx, http.MethodDelete, path, nil, result)
}

// do builds, signs and executes one request.
func (c *Client) do(ctx context.Context, method, path string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}

	// A fresh short-lived token per request; the service validates
	// expiry, the client never does.
	tok, err := c.issuer.Issue(c.tokenTTL)
	if err != nil {
		return fmt.Errorf("failed to issue request token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("User-Agent", version.UserAgent())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logRequest(method, path, 0, time.Since(start))
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer res.Body.Close()

	c.logRequest(method, path, res.StatusCode, time.Since(start))

	resBody, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return &Error{
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(resBody)),
		}
	}

	if result != nil && len(resBody) > 0 {
		if err := json.Unmarshal(resBody, result); err != nil {
			return fmt.Errorf("failed to parse response JSON: %w", err)
		}
	}
	return nil
}

func (c *Client) logRequest(method, path string, status int, d time.Duration) {
	c.logger.Log(log.NewRequestEvent(c.deviceID, log.RequestEvent{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Duration:   d,
	}))
}
