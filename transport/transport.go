// Package transport implements the authenticated HTTP client the resource
// clients are built on. It attaches the bearer token supplied by an injected
// Credentials capability, retries a request once after a serialized token
// refresh when the server answers 401, and forces a session logout when the
// refreshed token is rejected again or the refresh itself fails.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// Credentials is the capability the session layer injects into the client.
// The client never owns token state; it only reads the current token,
// requests a refresh, and reports unrecoverable authorization failure.
type Credentials interface {
	// AccessToken returns the current bearer token, or "" when logged out.
	AccessToken() string
	// RefreshAccessToken obtains and stores a new access token.
	RefreshAccessToken(ctx context.Context) (string, error)
	// ForceLogout tears the session down after an unrecoverable
	// authorization failure.
	ForceLogout()
}

// Client issues JSON requests against the backend API.
type Client struct {
	baseURL   string
	http      *http.Client
	creds     Credentials
	logger    *slog.Logger
	userAgent string

	// refresh serializes concurrent token refreshes: N requests failing
	// with 401 at the same time produce exactly one refresh call.
	refresh singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets the underlying *http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithLogger sets the structured logger for request events.
// If not set, a default JSON logger writing to stderr is used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a Client for the API at baseURL. creds may be nil, in which
// case requests are sent unauthenticated and 401 responses are surfaced
// without a refresh attempt.
func New(baseURL string, creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		creds:     creds,
		http:      &http.Client{Timeout: 30 * time.Second},
		userAgent: "aice-go",
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return c
}

// Get issues a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE request and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out)
}

// Do issues a request with the retry-once-after-refresh policy and decodes
// the 2xx response body into out when out is non-nil.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	token := ""
	if c.creds != nil {
		token = c.creds.AccessToken()
	}

	status, data, err := c.send(ctx, method, path, payload, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && c.creds != nil {
		if token == "" {
			// No session to refresh; the caller simply isn't logged in.
			return ErrUnauthorized
		}
		refreshed, err := c.refreshToken(ctx)
		if err != nil {
			c.logger.Warn("token refresh failed, forcing logout", "path", path, "error", err)
			c.creds.ForceLogout()
			return fmt.Errorf("refreshing token: %w", ErrUnauthorized)
		}

		status, data, err = c.send(ctx, method, path, payload, refreshed)
		if err != nil {
			return err
		}
		if status == http.StatusUnauthorized {
			// The server rejected a freshly refreshed token. Retrying
			// further would loop; the session is gone.
			c.logger.Warn("refreshed token rejected, forcing logout", "path", path)
			c.creds.ForceLogout()
			return ErrUnauthorized
		}
	}

	if status < 200 || status > 299 {
		return apiError(status, data)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding %s %s response: %w", method, path, err)
		}
	}
	return nil
}

// send performs a single HTTP round trip and reads the full body so the
// request can be retried without re-reading a consumed reader.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, token string) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, &RequestError{Method: method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &RequestError{Method: method, URL: req.URL.String(), Err: err}
	}
	c.logger.Debug("api request", "method", method, "path", path, "status", resp.StatusCode)
	return resp.StatusCode, data, nil
}

// refreshToken funnels all concurrent refresh attempts through a single call.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		return c.creds.RefreshAccessToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
