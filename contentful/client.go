// Package contentful is a small read-only client for the Contentful Content
// Delivery API. It fetches entry collections and resolves linked entries and
// assets from the response includes.
package contentful

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultHost is the Content Delivery API host.
	DefaultHost = "cdn.contentful.com"
	// PreviewHost serves draft content with a preview token.
	PreviewHost = "preview.contentful.com"

	defaultEnvironment = "master"
	defaultTimeout     = 10 * time.Second
	maxResponseSize    = 16 << 20
)

// Config holds the credentials and connection settings for a space.
type Config struct {
	SpaceID     string
	AccessToken string
	Environment string        // default "master"
	Host        string        // default DefaultHost
	Timeout     time.Duration // HTTP timeout (default 10s)
}

// Client is a Content Delivery API client.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. The configured timeout is
// not applied to a client supplied this way.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL overrides the scheme and host the client talks to.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a client for the space described by cfg.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if cfg.SpaceID == "" {
		return nil, errors.New("contentful: space id is required")
	}
	if cfg.AccessToken == "" {
		return nil, errors.New("contentful: access token is required")
	}
	if cfg.Environment == "" {
		cfg.Environment = defaultEnvironment
	}
	if cfg.Host == "" {
		cfg.Host = DefaultHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	c := &Client{
		baseURL:    "https://" + cfg.Host,
		token:      cfg.AccessToken,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  "folio",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.baseURL += fmt.Sprintf("/spaces/%s/environments/%s", cfg.SpaceID, cfg.Environment)
	return c, nil
}

// APIError is returned when the service answers with a non-2xx status.
type APIError struct {
	StatusCode int
	ID         string
	Message    string
	RequestID  string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	if e.ID != "" {
		return fmt.Sprintf("contentful: %d %s: %s", e.StatusCode, e.ID, msg)
	}
	return fmt.Sprintf("contentful: %d: %s", e.StatusCode, msg)
}

// Entries fetches the collection of entries matching q. Links inside the
// returned entries are resolved against the collection's items and includes.
func (c *Client) Entries(ctx context.Context, q Query) (*Collection, error) {
	u := c.baseURL + "/entries"
	if vals := q.Values(); len(vals) > 0 {
		u += "?" + vals.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeAPIError(resp.StatusCode, body)
	}

	coll, err := ParseCollection(body)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return coll, nil
}

// ParseCollection decodes an entries response body and resolves its links.
func ParseCollection(data []byte) (*Collection, error) {
	var coll Collection
	if err := json.Unmarshal(data, &coll); err != nil {
		return nil, err
	}
	coll.resolve()
	return &coll, nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}
	var payload struct {
		Sys       Sys    `json:"sys"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.ID = payload.Sys.ID
		apiErr.Message = payload.Message
		apiErr.RequestID = payload.RequestID
	}
	return apiErr
}
