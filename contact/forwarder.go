package contact

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Forwarder posts messages to the external form endpoint.
type Forwarder struct {
	endpoint   string
	httpClient *http.Client
}

// NewForwarder creates a Forwarder. An empty endpoint yields a forwarder that
// always fails with ErrNotConfigured.
func NewForwarder(endpoint string, timeout time.Duration) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Forward sends one message. Transport errors and non-2xx statuses are failures.
func (f *Forwarder) Forward(ctx context.Context, m Message) error {
	if f.endpoint == "" {
		return ErrNotConfigured
	}
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("form endpoint returned %d", resp.StatusCode)
	}
	return nil
}
