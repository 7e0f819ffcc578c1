// Package fetch retrieves raw page markup with a fixed client identity.
// A request is attempted once; callers decide what a failure means.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"InvestingIdeas/internal/ports"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Error reports a non-2xx response or a transport failure for URL.
type Error struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Client fetches pages over HTTP.
type Client struct {
	client *http.Client
}

var _ ports.PageFetcher = (*Client)(nil)

// NewClient wires an HTTP client; a nil client gets one with the given timeout.
func NewClient(client *http.Client, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &Client{client: client}
}

// Fetch issues a GET with headers and returns the body as text.
func (c *Client) Fetch(ctx context.Context, pageURL string, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &Error{URL: pageURL, Cause: fmt.Errorf("build request: %w", err)}
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", &Error{URL: pageURL, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", &Error{URL: pageURL, StatusCode: resp.StatusCode, Cause: fmt.Errorf("status %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{URL: pageURL, Cause: fmt.Errorf("read body: %w", err)}
	}

	return string(body), nil
}
