// Package apiclient sends JSON requests authenticated with an X-API-Key header.
// Portainer and PowerDNS share this scheme.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	apiKeyHeader = "X-API-Key"
	maxBodyBytes = 64 << 20
)

type Client struct {
	http    *http.Client
	token   string
	timeout time.Duration
}

// New returns a client whose calls are bounded by timeout. A nil httpClient gets a fresh one.
func New(httpClient *http.Client, token string, timeout time.Duration) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		http:    httpClient,
		token:   token,
		timeout: timeout,
	}
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do sends the request and reads the whole response body. A nil payload sends no body.
// Non-2xx statuses are not errors here; callers decide what they accept.
func (c *Client) Do(ctx context.Context, method, url string, payload any) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, url, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	req.Header.Set(apiKeyHeader, c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, url, err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: b}, nil
}

// Snippet shortens a response body for error messages.
func Snippet(body []byte) string {
	const limit = 512
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
