// Package rest is the shared HTTP plumbing for external-capability
// adapters. Non-2xx statuses are mapped onto the engine's error kinds so
// the retry policy can classify them uniformly.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/motorbot/internal/core"
)

type Client struct {
	client  *http.Client
	name    string
	baseURL string
}

func NewClient(name, baseURL string, timeout time.Duration) *Client {
	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		name:    name,
		baseURL: baseURL,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", core.BotUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		// Timeouts and connection failures are transient by policy.
		return nil, &core.UpstreamError{Upstream: c.name, Cause: err}
	}
	return resp, nil
}

// DoJSON performs a request and decodes a 2xx response body into out.
// 429 and 5xx become retryable error kinds; other failures are permanent.
func (c *Client) DoJSON(ctx context.Context, method, path string, body any, headers map[string]string, out any) error {
	resp, err := c.do(ctx, method, path, body, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &core.UpstreamError{Upstream: c.name, Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &core.RateLimitedError{Upstream: c.name}
	case resp.StatusCode >= 500:
		return &core.UpstreamError{Upstream: c.name, Status: resp.StatusCode}
	case resp.StatusCode >= 300:
		return fmt.Errorf("%s: http %d: %s", c.name, resp.StatusCode, truncate(data, 200))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode: %w", c.name, err)
	}
	return nil
}

func truncate(data []byte, n int) string {
	if len(data) <= n {
		return string(data)
	}
	return string(data[:n]) + "..."
}
