// Package transport is the small JSON-over-HTTP helper shared by the HTTP
// based providers.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spigell/fitcheck/internal/utils"
)

const (
	contentType = "application/json"
	// maxErrorBody bounds the response excerpt carried by StatusError.
	maxErrorBody = 500
	// DefaultMaxResponseBytes bounds how much of a response body is read.
	DefaultMaxResponseBytes int64 = 8 << 20
)

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Provider string
	Op       string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s failed (%d): %s", e.Provider, e.Op, e.Code, e.Body)
}

// Client issues JSON requests on behalf of one provider.
type Client struct {
	Provider string
	HTTP     *http.Client
	Token    string
	// MaxResponseBytes overrides DefaultMaxResponseBytes when positive.
	MaxResponseBytes int64
}

// New returns a Client. A nil httpClient falls back to http.DefaultClient.
func New(provider string, httpClient *http.Client, token string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{Provider: provider, HTTP: httpClient, Token: token}
}

// TrimBaseURL drops a single trailing slash so paths can be appended.
func TrimBaseURL(base string) string {
	return strings.TrimSuffix(strings.TrimSpace(base), "/")
}

// Get fetches url and decodes the JSON body into out.
func (c *Client) Get(ctx context.Context, op, url string, out any) error {
	return c.Do(ctx, http.MethodGet, op, url, nil, out)
}

// Post sends body as JSON to url and decodes the JSON response into out.
func (c *Client) Post(ctx context.Context, op, url string, body, out any) error {
	return c.Do(ctx, http.MethodPost, op, url, body, out)
}

// Do performs one request. op names the call in error messages.
func (c *Client) Do(ctx context.Context, method, op, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: marshal request: %w", c.Provider, op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("%s %s: build request: %w", c.Provider, op, err)
	}
	c.setHeaders(req, body != nil)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", c.Provider, op, err)
	}
	defer resp.Body.Close()

	limit := c.MaxResponseBytes
	if limit <= 0 {
		limit = DefaultMaxResponseBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", c.Provider, op, err)
	}
	if int64(len(data)) > limit {
		return fmt.Errorf("%s %s: response exceeds %d bytes", c.Provider, op, limit)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Provider: c.Provider, Op: op, Code: resp.StatusCode, Body: excerpt(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", c.Provider, op, err)
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", contentType)
	if hasBody {
		req.Header.Set("Content-Type", contentType)
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
}

func excerpt(data []byte) string {
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err == nil {
		return utils.Clip(compact.String(), maxErrorBody)
	}
	return utils.Clip(strings.TrimSpace(string(data)), maxErrorBody)
}
