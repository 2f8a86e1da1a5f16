// Package api talks to the clinic REST backend.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/cristalexdent/clinicadmin/internal/config"
	"github.com/cristalexdent/clinicadmin/internal/logger"
	"github.com/cristalexdent/clinicadmin/internal/wizard"
)

// StatusError is a non-2xx response. Its message is the one the backend
// reported, falling back to a generic one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string { return e.Message }

// Client sends requests to the configured API base URL.
type Client struct {
	base  *url.URL
	token string
	http  *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a client from cfg.
func New(cfg *config.Config, opts ...Option) (*Client, error) {
	base, err := url.Parse(cfg.APIURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api_url %q", cfg.APIURL)
	}
	c := &Client{
		base:  base,
		token: cfg.APIToken,
		http:  &http.Client{Timeout: cfg.RequestTimeout()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// URL resolves path against the base URL.
func (c *Client) URL(path string) string {
	ref := &url.URL{Path: strings.TrimPrefix(path, "/")}
	base := *c.base
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(ref).String()
}

// Body is an encoded request payload.
type Body struct {
	Reader      io.Reader
	ContentType string
}

// JSON encodes v as a JSON body.
func JSON(v any) (Body, error) {
	data, err := sonic.Marshal(v)
	if err != nil {
		return Body{}, fmt.Errorf("failed to encode body: %w", err)
	}
	return Body{Reader: bytes.NewReader(data), ContentType: "application/json"}, nil
}

// Get fetches path and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, Body{})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Post sends body to path and returns the raw response.
func (c *Client) Post(ctx context.Context, path string, body Body) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, body)
}

// Put sends body to path and returns the raw response.
func (c *Client) Put(ctx context.Context, path string, body Body) ([]byte, error) {
	return c.do(ctx, http.MethodPut, path, body)
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, Body{})
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body Body) ([]byte, error) {
	target := c.URL(path)
	req, err := http.NewRequestWithContext(ctx, method, target, body.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body.ContentType != "" {
		req.Header.Set("Content-Type", body.ContentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	logger.Debug("%s %s", method, target)
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("%s %s failed: %v", method, target, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.Warn("%s %s: %d", method, target, resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	return data, nil
}

// errorMessage picks "error", then "message" from a JSON error body.
func errorMessage(data []byte) string {
	var body map[string]any
	if err := sonic.Unmarshal(data, &body); err == nil {
		for _, key := range []string{"error", "message"} {
			if s, ok := body[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return wizard.DefaultFailureMessage
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
