// Package api wraps the backend's JSON HTTP endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	upload     bool
}

func (e *StatusError) Error() string {
	if e.upload {
		return fmt.Sprintf("upload failed: %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed: %d", e.StatusCode)
}

// Client issues requests against a single base URL. It never retries and
// imposes no timeout of its own; the caller's context governs both.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger failures are reported to.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Client. Paths are appended to baseURL verbatim.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL every path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Get issues a GET with query appended as an encoded query string and
// decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, query map[string]string, out any) error {
	return c.doJSON(ctx, http.MethodGet, path+encodeQuery(query), nil, out)
}

// Post sends payload as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, orEmpty(payload), out)
}

// Put sends payload as JSON and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, orEmpty(payload), out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, out)
}

// Upload posts a multipart form. The only content type sent is the form's
// own, which carries the boundary.
func (c *Client) Upload(ctx context.Context, path string, form *Form, out any) error {
	if form == nil {
		return fmt.Errorf("upload form is required")
	}
	body, contentType, err := form.Encode()
	if err != nil {
		return fmt.Errorf("encode upload form: %w", err)
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.do(req, true, out)
}

// AssetURL resolves path against the client's base URL.
func (c *Client) AssetURL(path string) string {
	return AssetURL(c.baseURL, path)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", method, err)
		}
		body = bytes.NewReader(data)
	}

	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, false, out)
}

func (c *Client) do(req *http.Request, upload bool, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("request error", "method", req.Method, "url", req.URL.String(), "err", err)
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Method:     req.Method,
			URL:        req.URL.String(),
			StatusCode: resp.StatusCode,
			upload:     upload,
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		c.logger.Error("request error", "method", req.Method, "url", statusErr.URL, "status", resp.StatusCode)
		return statusErr
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("request error", "method", req.Method, "url", req.URL.String(), "err", err)
		return fmt.Errorf("read response body: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Error("request error", "method", req.Method, "url", req.URL.String(), "err", err)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func orEmpty(payload any) any {
	if payload == nil {
		return map[string]any{}
	}
	return payload
}

// encodeQuery renders query as "?k=v&..." in key order, or "" when empty.
func encodeQuery(query map[string]string) string {
	if len(query) == 0 {
		return ""
	}
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, url.QueryEscape(k)+"="+url.QueryEscape(query[k]))
	}
	return "?" + strings.Join(parts, "&")
}
