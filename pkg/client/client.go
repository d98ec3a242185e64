package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUnexpectedResponse is returned when a payload matches none of the
// shapes the backend is known to produce
var ErrUnexpectedResponse = errors.New("unexpected backend response")

// APIError is a non-2xx answer or an explicit {"status":"error"} payload
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("backend HTTP %d: %s", e.StatusCode, e.Message)
	}
	return "backend error: " + e.Message
}

// Client is a Go SDK for the portal PHP backend
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithUserAgent sets the User-Agent sent with every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new backend client. Requests are traced through
// otelhttp; with no tracer provider installed this is a no-op.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		userAgent: "portal-gateway",
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks that the backend answers
func (c *Client) Health(ctx context.Context) error {
	_, err := c.doRequest(ctx, http.MethodGet, "filter/get_filters.php", nil, nil, "")
	return err
}

// getJSON performs a GET and decodes the (possibly wrapped) payload into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}, keys ...string) error {
	resp, err := c.doRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}

	payload, err := unwrap(resp, keys...)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

// postJSON performs a POST with a JSON body and returns the raw response
func (c *Client) postJSON(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.doRequest(ctx, http.MethodPost, path, nil, bytes.NewReader(data), "application/json")
}

// doRequest performs an HTTP request
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
	}

	return respBody, nil
}

// unwrap returns the payload of a response. Bare arrays are returned as-is;
// objects are checked for {"status":"error"} and then searched for the first
// present key among keys and "data". With no matching key the whole object
// is the payload.
func unwrap(raw []byte, keys ...string) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedResponse)
	}
	if trimmed[0] == '[' {
		return trimmed, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %.64s", ErrUnexpectedResponse, trimmed)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if status, ok := obj["status"]; ok {
		var s string
		if json.Unmarshal(status, &s) == nil && strings.EqualFold(s, "error") {
			var msg string
			if m, ok := obj["message"]; ok {
				_ = json.Unmarshal(m, &msg)
			}
			return nil, &APIError{Message: msg}
		}
	}

	for _, key := range append(keys, "data") {
		if v, ok := obj[key]; ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return v, nil
		}
	}
	return trimmed, nil
}

// decodeSuccess reads the boolean outcome of a write endpoint. The backend
// answers either a bare boolean or {"success": bool}.
func decodeSuccess(raw []byte) (bool, error) {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}

	var result struct {
		Success *json.RawMessage `json:"success"`
		Status  string           `json:"status"`
		Message string           `json:"message"`
	}
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return false, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if strings.EqualFold(result.Status, "error") {
		return false, &APIError{Message: result.Message}
	}
	if result.Success == nil {
		return strings.EqualFold(result.Status, "success"), nil
	}
	switch strings.Trim(string(*result.Success), `" `) {
	case "true", "1":
		return true, nil
	default:
		return false, nil
	}
}
