package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Observer receives one outcome per upstream call ("2xx", "4xx", "5xx" or "error").
type Observer interface {
	ObserveUpstream(upstream, outcome string)
}

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("clients: %s %s: unexpected status %d", e.Method, e.Path, e.Code)
}

// BaseClient sends JSON requests to one upstream.
type BaseClient struct {
	name     string
	baseURL  string
	client   HTTPDoer
	observer Observer
}

// NewBaseClient builds client with base URL. observer may be nil.
func NewBaseClient(name, baseURL string, client HTTPDoer, observer Observer) *BaseClient {
	return &BaseClient{
		name:     name,
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   client,
		observer: observer,
	}
}

func (c *BaseClient) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do executes HTTP request and returns status/body.
func (c *BaseClient) Do(ctx context.Context, method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.observe("error")
		return 0, nil, err
	}
	defer resp.Body.Close()
	c.observe(fmt.Sprintf("%dxx", resp.StatusCode/100))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// DoJSON marshals in (when non-nil), sends the request and decodes a 2xx body into out
// (when non-nil). Other statuses yield *StatusError.
func (c *BaseClient) DoJSON(ctx context.Context, method, path string, in, out interface{}) error {
	var body []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("clients: encode %s %s: %w", method, path, err)
		}
		body = encoded
	}

	status, respBody, err := c.Do(ctx, method, path, body, nil)
	if err != nil {
		return fmt.Errorf("clients: %s %s: %w", method, path, err)
	}
	if status < 200 || status > 299 {
		return &StatusError{Method: method, Path: path, Code: status, Body: respBody}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("clients: decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *BaseClient) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveUpstream(c.name, outcome)
	}
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
