// Package logapi talks to the remote log service and caches its results for
// the dashboard views.
package logapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tinytelemetry/logdash/internal/model"
)

const maxErrorBody = 2048

// Client is a JSON client for the log service REST contract.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ model.LogAPI = (*Client)(nil)

// NewClient returns a client rooted at baseURL (for example
// http://localhost:8080/api). A non-positive timeout uses the default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = model.DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// ListLogs fetches the logs matching params.
func (c *Client) ListLogs(ctx context.Context, params model.LogQueryParams) ([]model.LogRecord, error) {
	var out []model.LogRecord
	if err := c.do(ctx, http.MethodGet, "/logs", params.Values(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.LogRecord{}
	}
	return out, nil
}

// GetLog fetches one log by id.
func (c *Client) GetLog(ctx context.Context, id string) (model.LogRecord, error) {
	var out model.LogRecord
	err := c.do(ctx, http.MethodGet, "/logs/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// CreateLog posts a new log and returns the stored record.
func (c *Client) CreateLog(ctx context.Context, rec model.LogRecord) (model.LogRecord, error) {
	var out model.LogRecord
	err := c.do(ctx, http.MethodPost, "/logs", nil, rec, &out)
	return out, err
}

// UpdateLog replaces the log with the given id.
func (c *Client) UpdateLog(ctx context.Context, id string, rec model.LogRecord) (model.LogRecord, error) {
	var out model.LogRecord
	err := c.do(ctx, http.MethodPut, "/logs/"+url.PathEscape(id), nil, rec, &out)
	return out, err
}

// DeleteLog removes the log with the given id.
func (c *Client) DeleteLog(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/logs/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("logapi: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("logapi: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Method: method, URL: u, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		blob, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(resp.StatusCode, blob),
		}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("logapi: decode %s %s: %w", method, path, err)
	}
	return nil
}
