// Package apiclient talks to a running chatledger server.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/elee1766/chatledger/src/httpapi"
)

// Config holds configuration for the API client
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Logger     *slog.Logger
}

// Client is a typed client for the chatledger HTTP API.
type Client struct {
	http   *resty.Client
	logger *slog.Logger
}

// APIError is a non-2xx response from the server
type APIError struct {
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// New creates a new API client.
func New(config Config) *Client {
	if config.Timeout == 0 {
		// chat calls wait on the provider
		config.Timeout = 2 * time.Minute
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	client := resty.New()
	client.SetBaseURL(strings.TrimRight(config.BaseURL, "/"))
	client.SetTimeout(config.Timeout)
	client.SetHeader("Accept", "application/json")
	client.SetRetryCount(config.RetryCount)
	client.SetRetryWaitTime(200 * time.Millisecond)
	client.SetRetryMaxWaitTime(2 * time.Second)
	client.AddRetryCondition(retryableResponse)

	return &Client{
		http:   client,
		logger: config.Logger.With("component", "apiclient"),
	}
}

// retryableResponse retries idempotent requests the server reported as a
// rolled-back transaction
func retryableResponse(resp *resty.Response, err error) bool {
	if err != nil || resp == nil || resp.Request == nil {
		return false
	}
	switch resp.Request.Method {
	case http.MethodGet, http.MethodPut:
	default:
		return false
	}
	if resp.StatusCode() != http.StatusServiceUnavailable {
		return false
	}
	if e, ok := resp.Error().(*httpapi.ErrorResponse); ok {
		return e.Retryable
	}
	return false
}

// call sends one request and decodes the JSON result into a new T
func call[T any](ctx context.Context, c *Client, method, path string, body interface{}, query map[string]string) (*T, error) {
	req := c.http.R().
		SetContext(ctx).
		SetResult(new(T)).
		SetError(&httpapi.ErrorResponse{})
	if body != nil {
		req.SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.logger.Debug("api call", "method", method, "path", path, "status", resp.StatusCode(), "duration", resp.Time())

	if resp.IsError() {
		apiErr := &APIError{StatusCode: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
		if e, ok := resp.Error().(*httpapi.ErrorResponse); ok && e.Error != "" {
			apiErr.Message = e.Error
			apiErr.Retryable = e.Retryable
		}
		return nil, apiErr
	}

	result, ok := resp.Result().(*T)
	if !ok {
		return nil, fmt.Errorf("%s %s: unexpected response type", method, path)
	}
	return result, nil
}

// params drops empty values so the server applies its defaults
func params(kv ...string) map[string]string {
	m := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] != "" {
			m[kv[i]] = kv[i+1]
		}
	}
	return m
}

func itoa(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
