package llmclient

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNoAPIKey        = errors.New("API key is required")
	ErrUnknownProvider = errors.New("unknown provider")
	// ErrEmptyResponse is returned when a completion carries no choices
	ErrEmptyResponse = errors.New("empty response from API")
	ErrTimeout       = errors.New("operation timed out")
	ErrRateLimited   = errors.New("rate limited")
)

const maxRetryDelay = time.Minute

// APIError is a non-2xx answer from a provider endpoint.
type APIError struct {
	Provider   string
	StatusCode int
	Type       string
	Code       string
	Message    string
	RequestID  string
	// RetryAfter is the server's Retry-After hint on 429 responses, zero when absent
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	var b strings.Builder
	if e.Provider != "" {
		b.WriteString(e.Provider)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "API error %d", e.StatusCode)
	if e.Code != "" {
		fmt.Fprintf(&b, " (%s)", e.Code)
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// Is lets errors.Is(err, ErrRateLimited) match rate limit responses.
func (e *APIError) Is(target error) bool {
	return target == ErrRateLimited && e.IsRateLimit()
}

// IsRetryable reports 5xx, 429 and the transient error codes some gateways use.
func (e *APIError) IsRetryable() bool {
	if e.StatusCode >= http.StatusInternalServerError || e.IsRateLimit() {
		return true
	}
	return e.Code == "timeout" || e.Code == "server_error"
}

func (e *APIError) IsRateLimit() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.Code == "rate_limit_exceeded"
}

func (e *APIError) IsAuthError() bool {
	switch e.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return true
	}
	return e.Code == "invalid_api_key"
}

// TimeoutError wraps a transport timeout of one provider call.
type TimeoutError struct {
	Operation string
	Duration  time.Duration
	Cause     error
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s timed out after %v", e.Operation, e.Duration)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *TimeoutError) Unwrap() error { return e.Cause }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// IsRetryable reports whether another attempt at the same call may succeed.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if apiErr := (*APIError)(nil); errors.As(err, &apiErr) {
		return apiErr.IsRetryable()
	}
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited)
}

// GetRetryDelay returns the wait before retry number attempt (1-based):
// the provider's Retry-After hint when present, otherwise base doubled per
// attempt and capped at one minute.
func GetRetryDelay(err error, attempt int, base time.Duration) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		return min(apiErr.RetryAfter, maxRetryDelay)
	}
	if attempt < 1 {
		attempt = 1
	}
	delay := base << uint(attempt-1)
	if delay <= 0 || delay > maxRetryDelay {
		return maxRetryDelay
	}
	return delay
}

// parseRetryAfter reads the delay-seconds form of Retry-After.
func parseRetryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
