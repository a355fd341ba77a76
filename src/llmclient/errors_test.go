package llmclient

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"
)

func TestAPIError(t *testing.T) {
	tests := []struct {
		name        string
		err         *APIError
		expectedMsg string
		isRetryable bool
		isRateLimit bool
		isAuthError bool
	}{
		{
			name:        "basic error",
			err:         &APIError{StatusCode: 400, Message: "Bad request"},
			expectedMsg: "API error 400: Bad request",
		},
		{
			name:        "error with code",
			err:         &APIError{StatusCode: 404, Message: "No such model", Code: "model_not_found"},
			expectedMsg: "API error 404 (model_not_found): No such model",
		},
		{
			name:        "server error",
			err:         &APIError{StatusCode: 502, Message: "Bad gateway"},
			expectedMsg: "API error 502: Bad gateway",
			isRetryable: true,
		},
		{
			name:        "rate limit error",
			err:         &APIError{StatusCode: 429, Message: "Too many requests", Code: "rate_limit_exceeded"},
			expectedMsg: "API error 429 (rate_limit_exceeded): Too many requests",
			isRetryable: true,
			isRateLimit: true,
		},
		{
			name:        "auth error",
			err:         &APIError{StatusCode: 401, Message: "Invalid API key", Code: "invalid_api_key"},
			expectedMsg: "API error 401 (invalid_api_key): Invalid API key",
			isAuthError: true,
		},
		{
			name:        "provider prefix",
			err:         &APIError{Provider: "openrouter", StatusCode: 402, Message: "Insufficient credits", Code: "402"},
			expectedMsg: "openrouter: API error 402 (402): Insufficient credits",
		},
		{
			name:        "forbidden",
			err:         &APIError{StatusCode: 403, Message: "Forbidden"},
			expectedMsg: "API error 403: Forbidden",
			isAuthError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.expectedMsg {
				t.Errorf("Error() = %v, want %v", tt.err.Error(), tt.expectedMsg)
			}
			if tt.err.IsRetryable() != tt.isRetryable {
				t.Errorf("IsRetryable() = %v, want %v", tt.err.IsRetryable(), tt.isRetryable)
			}
			if tt.err.IsRateLimit() != tt.isRateLimit {
				t.Errorf("IsRateLimit() = %v, want %v", tt.err.IsRateLimit(), tt.isRateLimit)
			}
			if tt.err.IsAuthError() != tt.isAuthError {
				t.Errorf("IsAuthError() = %v, want %v", tt.err.IsAuthError(), tt.isAuthError)
			}
		})
	}
}

func TestTimeoutError(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := &TimeoutError{Operation: "chat completion", Duration: 5 * time.Second, Cause: cause}

	if got := err.Error(); got != "chat completion timed out after 5s: deadline exceeded" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Error("expected errors.Is(err, ErrTimeout)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected the cause to unwrap")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped server error", fmt.Errorf("call: %w", &APIError{StatusCode: 503}), true},
		{"client error", &APIError{StatusCode: 400}, false},
		{"timeout", &TimeoutError{Operation: "x"}, true},
		{"rate limited sentinel", fmt.Errorf("x: %w", ErrRateLimited), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetRetryDelay(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		attempt int
		want    time.Duration
	}{
		{"first attempt", errors.New("x"), 1, time.Second},
		{"third attempt", errors.New("x"), 3, 4 * time.Second},
		{"capped", errors.New("x"), 12, time.Minute},
		{
			name:    "retry after header",
			err:     &APIError{StatusCode: 429, RetryAfter: 7 * time.Second},
			attempt: 3,
			want:    7 * time.Second,
		},
		{
			name:    "retry after capped",
			err:     &APIError{StatusCode: 429, RetryAfter: time.Hour},
			attempt: 1,
			want:    time.Minute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetRetryDelay(tt.err, tt.attempt, time.Second); got != tt.want {
				t.Errorf("GetRetryDelay() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"12", 12 * time.Second},
		{" 3 ", 3 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		h.Set("Retry-After", tt.value)
		if got := parseRetryAfter(h); got != tt.want {
			t.Errorf("parseRetryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
