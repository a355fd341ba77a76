package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/elee1766/chatledger/src/aisdk"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 1024
)

var _ aisdk.ChatClient = (*Client)(nil)

// Client talks to an OpenAI-compatible chat completions API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new provider client.
func NewClient(config Config) (*Client, error) {
	if config.Provider == "" {
		config.Provider = ProviderOpenRouter
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL(config.Provider)
	}
	if config.BaseURL == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, config.Provider)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.APIKey == "" && RequiresAPIKey(config.Provider) {
		return nil, fmt.Errorf("%w for %s (set %s)", ErrNoAPIKey, config.Provider, DefaultAPIKeyEnv(config.Provider))
	}
	if config.RetryCount <= 0 {
		config.RetryCount = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = defaultMaxTokens
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "llm_client", "provider", config.Provider)

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// Provider returns the configured provider name
func (c *Client) Provider() string {
	return c.config.Provider
}

// CreateChatCompletion sends a chat completion request.
func (c *Client) CreateChatCompletion(ctx context.Context, req *aisdk.ChatCompletionRequest) (*aisdk.ChatCompletionResponse, error) {
	logger := c.logger.With("method", "CreateChatCompletion", "model", req.Model)
	logger.Debug("sending chat completion request", "messages", len(req.Messages))

	formatted := c.formatRequest(req)

	if c.logger.Enabled(ctx, slog.LevelDebug) {
		if debugBody, err := json.MarshalIndent(formatted, "", "  "); err == nil {
			logger.Debug("formatted request", "body", string(debugBody))
		}
	}

	body, err := json.Marshal(formatted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.doRequestWithRetry(ctx, http.MethodPost, "/chat/completions", body)
	if err != nil {
		logger.Error("request failed", "error", err)
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error("received error response", "status_code", resp.StatusCode)
		return nil, c.handleError(resp)
	}

	var result aisdk.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	if result.Usage != nil {
		logger.Info("chat completion successful",
			"prompt_tokens", result.Usage.PromptTokens,
			"completion_tokens", result.Usage.CompletionTokens)
	} else {
		logger.Info("chat completion successful")
	}
	return &result, nil
}

// formatRequest copies req, applying the token cap and folding the system
// prompt into the first user turn for models without a system role.
func (c *Client) formatRequest(req *aisdk.ChatCompletionRequest) *aisdk.ChatCompletionRequest {
	out := *req
	out.Stream = false
	if out.MaxTokens == nil {
		maxTokens := c.config.MaxTokens
		out.MaxTokens = &maxTokens
	}
	if !rejectsSystemRole(req.Model) {
		return &out
	}

	var system []string
	messages := make([]*aisdk.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m == nil {
			continue
		}
		if m.Role == aisdk.RoleSystem {
			system = append(system, m.Content)
			continue
		}
		messages = append(messages, m)
	}
	if len(system) > 0 && len(messages) > 0 && messages[0].Role == aisdk.RoleUser {
		first := *messages[0]
		first.Content = strings.Join(system, "\n\n") + "\n\n" + first.Content
		messages[0] = &first
	}
	out.Messages = messages
	return &out
}

func rejectsSystemRole(model string) bool {
	for _, m := range noSystemRoleModels {
		if strings.Contains(model, m) {
			return true
		}
	}
	return false
}

// newRequest creates a new HTTP request with the appropriate headers.
func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.config.SiteURL != "" {
		req.Header.Set("HTTP-Referer", c.config.SiteURL)
	}
	if c.config.SiteName != "" {
		req.Header.Set("X-Title", c.config.SiteName)
	}
	return req, nil
}

// doRequestWithRetry retries transport failures, 5xx and 429 responses.
// Other 4xx responses are returned to the caller immediately.
func (c *Client) doRequestWithRetry(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var lastErr error
	logger := c.logger.With("method", "doRequestWithRetry", "path", path)

	for attempt := 1; attempt <= c.config.RetryCount; attempt++ {
		if attempt > 1 {
			delay := GetRetryDelay(lastErr, attempt-1, c.config.RetryDelay)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		req, err := c.newRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			var netErr interface{ Timeout() bool }
			if errors.As(err, &netErr) && netErr.Timeout() {
				err = &TimeoutError{Operation: "chat completion", Duration: c.config.Timeout, Cause: err}
			}
			lastErr = err
			logger.Debug("request attempt failed", "attempt", attempt, "error", err)
			continue
		}

		if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}

		apiErr := c.handleError(resp)
		resp.Body.Close()
		lastErr = apiErr
		logger.Debug("retryable status", "attempt", attempt, "status_code", resp.StatusCode)
	}

	logger.Error("request failed after all retries", "retry_count", c.config.RetryCount, "error", lastErr)
	return nil, fmt.Errorf("request failed after %d attempts: %w", c.config.RetryCount, lastErr)
}

// handleError turns a non-2xx response into an *APIError. Bodies that are
// not an OpenAI-style error envelope are kept verbatim as the message.
func (c *Client) handleError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read error response: %w", err)
	}

	apiErr := &APIError{
		Provider:   c.config.Provider,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
		RequestID:  resp.Header.Get("X-Request-ID"),
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		apiErr.RetryAfter = parseRetryAfter(resp.Header)
	}

	var errResp aisdk.ErrorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		apiErr.Type = errResp.Error.Type
		if errResp.Error.Code != nil {
			apiErr.Code = fmt.Sprint(errResp.Error.Code)
		}
		apiErr.Message = errResp.Error.Message
	}
	return apiErr
}
