package llmclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elee1766/chatledger/src/aisdk"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, mutate ...func(*Config)) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := Config{
		Provider:   ProviderOpenRouter,
		APIKey:     "test-key",
		BaseURL:    server.URL,
		RetryDelay: time.Millisecond,
	}
	for _, m := range mutate {
		m(&config)
	}
	client, err := NewClient(config)
	require.NoError(t, err)
	return client
}

func writeCompletion(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(aisdk.ChatCompletionResponse{
		ID:      "cmpl-1",
		Model:   "test-model",
		Choices: []aisdk.Choice{{Message: aisdk.Message{Role: aisdk.RoleAssistant, Content: content}}},
		Usage:   &aisdk.Usage{PromptTokens: 12, CompletionTokens: 5, TotalTokens: 17},
	})
}

func userRequest(model string) *aisdk.ChatCompletionRequest {
	return &aisdk.ChatCompletionRequest{
		Model: model,
		Messages: []*aisdk.Message{
			{Role: aisdk.RoleSystem, Content: "be brief"},
			{Role: aisdk.RoleUser, Content: "hello"},
		},
	}
}

func TestCreateChatCompletion(t *testing.T) {
	var got aisdk.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "hi there")
	})

	resp, err := client.CreateChatCompletion(context.Background(), userRequest("test-model"))
	require.NoError(t, err)
	assert.Equal(t, "hi there", resp.Content())
	require.NotNil(t, resp.Usage)
	assert.Equal(t, 5, resp.Usage.CompletionTokens)

	require.NotNil(t, got.MaxTokens)
	assert.Equal(t, defaultMaxTokens, *got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, aisdk.RoleSystem, got.Messages[0].Role)
	assert.Equal(t, ProviderOpenRouter, client.Provider())
}

func TestSystemPromptFoldedForGemma(t *testing.T) {
	var got aisdk.ChatCompletionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeCompletion(w, "ok")
	}, func(c *Config) { c.Provider = ProviderGemini })

	req := userRequest("gemma-3-4b-it")
	_, err := client.CreateChatCompletion(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, got.Messages, 1)
	assert.Equal(t, aisdk.RoleUser, got.Messages[0].Role)
	assert.Equal(t, "be brief\n\nhello", got.Messages[0].Content)
	// caller's request is left untouched
	assert.Equal(t, "hello", req.Messages[1].Content)
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream down"))
			return
		}
		writeCompletion(w, "recovered")
	})

	resp, err := client.CreateChatCompletion(context.Background(), userRequest("m"))
	require.NoError(t, err)
	assert.Equal(t, "recovered", resp.Content())
	assert.Equal(t, int32(3), calls.Load())
}

func TestGivesUpAfterRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}, func(c *Config) { c.RetryCount = 2 })

	_, err := client.CreateChatCompletion(context.Background(), userRequest("m"))
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"auth","code":"invalid_api_key"}}`))
	})

	_, err := client.CreateChatCompletion(context.Background(), userRequest("m"))
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.IsAuthError())
	assert.Equal(t, "bad key", apiErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"x","choices":[]}`))
	})
	_, err := client.CreateChatCompletion(context.Background(), userRequest("m"))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(Config{Provider: ProviderOpenAI})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = NewClient(Config{Provider: "nope"})
	assert.ErrorIs(t, err, ErrUnknownProvider)

	client, err := NewClient(Config{Provider: ProviderOllama})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:11434/v1", client.config.BaseURL)
}
