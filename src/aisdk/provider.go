package aisdk

import (
	"context"
)

// ChatClient is a provider able to answer chat completion requests
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req *ChatCompletionRequest) (*ChatCompletionResponse, error)
	// Provider names the backend, as recorded on traces
	Provider() string
}
