package llmclient

import (
	"log/slog"
	"time"
)

// Config holds configuration for the provider client
type Config struct {
	Provider   string        // Provider name, one of Providers()
	APIKey     string        // API key, optional for local providers
	BaseURL    string        // Overrides the provider's default endpoint
	Logger     *slog.Logger  // Logger for debugging
	Timeout    time.Duration // HTTP timeout per attempt
	RetryCount int           // Number of attempts for retryable failures
	RetryDelay time.Duration // Base delay between attempts
	MaxTokens  int           // Completion token cap sent with every request
	SiteURL    string        // Site URL for OpenRouter ranking
	SiteName   string        // Site name for OpenRouter ranking
}
