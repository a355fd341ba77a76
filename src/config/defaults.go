package config

import (
	"os"
	"time"

	"github.com/elee1766/chatledger/src/llmclient"
)

const DefaultSystemPrompt = "You are a thoughtful companion in one continuous, lifelong conversation. " +
	"Speak with warmth but directness, and remember what was said before."

var defaultModels = map[string]string{
	llmclient.ProviderOpenRouter: "google/gemini-2.5-flash",
	llmclient.ProviderOpenAI:     "gpt-4o-mini",
	llmclient.ProviderAnthropic:  "claude-sonnet-4-20250514",
	llmclient.ProviderGemini:     "gemini-2.0-flash",
	llmclient.ProviderOllama:     "llama3.2:8b",
}

// DefaultModel returns the model used for a provider when none is configured
func DefaultModel(provider string) string {
	return defaultModels[provider]
}

// DefaultConfig returns a default configuration with sensible defaults
func DefaultConfig() *Config {
	config := baseConfig()
	applyProviderDefaults(config)
	return config
}

// baseConfig holds every default except the provider-dependent ones, which
// are resolved after all sources are merged
func baseConfig() *Config {
	paths := GetDefaultStoragePaths()
	return &Config{
		Version: "1.0",
		Provider: ProviderConfig{
			Name:         llmclient.ProviderOpenRouter,
			SystemPrompt: DefaultSystemPrompt,
			Timeout:      60 * time.Second,
			MaxRetries:   3,
		},
		Session: SessionConfig{
			ContextMessages: 20,
		},
		Storage: StorageConfig{
			DatabasePath: paths.DatabasePath,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8000",
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Bench: BenchConfig{
			ScenariosDir: "benchmarks/scenarios",
			ResultsDir:   paths.BenchResultsPath,
		},
	}
}

// applyProviderDefaults fills the model and key variable for the selected provider
func applyProviderDefaults(config *Config) {
	if config.Provider.Model == "" {
		config.Provider.Model = DefaultModel(config.Provider.Name)
	}
	if config.Provider.APIKeyEnvVar == "" {
		config.Provider.APIKeyEnvVar = llmclient.DefaultAPIKeyEnv(config.Provider.Name)
	}
}

// ResolveAPIKey returns the configured key, falling back to the key variable
func (p ProviderConfig) ResolveAPIKey() string {
	if p.APIKey != "" {
		return p.APIKey
	}
	env := p.APIKeyEnvVar
	if env == "" {
		env = llmclient.DefaultAPIKeyEnv(p.Name)
	}
	if env == "" {
		return ""
	}
	return os.Getenv(env)
}

// ServerURL is the base URL clients use to reach the configured server
func (c *Config) ServerURL() string {
	if c.Bench.BaseURL != "" {
		return c.Bench.BaseURL
	}
	return "http://" + c.Server.Addr
}
