package config

import (
	"time"
)

// Config represents the complete configuration for chatledger
type Config struct {
	// Version of the configuration format
	Version string `json:"version"`

	// Provider used for chat when no session overrides it
	Provider ProviderConfig `json:"provider"`

	// Session defaults
	Session SessionConfig `json:"session"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// HTTP server configuration
	Server ServerConfig `json:"server"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Benchmark harness configuration
	Bench BenchConfig `json:"bench"`
}

// ProviderConfig defines the inference provider
type ProviderConfig struct {
	// Name is one of openrouter, openai, anthropic, gemini, ollama
	Name string `json:"name" validate:"required,provider"`

	// BaseURL overrides the provider's default endpoint
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// APIKey for authentication (can be omitted if using env vars)
	APIKey string `json:"api_key,omitempty"`

	// APIKeyEnvVar names the environment variable holding the API key
	APIKeyEnvVar string `json:"api_key_env_var,omitempty"`

	// Model requested from the provider
	Model string `json:"model" validate:"required"`

	// SystemPrompt is sent ahead of every conversation
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Timeout per provider request
	Timeout time.Duration `json:"timeout" validate:"min=0"`

	// MaxRetries for retryable provider failures
	MaxRetries int `json:"max_retries" validate:"min=0,max=10"`
}

// SessionConfig holds session defaults
type SessionConfig struct {
	// ContextMessages is how many recent live messages are sent to the model
	ContextMessages int `json:"context_messages" validate:"min=0,max=200"`
}

// StorageConfig defines where the ledger lives
type StorageConfig struct {
	DatabasePath string `json:"database_path" validate:"required"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Addr is the listen address, also used by clients when no base URL is set
	Addr string `json:"addr" validate:"required,hostname_port"`

	// ShutdownTimeout bounds graceful shutdown
	ShutdownTimeout time.Duration `json:"shutdown_timeout" validate:"min=0"`
}

// LoggingConfig defines logging configuration
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error)
	Level string `json:"level,omitempty" validate:"log_level"`

	// Format is the output format (text, json)
	Format string `json:"format,omitempty" validate:"log_format"`
}

// BenchConfig configures the benchmark harness
type BenchConfig struct {
	// BaseURL of the server under test
	BaseURL string `json:"base_url,omitempty" validate:"omitempty,url"`

	// ScenariosDir holds scenario and eval JSON files
	ScenariosDir string `json:"scenarios_dir,omitempty"`

	// ResultsDir receives one JSON file per run
	ResultsDir string `json:"results_dir,omitempty"`
}

// ConfigPrecedence defines the order of configuration loading
type ConfigPrecedence struct {
	// SystemConfig path
	SystemConfig string

	// UserConfig path
	UserConfig string

	// ProjectConfig path
	ProjectConfig string

	// LocalConfig path
	LocalConfig string

	// EnvironmentPrefix for environment variable overrides
	EnvironmentPrefix string
}

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
	Value   interface{}
}

func (e ValidationError) Error() string {
	return e.Message
}

// ConfigSource indicates where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"
	SourceUser        ConfigSource = "user"
	SourceProject     ConfigSource = "project"
	SourceLocal       ConfigSource = "local"
	SourceEnvironment ConfigSource = "environment"
	SourceCLI         ConfigSource = "cli"
)
