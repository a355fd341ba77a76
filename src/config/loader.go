package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Loader handles loading and merging configurations from multiple sources
type Loader struct {
	precedence ConfigPrecedence
	validator  *Validator
}

// NewLoader creates a new configuration loader
func NewLoader(precedence ConfigPrecedence) *Loader {
	return &Loader{
		precedence: precedence,
		validator:  NewValidator(),
	}
}

// Load loads configuration from all sources and merges them
func (l *Loader) Load() (*Config, error) {
	config := baseConfig()

	sources := []struct {
		path   string
		source ConfigSource
	}{
		{l.precedence.SystemConfig, SourceSystem},
		{l.precedence.UserConfig, SourceUser},
		{l.precedence.ProjectConfig, SourceProject},
		{l.precedence.LocalConfig, SourceLocal},
	}

	for _, src := range sources {
		if src.path == "" {
			continue
		}
		if err := l.mergeFile(config, src.path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s config from %s: %w", src.source, src.path, err)
		}
	}

	if l.precedence.EnvironmentPrefix != "" {
		if err := l.applyEnvironmentOverrides(config); err != nil {
			return nil, err
		}
	}

	applyProviderDefaults(config)

	if err := l.validator.Validate(config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// mergeFile decodes a file over config, so only the keys it sets are replaced
func (l *Loader) mergeFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, config); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// SaveFile saves configuration to a file
func (l *Loader) SaveFile(config *Config, path string) error {
	if err := l.validator.Validate(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// never persist a literal key
	saved := *config
	saved.Provider.APIKey = ""

	data, err := json.MarshalIndent(&saved, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// applyEnvironmentOverrides applies environment variable overrides to config
func (l *Loader) applyEnvironmentOverrides(config *Config) error {
	prefix := l.precedence.EnvironmentPrefix

	stringVars := map[string]*string{
		"_PROVIDER":       &config.Provider.Name,
		"_MODEL":          &config.Provider.Model,
		"_BASE_URL":       &config.Provider.BaseURL,
		"_API_KEY":        &config.Provider.APIKey,
		"_API_KEY_ENV":    &config.Provider.APIKeyEnvVar,
		"_SYSTEM_PROMPT":  &config.Provider.SystemPrompt,
		"_DATABASE_PATH":  &config.Storage.DatabasePath,
		"_ADDR":           &config.Server.Addr,
		"_LOG_LEVEL":      &config.Logging.Level,
		"_LOG_FORMAT":     &config.Logging.Format,
		"_BENCH_BASE_URL": &config.Bench.BaseURL,
		"_SCENARIOS_DIR":  &config.Bench.ScenariosDir,
		"_RESULTS_DIR":    &config.Bench.ResultsDir,
	}
	for suffix, field := range stringVars {
		if v := os.Getenv(prefix + suffix); v != "" {
			*field = v
		}
	}

	ints := map[string]*int{
		"_CONTEXT_MESSAGES": &config.Session.ContextMessages,
		"_MAX_RETRIES":      &config.Provider.MaxRetries,
	}
	for suffix, field := range ints {
		if v := os.Getenv(prefix + suffix); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return ValidationError{Field: prefix + suffix, Message: fmt.Sprintf("%s must be an integer", prefix+suffix), Value: v}
			}
			*field = n
		}
	}

	durations := map[string]*time.Duration{
		"_TIMEOUT":          &config.Provider.Timeout,
		"_SHUTDOWN_TIMEOUT": &config.Server.ShutdownTimeout,
	}
	for suffix, field := range durations {
		if v := os.Getenv(prefix + suffix); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return ValidationError{Field: prefix + suffix, Message: fmt.Sprintf("%s must be a duration", prefix+suffix), Value: v}
			}
			*field = d
		}
	}
	return nil
}

// GetConfigPaths returns the configuration file paths to check
func GetConfigPaths() ConfigPrecedence {
	userConfigPath := filepath.Join(xdg.ConfigHome, "chatledger", "config.json")

	systemConfigPath := "/etc/chatledger/config.json"
	if runtime.GOOS == "windows" {
		systemConfigPath = filepath.Join(os.Getenv("PROGRAMDATA"), "chatledger", "config.json")
	}

	return ConfigPrecedence{
		SystemConfig:      systemConfigPath,
		UserConfig:        userConfigPath,
		ProjectConfig:     filepath.Join(".chatledger", "config.json"),
		LocalConfig:       filepath.Join(".chatledger", "config.local.json"),
		EnvironmentPrefix: "CHATLEDGER",
	}
}

// Load reads configuration from the standard locations
func Load() (*Config, error) {
	return NewLoader(GetConfigPaths()).Load()
}
