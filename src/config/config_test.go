package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", config.Version)
	}
	if config.Provider.Name != "openrouter" {
		t.Errorf("Expected provider openrouter, got %s", config.Provider.Name)
	}
	if config.Provider.Model == "" {
		t.Error("Expected model to be set")
	}
	if config.Provider.APIKeyEnvVar != "OPENROUTER_API_KEY" {
		t.Errorf("Expected OPENROUTER_API_KEY, got %s", config.Provider.APIKeyEnvVar)
	}
	if config.Session.ContextMessages != 20 {
		t.Errorf("Expected 20 context messages, got %d", config.Session.ContextMessages)
	}
	if config.Server.Addr != "127.0.0.1:8000" {
		t.Errorf("Expected 127.0.0.1:8000, got %s", config.Server.Addr)
	}
	if filepath.Base(config.Storage.DatabasePath) != "ledger.db" {
		t.Errorf("Unexpected database path %s", config.Storage.DatabasePath)
	}
}

func TestConfigValidation(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "valid config",
			config:  DefaultConfig(),
			wantErr: false,
		},
		{
			name: "unknown provider",
			config: func() *Config {
				c := DefaultConfig()
				c.Provider.Name = "invalid"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "context messages out of range",
			config: func() *Config {
				c := DefaultConfig()
				c.Session.ContextMessages = 500
				return c
			}(),
			wantErr: true,
		},
		{
			name: "negative retries",
			config: func() *Config {
				c := DefaultConfig()
				c.Provider.MaxRetries = -1
				return c
			}(),
			wantErr: true,
		},
		{
			name: "bad log level",
			config: func() *Config {
				c := DefaultConfig()
				c.Logging.Level = "loud"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "bad listen address",
			config: func() *Config {
				c := DefaultConfig()
				c.Server.Addr = "nowhere"
				return c
			}(),
			wantErr: true,
		},
		{
			name: "zero context messages allowed",
			config: func() *Config {
				c := DefaultConfig()
				c.Session.ContextMessages = 0
				return c
			}(),
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			var vErr ValidationError
			if err != nil && !errors.As(err, &vErr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoaderPrecedence(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "user", "config.json")
	project := filepath.Join(dir, "project", "config.json")

	writeConfig(t, user, `{"provider": {"name": "anthropic"}, "session": {"context_messages": 10}}`)
	writeConfig(t, project, `{"session": {"context_messages": 0}, "server": {"addr": "0.0.0.0:9000"}}`)

	t.Setenv("TESTLEDGER_LOG_LEVEL", "debug")
	t.Setenv("TESTLEDGER_TIMEOUT", "5s")

	loader := NewLoader(ConfigPrecedence{
		SystemConfig:      filepath.Join(dir, "missing.json"),
		UserConfig:        user,
		ProjectConfig:     project,
		EnvironmentPrefix: "TESTLEDGER",
	})
	config, err := loader.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Provider.Name != "anthropic" {
		t.Errorf("provider = %s, want anthropic", config.Provider.Name)
	}
	if config.Provider.Model != DefaultModel("anthropic") {
		t.Errorf("model = %s, want the anthropic default", config.Provider.Model)
	}
	if config.Provider.APIKeyEnvVar != "ANTHROPIC_API_KEY" {
		t.Errorf("api key env = %s", config.Provider.APIKeyEnvVar)
	}
	if config.Session.ContextMessages != 0 {
		t.Errorf("context_messages = %d, want 0 from the project file", config.Session.ContextMessages)
	}
	if config.Server.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %s", config.Server.Addr)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug from env", config.Logging.Level)
	}
	if config.Provider.Timeout != 5*time.Second {
		t.Errorf("timeout = %v", config.Provider.Timeout)
	}
}

func TestLoaderRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	writeConfig(t, path, `{"provider": `)

	if _, err := NewLoader(ConfigPrecedence{UserConfig: path}).Load(); err == nil {
		t.Error("expected a parse error")
	}

	t.Setenv("BADENV_CONTEXT_MESSAGES", "many")
	if _, err := NewLoader(ConfigPrecedence{EnvironmentPrefix: "BADENV"}).Load(); err == nil {
		t.Error("expected an env parse error")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("CUSTOM_KEY", "from-env")

	p := ProviderConfig{Name: "openai", APIKeyEnvVar: "CUSTOM_KEY"}
	if got := p.ResolveAPIKey(); got != "from-env" {
		t.Errorf("ResolveAPIKey() = %q", got)
	}

	p.APIKey = "literal"
	if got := p.ResolveAPIKey(); got != "literal" {
		t.Errorf("ResolveAPIKey() = %q", got)
	}

	if got := (ProviderConfig{Name: "ollama"}).ResolveAPIKey(); got != "" {
		t.Errorf("ResolveAPIKey() = %q, want empty for ollama", got)
	}
}

func TestSaveFileOmitsAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	config := DefaultConfig()
	config.Provider.APIKey = "secret"

	if err := NewLoader(ConfigPrecedence{}).SaveFile(config, path); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) == "" || strings.Contains(string(data), "secret") {
		t.Errorf("saved config leaks the key: %s", data)
	}
	if config.Provider.APIKey != "secret" {
		t.Error("SaveFile must not modify its argument")
	}
}

func TestValidationErrorNamesConfigPath(t *testing.T) {
	c := DefaultConfig()
	c.Session.ContextMessages = 500

	err := NewValidator().Validate(c)
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if vErr.Field != "session.context_messages" {
		t.Errorf("Field = %q, want session.context_messages", vErr.Field)
	}
	if vErr.Message != "session.context_messages must be at most 200, got 500" {
		t.Errorf("Message = %q", vErr.Message)
	}
}
