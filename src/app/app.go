package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/elee1766/chatledger/src/aisdk"
	"github.com/elee1766/chatledger/src/chat"
	"github.com/elee1766/chatledger/src/config"
	"github.com/elee1766/chatledger/src/ledger"
	"github.com/elee1766/chatledger/src/llmclient"
)

// App represents the main application with all services
type App struct {
	Ledger  *ledger.Ledger
	Chat    *chat.Service
	Clients *ClientCache
	Logger  *slog.Logger
	Config  *config.Config
}

// AppConfig holds configuration for creating a new App instance
type AppConfig struct {
	Config *config.Config
	Logger *slog.Logger
}

// New creates a new App instance with all services initialized
func New(ctx context.Context, cfg AppConfig) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	if cfg.Config == nil {
		cfg.Config = config.DefaultConfig()
	}
	conf := cfg.Config

	// Initialize storage
	dbPath := conf.Storage.DatabasePath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	l, err := ledger.Open(ctx, dbPath, ledger.Config{Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}

	clients := NewClientCache(conf.Provider, logger)
	service := chat.NewService(chat.ServiceConfig{
		Ledger:  l,
		Clients: clients,
		Defaults: chat.Defaults{
			Provider:        conf.Provider.Name,
			Model:           conf.Provider.Model,
			ContextMessages: conf.Session.ContextMessages,
			SystemPrompt:    conf.Provider.SystemPrompt,
		},
		Logger: logger,
	})

	logger.Info("ledger opened", "path", dbPath, "provider", conf.Provider.Name, "model", conf.Provider.Model)

	return &App{
		Ledger:  l,
		Chat:    service,
		Clients: clients,
		Logger:  logger,
		Config:  conf,
	}, nil
}

// Close closes all resources held by the app
func (a *App) Close() error {
	if a.Ledger != nil {
		return a.Ledger.Close()
	}
	return nil
}

// ClientCache builds one provider client per provider name on first use.
// The configured provider uses the configured endpoint and key; any other
// provider a session names uses its default endpoint and key variable.
type ClientCache struct {
	primary config.ProviderConfig
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[string]aisdk.ChatClient
}

var _ chat.ClientSource = (*ClientCache)(nil)

// NewClientCache creates a client cache around the configured provider
func NewClientCache(primary config.ProviderConfig, logger *slog.Logger) *ClientCache {
	return &ClientCache{
		primary: primary,
		logger:  logger,
		clients: map[string]aisdk.ChatClient{},
	}
}

// Client implements chat.ClientSource.
func (c *ClientCache) Client(provider string) (aisdk.ChatClient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[provider]; ok {
		return client, nil
	}
	if !llmclient.IsKnownProvider(provider) {
		return nil, fmt.Errorf("%w: %s", llmclient.ErrUnknownProvider, provider)
	}

	cfg := llmclient.Config{
		Provider:   provider,
		Logger:     c.logger,
		Timeout:    c.primary.Timeout,
		RetryCount: c.primary.MaxRetries,
	}
	if provider == c.primary.Name {
		cfg.APIKey = c.primary.ResolveAPIKey()
		cfg.BaseURL = c.primary.BaseURL
	} else {
		cfg.APIKey = config.ProviderConfig{Name: provider}.ResolveAPIKey()
	}

	client, err := llmclient.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	c.clients[provider] = client
	return client, nil
}
