package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/elee1766/chatledger/src/apiclient"
	"github.com/elee1766/chatledger/src/config"
)

// loadConfig loads the configuration from the default locations, with the
// --config file taking the place of the user config, then applies CLI flags
func loadConfig(cli *CLI) (*config.Config, error) {
	precedence := config.GetConfigPaths()
	if cli.Config != "" {
		precedence.UserConfig = cli.Config
	}

	cfg, err := config.NewLoader(precedence).Load()
	if err != nil {
		return nil, err
	}
	overrideConfigFromCLI(cfg, cli)
	return cfg, nil
}

// overrideConfigFromCLI overrides configuration values with CLI flags
func overrideConfigFromCLI(cfg *config.Config, cli *CLI) {
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.LogFormat != "" {
		cfg.Logging.Format = cli.LogFormat
	}
	if cli.Server != "" {
		cfg.Bench.BaseURL = cli.Server
	}
}

// setup loads configuration and the logger every command starts from
func setup(cli *CLI) (*config.Config, *slog.Logger, error) {
	cfg, err := loadConfig(cli)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, createLogger(cfg.Logging.Level, cfg.Logging.Format), nil
}

// newClient builds an API client for commands that talk to a running server
func newClient(cli *CLI) (*apiclient.Client, *config.Config, error) {
	cfg, logger, err := setup(cli)
	if err != nil {
		return nil, nil, err
	}
	client := apiclient.New(apiclient.Config{
		BaseURL:    cfg.ServerURL(),
		RetryCount: 2,
		Logger:     logger,
	})
	return client, cfg, nil
}

// maskAPIKey masks an API key for display
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
