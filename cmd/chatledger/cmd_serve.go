package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/elee1766/chatledger/src/app"
	"github.com/elee1766/chatledger/src/httpapi"
)

// ServeCmd runs the HTTP API
type ServeCmd struct {
	Addr string `help:"Listen address (defaults to config)"`
	DB   string `name:"db" help:"Database path (defaults to config)"`
}

// Run executes the serve command
func (c *ServeCmd) Run(ctx *kong.Context, cli *CLI) error {
	cfg, logger, err := setup(cli)
	if err != nil {
		return err
	}
	if c.Addr != "" {
		cfg.Server.Addr = c.Addr
	}
	if c.DB != "" {
		cfg.Storage.DatabasePath = c.DB
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(runCtx, app.AppConfig{Config: cfg, Logger: logger})
	if err != nil {
		return err
	}
	defer a.Close()

	if key := cfg.Provider.ResolveAPIKey(); key != "" {
		logger.Debug("provider credentials", "provider", cfg.Provider.Name, "api_key", maskAPIKey(key))
	} else {
		logger.Warn("no api key configured", "provider", cfg.Provider.Name, "env", cfg.Provider.APIKeyEnvVar)
	}

	h := httpapi.NewHandler(httpapi.HandlerConfig{
		Ledger:   a.Ledger,
		Chat:     a.Chat,
		Defaults: a.Chat.Defaults(),
		Version:  version,
		Logger:   logger,
	})
	e := httpapi.NewServer(h)

	if err := httpapi.Serve(runCtx, e, cfg.Server.Addr, cfg.Server.ShutdownTimeout, logger); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
