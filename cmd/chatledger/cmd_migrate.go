package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/elee1766/chatledger/src/storage"
)

// MigrateCmd manages database migrations
type MigrateCmd struct {
	Up     MigrateUpCmd     `cmd:"" help:"Run pending migrations"`
	Down   MigrateDownCmd   `cmd:"" help:"Rollback last migration"`
	Status MigrateStatusCmd `cmd:"" help:"Show migration status"`
}

// openDatabase opens the ledger database directly, which applies pending migrations
func openDatabase(cli *CLI, path string) (*storage.DB, error) {
	if path == "" {
		cfg, _, err := setup(cli)
		if err != nil {
			return nil, err
		}
		path = cfg.Storage.DatabasePath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	db, err := storage.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// MigrateUpCmd runs pending migrations
type MigrateUpCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate up command
func (c *MigrateUpCmd) Run(ctx *kong.Context, cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.AppliedMigrations(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Database %s is at version %d\n", db.Path(), len(applied))
	return nil
}

// MigrateDownCmd rolls back the last migration
type MigrateDownCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate down command
func (c *MigrateDownCmd) Run(ctx *kong.Context, cli *CLI) error {
	return fmt.Errorf("migration rollback is not supported")
}

// MigrateStatusCmd shows migration status
type MigrateStatusCmd struct {
	DBPath string `help:"Database path (defaults to config)"`
}

// Run executes the migrate status command
func (c *MigrateStatusCmd) Run(ctx *kong.Context, cli *CLI) error {
	db, err := openDatabase(cli, c.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	applied, err := db.AppliedMigrations(context.Background())
	if err != nil {
		return err
	}
	appliedAt := map[int]string{}
	for _, r := range applied {
		appliedAt[r.Version] = formatTime(r.AppliedAt)
	}

	rows := [][]string{}
	for _, m := range storage.Migrations() {
		at, ok := appliedAt[m.Version]
		if !ok {
			at = "pending"
		}
		rows = append(rows, []string{strconv.Itoa(m.Version), m.Name, at})
	}
	printTable([]string{"VERSION", "NAME", "APPLIED"}, rows)
	return nil
}
