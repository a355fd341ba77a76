package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

var version = "dev"

// CLI represents the main CLI structure
type CLI struct {
	Config    string `short:"c" type:"path" help:"Configuration file (overrides the user config)"`
	Server    string `env:"CHATLEDGER_SERVER" help:"Server base URL for client commands"`
	LogLevel  string `help:"Log level (debug, info, warn, error)"`
	LogFormat string `help:"Log format (text, json)"`

	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API"`
	Migrate  MigrateCmd  `cmd:"" help:"Database migrations"`
	Chat     ChatCmd     `cmd:"" help:"Send a message, or show recent history"`
	Search   SearchCmd   `cmd:"" help:"Search live and archived messages"`
	Sessions SessionsCmd `cmd:"" help:"Session management"`
	Stats    StatsCmd    `cmd:"" help:"Message and inference statistics"`
	Traces   TracesCmd   `cmd:"" help:"Inspect and rate inference traces"`
	Bench    BenchCmd    `cmd:"" help:"Recall benchmarks"`
	Version  VersionCmd  `cmd:"" help:"Print the version"`
}

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("chatledger"),
		kong.Description("A single lifelong conversation with a language model, kept in a ledger"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// VersionCmd prints the build version
type VersionCmd struct{}

func (c *VersionCmd) Run(ctx *kong.Context, cli *CLI) error {
	fmt.Println(version)
	return nil
}
