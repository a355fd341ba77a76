package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/elee1766/chatledger/src/httpapi"
	"github.com/elee1766/chatledger/src/theme"
)

// SessionsCmd manages sessions
type SessionsCmd struct {
	List    SessionsListCmd    `cmd:"" default:"1" help:"List sessions"`
	Start   SessionsStartCmd   `cmd:"" help:"Close the active session and start a new one"`
	Active  SessionsActiveCmd  `cmd:"" help:"Print the active session id"`
	Archive SessionsArchiveCmd `cmd:"" help:"Archive the live log without closing the session"`
}

// SessionsListCmd lists sessions
type SessionsListCmd struct {
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the sessions list command
func (c *SessionsListCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	sessions, err := client.ListSessions(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	if c.Format == "json" {
		return printJSON(sessions)
	}

	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		active := ""
		if s.IsActive {
			active = "*"
		}
		rows = append(rows, []string{
			active, s.ID, formatTime(s.StartedAt), formatOptionalTime(s.EndedAt),
			s.Provider, s.Model, strconv.Itoa(s.ContextMessages),
			strconv.FormatInt(s.MessageCount, 10), truncate(s.Note, 30),
		})
	}
	printTable([]string{"", "ID", "STARTED", "ENDED", "PROVIDER", "MODEL", "CONTEXT", "MESSAGES", "NOTE"}, rows)
	return nil
}

// SessionsStartCmd starts a new session
type SessionsStartCmd struct {
	Note            string `help:"Free-form note stored with the session"`
	Provider        string `help:"Provider for the session (defaults to server config)"`
	Model           string `help:"Model for the session (defaults to server config)"`
	ContextMessages int    `default:"-1" help:"Messages of context sent to the model (defaults to server config)"`
	Format          string `help:"Output format (text, json)" default:"text"`
}

// Run executes the sessions start command
func (c *SessionsStartCmd) Run(ctx *kong.Context, cli *CLI) error {
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	req := httpapi.StartSessionRequest{
		Note:     c.Note,
		Provider: c.Provider,
		Model:    c.Model,
	}
	if c.ContextMessages >= 0 {
		req.ContextMessages = &c.ContextMessages
	}
	result, err := client.StartSession(context.Background(), req)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	if c.Format == "json" {
		return printJSON(result)
	}

	snap := result.ConfigSnapshot
	fmt.Printf("%s %s (%s/%s, %d context messages)\n",
		theme.Title().Render("started"), result.SessionID, snap.Provider, snap.Model, snap.ContextMessages)
	if result.EndedSession != nil {
		fmt.Println(theme.Muted().Render(fmt.Sprintf("ended %s with %d messages", result.EndedSession.ID, result.EndedSession.MessageCount)))
	}
	return nil
}

// SessionsActiveCmd prints the active session
type SessionsActiveCmd struct{}

// Run executes the sessions active command
func (c *SessionsActiveCmd) Run(ctx *kong.Context, cli *CLI) error {
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	id, err := client.ActiveSession(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get active session: %w", err)
	}
	if id == "" {
		fmt.Println(theme.Muted().Render("no active session"))
		return nil
	}
	fmt.Println(id)
	return nil
}

// SessionsArchiveCmd archives the live log
type SessionsArchiveCmd struct{}

// Run executes the sessions archive command
func (c *SessionsArchiveCmd) Run(ctx *kong.Context, cli *CLI) error {
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	result, err := client.Archive(context.Background())
	if err != nil {
		return fmt.Errorf("failed to archive: %w", err)
	}
	fmt.Printf("archived %d messages at %s\n", result.ArchivedCount, formatTime(result.ArchivedAt))
	return nil
}
