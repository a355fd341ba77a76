package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/elee1766/chatledger/src/ledger"
	"github.com/elee1766/chatledger/src/theme"
)

// ChatCmd sends one message, or prints history when no message is given
type ChatCmd struct {
	Message []string `arg:"" optional:"" help:"Message to send"`
	History int      `short:"n" default:"20" help:"Messages of history to show when no message is given"`
	Format  string   `help:"Output format (text, json)" default:"text"`
}

// Run executes the chat command
func (c *ChatCmd) Run(ctx *kong.Context, cli *CLI) error {
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	bg := context.Background()

	message := strings.TrimSpace(strings.Join(c.Message, " "))
	if message == "" {
		page, err := client.History(bg, c.History, nil)
		if err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		if c.Format == "json" {
			return printJSON(page)
		}
		// history arrives newest first
		for i := len(page.Messages) - 1; i >= 0; i-- {
			m := page.Messages[i]
			fmt.Printf("%s %s\n%s\n\n", theme.Role(m.Role).Render(m.Role), theme.Muted().Render(formatTime(m.Timestamp)), m.Content)
		}
		return nil
	}

	reply, err := client.Chat(bg, message)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}
	if c.Format == "json" {
		return printJSON(reply)
	}
	fmt.Println(reply.Response)
	if reply.TraceID != "" {
		fmt.Println(theme.Muted().Render("trace " + reply.TraceID))
	}
	return nil
}

// SearchCmd searches both message sources
type SearchCmd struct {
	Query  string `arg:"" optional:"" help:"Case-insensitive text to look for"`
	Role   string `help:"Only messages from this role (user, assistant)"`
	Limit  int    `default:"50" help:"Page size"`
	Offset int    `default:"0" help:"Hits to skip"`
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the search command
func (c *SearchCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}

	page, err := client.SearchMessages(context.Background(), ledger.SearchQuery{
		Limit:  c.Limit,
		Offset: c.Offset,
		Role:   c.Role,
		Query:  c.Query,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if c.Format == "json" {
		return printJSON(page)
	}

	rows := make([][]string, 0, len(page.Messages))
	for _, m := range page.Messages {
		session := "-"
		if m.SessionID != nil {
			session = truncate(*m.SessionID, 8)
		}
		rows = append(rows, []string{formatTime(m.Timestamp), m.Source, m.Role, session, truncate(m.Content, 60)})
	}
	printTable([]string{"TIME", "SOURCE", "ROLE", "SESSION", "CONTENT"}, rows)
	fmt.Println(theme.Muted().Render(strconv.Itoa(len(page.Messages)) + " of " + strconv.FormatInt(page.Total, 10)))
	return nil
}
