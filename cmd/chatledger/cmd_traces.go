package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/elee1766/chatledger/src/theme"
)

// TracesCmd inspects inference traces
type TracesCmd struct {
	List TracesListCmd `cmd:"" default:"1" help:"List traces, newest first"`
	Show TracesShowCmd `cmd:"" help:"Show one trace in full"`
	Rate TracesRateCmd `cmd:"" help:"Rate a trace, replacing any earlier rating"`
}

// TracesListCmd lists traces
type TracesListCmd struct {
	Limit   int    `default:"20" help:"Page size"`
	Offset  int    `default:"0" help:"Traces to skip"`
	Session string `help:"Only traces of this session"`
	Format  string `help:"Output format (table, json)" default:"table"`
}

// Run executes the traces list command
func (c *TracesListCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	traces, err := client.ListTraces(context.Background(), c.Limit, c.Offset, c.Session)
	if err != nil {
		return fmt.Errorf("failed to list traces: %w", err)
	}
	if c.Format == "json" {
		return printJSON(traces)
	}

	rows := make([][]string, 0, len(traces))
	for _, t := range traces {
		rating := "-"
		if t.RatingScore != nil {
			rating = fmt.Sprintf("%d", *t.RatingScore)
		}
		rows = append(rows, []string{
			t.ID, formatTime(t.Timestamp), t.Provider, truncate(t.Model, 24),
			fmt.Sprintf("%.0f", t.LatencyMs), formatOptionalInt(t.CompletionTokens), rating,
			truncate(t.ResponseOut, 40),
		})
	}
	printTable([]string{"ID", "TIME", "PROVIDER", "MODEL", "MS", "TOKENS", "RATING", "RESPONSE"}, rows)
	return nil
}

// TracesShowCmd shows one trace
type TracesShowCmd struct {
	ID     string `arg:"" help:"Trace ID"`
	Format string `help:"Output format (text, json)" default:"text"`
}

// Run executes the traces show command
func (c *TracesShowCmd) Run(ctx *kong.Context, cli *CLI) error {
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	t, err := client.GetTrace(context.Background(), c.ID)
	if err != nil {
		return fmt.Errorf("failed to get trace: %w", err)
	}
	if c.Format == "json" {
		return printJSON(t)
	}

	fmt.Println(theme.Title().Render("trace " + t.ID))
	fmt.Printf("%s %s/%s  %.0fms  prompt %s  completion %s\n",
		formatTime(t.Timestamp), t.Provider, t.Model, t.LatencyMs,
		formatOptionalInt(t.PromptTokens), formatOptionalInt(t.CompletionTokens))
	if t.SessionID != nil {
		fmt.Println(theme.Muted().Render("session " + *t.SessionID))
	}
	if t.RatingScore != nil {
		note := ""
		if t.RatingNote != nil {
			note = " " + *t.RatingNote
		}
		fmt.Printf("rating %d%s\n", *t.RatingScore, note)
	}
	fmt.Println()
	for _, m := range t.RawMessagesIn {
		fmt.Printf("%s\n%s\n\n", theme.Role(m.Role).Render(m.Role), strings.TrimSpace(m.Content))
	}
	fmt.Printf("%s\n%s\n", theme.Role("assistant").Render("response"), t.ResponseOut)
	return nil
}

// TracesRateCmd rates a trace
type TracesRateCmd struct {
	ID    string `arg:"" help:"Trace ID"`
	Score int    `arg:"" help:"Rating score"`
	Note  string `help:"Optional note"`
}

// Run executes the traces rate command
func (c *TracesRateCmd) Run(ctx *kong.Context, cli *CLI) error {
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	var note *string
	if c.Note != "" {
		note = &c.Note
	}
	rating, err := client.RateTrace(context.Background(), c.ID, c.Score, note)
	if err != nil {
		return fmt.Errorf("failed to rate trace: %w", err)
	}
	fmt.Printf("rated %s: %d\n", rating.TraceID, rating.Score)
	return nil
}
