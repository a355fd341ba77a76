package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
)

// StatsCmd shows statistics
type StatsCmd struct {
	Messages    StatsMessagesCmd    `cmd:"" default:"1" help:"Message counts"`
	Performance StatsPerformanceCmd `cmd:"" help:"Latency, throughput and ratings over all traces"`
	Rollups     StatsRollupsCmd     `cmd:"" help:"Hourly inference buckets"`
}

// StatsMessagesCmd shows message counts
type StatsMessagesCmd struct {
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the stats messages command
func (c *StatsMessagesCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	stats, err := client.MessageStats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get message stats: %w", err)
	}
	if c.Format == "json" {
		return printJSON(stats)
	}
	printTable([]string{"METRIC", "VALUE"}, [][]string{
		{"total messages", strconv.FormatInt(stats.TotalMessages, 10)},
		{"user messages", strconv.FormatInt(stats.UserMessages, 10)},
		{"assistant messages", strconv.FormatInt(stats.AssistantMessages, 10)},
		{"messages today (live)", strconv.FormatInt(stats.MessagesToday, 10)},
		{"first message", formatOptionalTime(stats.FirstMessageAt)},
		{"last message", formatOptionalTime(stats.LastMessageAt)},
	})
	return nil
}

// StatsPerformanceCmd shows trace aggregates
type StatsPerformanceCmd struct {
	Format string `help:"Output format (table, json)" default:"table"`
}

// Run executes the stats performance command
func (c *StatsPerformanceCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	stats, err := client.PerformanceStats(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get performance stats: %w", err)
	}
	if c.Format == "json" {
		return printJSON(stats)
	}

	printTable([]string{"METRIC", "VALUE"}, [][]string{
		{"total calls", strconv.FormatInt(stats.TotalCalls, 10)},
		{"avg latency (ms)", fmt.Sprintf("%.2f", stats.AvgLatencyMs)},
		{"avg tokens/sec", formatOptionalFloat(stats.AvgTokensPerSec)},
		{"prompt tokens", strconv.FormatInt(stats.TotalPromptTokens, 10)},
		{"completion tokens", strconv.FormatInt(stats.TotalCompletionTokens, 10)},
		{"avg rating", formatOptionalFloat(stats.AvgRating)},
	})

	providers := make([]string, 0, len(stats.ByProvider))
	for p := range stats.ByProvider {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	rows := make([][]string, 0, len(providers))
	for _, p := range providers {
		ps := stats.ByProvider[p]
		rows = append(rows, []string{p, strconv.FormatInt(ps.Calls, 10), fmt.Sprintf("%.2f", ps.AvgLatencyMs), formatOptionalFloat(ps.AvgRating)})
	}
	printTable([]string{"PROVIDER", "CALLS", "AVG LATENCY (MS)", "AVG RATING"}, rows)
	return nil
}

// StatsRollupsCmd shows hourly buckets
type StatsRollupsCmd struct {
	Since  time.Duration `default:"24h" help:"Only buckets from this long ago; 0 shows all"`
	Format string        `help:"Output format (table, json)" default:"table"`
}

// Run executes the stats rollups command
func (c *StatsRollupsCmd) Run(ctx *kong.Context, cli *CLI) error {
	if err := checkFormat(c.Format); err != nil {
		return err
	}
	client, _, err := newClient(cli)
	if err != nil {
		return err
	}
	var since *time.Time
	if c.Since > 0 {
		t := time.Now().Add(-c.Since)
		since = &t
	}
	rollups, err := client.ListRollups(context.Background(), since)
	if err != nil {
		return fmt.Errorf("failed to list rollups: %w", err)
	}
	if c.Format == "json" {
		return printJSON(rollups)
	}

	rows := make([][]string, 0, len(rollups))
	for _, r := range rollups {
		rows = append(rows, []string{
			formatTime(r.PeriodStart), r.Provider, r.Model,
			strconv.FormatInt(r.CallCount, 10), fmt.Sprintf("%.2f", r.AvgLatencyMs),
			strconv.FormatInt(r.TotalPromptTokens, 10), strconv.FormatInt(r.TotalCompletionTokens, 10),
		})
	}
	printTable([]string{"HOUR", "PROVIDER", "MODEL", "CALLS", "AVG LATENCY (MS)", "PROMPT", "COMPLETION"}, rows)
	return nil
}
