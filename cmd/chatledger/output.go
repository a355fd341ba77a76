package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/x/ansi"

	"github.com/elee1766/chatledger/src/theme"
)

// printJSON writes v as indented JSON, highlighted when stdout is a terminal
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	if isTerminal(os.Stdout) {
		if err := quick.Highlight(os.Stdout, string(data)+"\n", "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err = fmt.Println(string(data))
	return err
}

func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Println(theme.Muted().Render("(none)"))
		return
	}
	fmt.Println(theme.Table(headers, rows))
}

// checkFormat rejects output formats other than table and json
func checkFormat(format string) error {
	switch format {
	case "table", "json":
		return nil
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// truncate shortens s to width cells on one line
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return ansi.Truncate(s, width, "…")
}

func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return formatTime(*t)
}

func formatOptionalFloat(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

func formatOptionalInt(v *int64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

// printDiff writes a unified diff with syntax highlighting
func printDiff(diff string) error {
	return quick.Highlight(os.Stdout, diff, "diff", "terminal256", "monokai")
}
