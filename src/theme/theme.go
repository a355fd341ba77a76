package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Theme represents a color theme
type Theme struct {
	Primary   lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Success   lipgloss.Color
	Error     lipgloss.Color
}

var CurrentTheme = Theme{
	Primary:   lipgloss.Color("#00ff00"),
	Text:      lipgloss.Color("#ffffff"),
	TextMuted: lipgloss.Color("#808080"),
	Success:   lipgloss.Color("#5fd75f"),
	Error:     lipgloss.Color("#ff5f5f"),
}

// SetTheme sets the current theme
func SetTheme(t Theme) {
	CurrentTheme = t
}

func Title() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary)
}

func Muted() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(CurrentTheme.TextMuted)
}

// Role styles the speaker label of a message
func Role(role string) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if role == "assistant" {
		return style.Foreground(CurrentTheme.Primary)
	}
	return style.Foreground(CurrentTheme.Text)
}

// Score renders a 0..1 score, green when full and red when zero
func Score(v float64) string {
	style := lipgloss.NewStyle().Foreground(CurrentTheme.Text)
	switch {
	case v >= 1:
		style = style.Foreground(CurrentTheme.Success)
	case v <= 0:
		style = style.Foreground(CurrentTheme.Error)
	}
	return style.Render(fmt.Sprintf("%.2f", v))
}

// Delta renders a signed score change
func Delta(v float64) string {
	style := lipgloss.NewStyle().Foreground(CurrentTheme.TextMuted)
	switch {
	case v > 0:
		style = style.Foreground(CurrentTheme.Success)
	case v < 0:
		style = style.Foreground(CurrentTheme.Error)
	}
	return style.Render(fmt.Sprintf("%+.2f", v))
}

// Table renders rows under a bold header row
func Table(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(CurrentTheme.Primary).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.TextMuted)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return t.String()
}
