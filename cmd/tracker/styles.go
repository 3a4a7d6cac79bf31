package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions.
var (
	// TitleStyle for headers.
	TitleStyle = lipgloss.NewStyle().Bold(true)

	// HelpStyle for help text.
	HelpStyle = lipgloss.NewStyle().Faint(true)

	// ErrorStyle for error messages.
	ErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))

	// StatusStyle for confirmations such as a saved report.
	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// CursorStyle highlights the symbol under the cursor.
	CursorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)

	TabStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(lipgloss.Color("240"))

	ActiveTabStyle = TabStyle.
			Bold(true).
			Foreground(lipgloss.Color("229")).
			BorderForeground(lipgloss.Color("57"))
)

// FormatPriceWithColor formats a price with indicator based on comparison with previous price.
func FormatPriceWithColor(current, previous float64) string {
	priceStr := fmt.Sprintf("%.2f", current)

	if previous == 0 {
		return priceStr
	}

	if current > previous {
		return priceStr + " ▲"
	} else if current < previous {
		return priceStr + " ▼"
	}

	return priceStr
}
