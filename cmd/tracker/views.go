package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
	"github.com/rxtech-lab/ohlc-tracker/pkg/export"
)

// candleColumnWidths follow export.Header.
var candleColumnWidths = []int{18, 11, 11, 11, 11, 12}

// NewCandleTable creates the table of one symbol's in-session candles.
func NewCandleTable(series types.CandleSeries, height int) table.Model {
	columns := make([]table.Column, len(export.Header))
	for i, title := range export.Header {
		columns[i] = table.Column{Title: title, Width: candleColumnWidths[i]}
	}

	rows := make([]table.Row, 0, series.Len())
	for _, r := range export.Table(series) {
		rows = append(rows, table.Row(r.Strings()))
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)

	t.SetStyles(s)

	return t
}

// TabName is the label shown for a symbol, matching its sheet name in the workbook.
func TabName(symbol string) string {
	return export.SanitizeSheetName(export.TrimSuffixNamer(".NS")(symbol))
}

// RenderTabs draws the tab bar with active highlighted.
func RenderTabs(names []string, active int) string {
	tabs := make([]string, len(names))
	for i, name := range names {
		if i == active {
			tabs[i] = ActiveTabStyle.Render(name)
		} else {
			tabs[i] = TabStyle.Render(name)
		}
	}

	return lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)
}

// RenderSymbolList draws the multi-select list of symbols.
func RenderSymbolList(symbols []string, selected map[string]bool, cursor int) string {
	var s strings.Builder

	for i, symbol := range symbols {
		check := "[ ]"
		if selected[symbol] {
			check = "[x]"
		}

		line := fmt.Sprintf("%s %s", check, symbol)
		if i == cursor {
			s.WriteString(CursorStyle.Render("> " + line))
		} else {
			s.WriteString("  " + line)
		}

		s.WriteString("\n")
	}

	return s.String()
}

// RenderFailures lists the symbols that produced no data.
func RenderFailures(failures []batch.Failure) string {
	if len(failures) == 0 {
		return ""
	}

	var s strings.Builder

	s.WriteString(ErrorStyle.Render(fmt.Sprintf("Failed (%d)", len(failures))))
	s.WriteString("\n")

	for _, f := range failures {
		s.WriteString(fmt.Sprintf("  %s: %s\n", f.Symbol, f.Reason))
	}

	return s.String()
}

// LastClose summarises the newest candle against the one before it.
func LastClose(series types.CandleSeries) string {
	last := series.Last(2)

	switch len(last) {
	case 0:
		return "no candles inside the session window"
	case 1:
		return "Last close " + FormatPriceWithColor(export.Round(last[0].Close), 0)
	default:
		return "Last close " + FormatPriceWithColor(export.Round(last[1].Close), export.Round(last[0].Close))
	}
}
