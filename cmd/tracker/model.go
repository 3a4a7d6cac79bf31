package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rxtech-lab/ohlc-tracker/internal/types"
	"github.com/rxtech-lab/ohlc-tracker/pkg/batch"
)

// Application states.
const (
	StateSymbolSelect = iota
	StateFetching
	StateReport
)

// defaultTableHeight is used until the terminal reports its size.
const defaultTableHeight = 12

// Tracker is what the UI needs from the tracker service.
type Tracker interface {
	Symbols() []string
	Fetch(ctx context.Context, symbols []string, progress batch.ProgressFunc) (*batch.Report, error)
	SaveWorkbook(report *batch.Report, path string) (string, error)
}

// Model is the main Bubble Tea model for the session tracker.
type Model struct {
	state    int
	tracker  Tracker
	symbols  []string
	selected map[string]bool
	cursor   int

	progress  progress.Model
	completed int
	total     int
	updates   <-chan tea.Msg

	report    *batch.Report
	tabs      []string
	series    []types.CandleSeries
	tables    []table.Model
	activeTab int

	status string
	err    error
	width  int
	height int

	// Fetch control
	fetchCancel context.CancelFunc
}

// DefaultSelection is how many of the leading configured symbols start selected.
const DefaultSelection = 5

// NewModel creates a new Model with the first DefaultSelection symbols selected.
func NewModel(t Tracker) Model {
	symbols := t.Symbols()
	selected := make(map[string]bool, len(symbols))

	for i, s := range symbols {
		selected[s] = i < DefaultSelection
	}

	return Model{
		state:    StateSymbolSelect,
		tracker:  t,
		symbols:  symbols,
		selected: selected,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.fetchCancel != nil {
				m.fetchCancel()
			}

			return m, tea.Quit
		case "esc":
			return m.handleEsc()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(msg.Width-4, 10)

		for i := range m.tables {
			m.tables[i].SetWidth(msg.Width)
			m.tables[i].SetHeight(m.tableHeight())
		}

		return m, nil

	case ProgressMsg:
		m.completed = msg.Completed
		m.total = msg.Total

		return m, waitForUpdate(m.updates)

	case FetchDoneMsg:
		return m.handleFetchDone(msg)

	case SavedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.status = ""
		} else {
			m.err = nil
			m.status = "Saved report to " + msg.Path
		}

		return m, nil
	}

	// Delegate to state-specific update
	switch m.state {
	case StateSymbolSelect:
		return m.updateSymbolSelect(msg)
	case StateReport:
		return m.updateReport(msg)
	}

	return m, nil
}

func (m Model) handleEsc() (tea.Model, tea.Cmd) {
	switch m.state {
	case StateFetching:
		if m.fetchCancel != nil {
			m.fetchCancel()
		}
	case StateReport:
		// Keep the selection so a refetch is one keypress away.
		m.report = nil
		m.tabs = nil
		m.series = nil
		m.tables = nil
		m.activeTab = 0
		m.status = ""
		m.err = nil
		m.state = StateSymbolSelect
	}

	return m, nil
}

func (m Model) updateSymbolSelect(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.symbols)-1 {
			m.cursor++
		}
	case " ":
		if len(m.symbols) > 0 {
			s := m.symbols[m.cursor]
			m.selected[s] = !m.selected[s]
		}
	case "a":
		all := len(m.Selected()) == len(m.symbols)
		for _, s := range m.symbols {
			m.selected[s] = !all
		}
	case "enter":
		symbols := m.Selected()
		if len(symbols) == 0 {
			m.err = fmt.Errorf("select at least one symbol")
			return m, nil
		}

		return m.startFetch(symbols)
	}

	return m, nil
}

func (m Model) updateReport(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "right", "l":
			if len(m.tabs) > 0 {
				m.activeTab = (m.activeTab + 1) % len(m.tabs)
			}

			return m, nil
		case "shift+tab", "left", "h":
			if len(m.tabs) > 0 {
				m.activeTab = (m.activeTab - 1 + len(m.tabs)) % len(m.tabs)
			}

			return m, nil
		case "d":
			m.status = "Saving report..."
			return m, m.saveReport()
		}
	}

	if len(m.tables) == 0 {
		return m, nil
	}

	var cmd tea.Cmd
	m.tables[m.activeTab], cmd = m.tables[m.activeTab].Update(msg)

	return m, cmd
}

// Selected returns the checked symbols in universe order.
func (m Model) Selected() []string {
	selected := make([]string, 0, len(m.symbols))
	for _, s := range m.symbols {
		if m.selected[s] {
			selected = append(selected, s)
		}
	}

	return selected
}

// startFetch runs the batch in the background. Progress notifications and the final
// report arrive through the updates channel, one message per read.
func (m Model) startFetch(symbols []string) (tea.Model, tea.Cmd) {
	ctx, cancel := context.WithCancel(context.Background())
	// One progress message per symbol plus the final report.
	updates := make(chan tea.Msg, len(symbols)+1)

	go func(t Tracker) {
		defer close(updates)

		report, err := t.Fetch(ctx, symbols, func(completed, total int) {
			updates <- ProgressMsg{Completed: completed, Total: total}
		})
		updates <- FetchDoneMsg{Report: report, Err: err}
	}(m.tracker)

	m.state = StateFetching
	m.updates = updates
	m.fetchCancel = cancel
	m.completed = 0
	m.total = len(symbols)
	m.status = ""
	m.err = nil

	return m, waitForUpdate(updates)
}

func waitForUpdate(updates <-chan tea.Msg) tea.Cmd {
	if updates == nil {
		return nil
	}

	return func() tea.Msg {
		msg, ok := <-updates
		if !ok {
			return nil
		}

		return msg
	}
}

func (m Model) handleFetchDone(msg FetchDoneMsg) (tea.Model, tea.Cmd) {
	if m.fetchCancel != nil {
		m.fetchCancel()
		m.fetchCancel = nil
	}

	m.updates = nil

	if msg.Err != nil {
		m.err = msg.Err
		m.state = StateSymbolSelect

		return m, nil
	}

	m.report = msg.Report
	m.tabs = nil
	m.series = nil
	m.tables = nil
	m.activeTab = 0

	for _, success := range msg.Report.Successes() {
		m.tabs = append(m.tabs, TabName(success.Series.Symbol))
		m.series = append(m.series, success.Series)

		t := NewCandleTable(success.Series, m.tableHeight())
		if m.width > 0 {
			t.SetWidth(m.width)
		}

		m.tables = append(m.tables, t)
	}

	m.state = StateReport

	return m, nil
}

func (m Model) saveReport() tea.Cmd {
	report := m.report
	t := m.tracker

	return func() tea.Msg {
		path, err := t.SaveWorkbook(report, "")
		return SavedMsg{Path: path, Err: err}
	}
}

func (m Model) tableHeight() int {
	if m.height == 0 {
		return defaultTableHeight
	}

	// Title, tabs, summary, failures and help take roughly this many lines.
	return max(m.height-12, 3)
}

// View implements tea.Model.
func (m Model) View() string {
	var s strings.Builder

	switch m.state {
	case StateSymbolSelect:
		s.WriteString(TitleStyle.Render("OHLC Session Tracker - Select Symbols"))
		s.WriteString("\n\n")
		s.WriteString(RenderSymbolList(m.symbols, m.selected, m.cursor))
		s.WriteString("\n")
		s.WriteString(fmt.Sprintf("%d of %d selected\n\n", len(m.Selected()), len(m.symbols)))
		m.writeMessages(&s)
		s.WriteString(HelpStyle.Render("space: toggle | a: all | enter: fetch | q: quit"))

	case StateFetching:
		s.WriteString(TitleStyle.Render("Fetching Market Data"))
		s.WriteString("\n\n")

		percent := 0.0
		if m.total > 0 {
			percent = float64(m.completed) / float64(m.total)
		}

		s.WriteString(m.progress.ViewAs(percent))
		s.WriteString(fmt.Sprintf("\n\n%d/%d symbols\n\n", m.completed, m.total))
		s.WriteString(HelpStyle.Render("Esc: cancel | q: quit"))

	case StateReport:
		s.WriteString(TitleStyle.Render("Market Report"))
		s.WriteString("\n\n")

		if len(m.tabs) == 0 {
			s.WriteString("No data for any selected symbol.\n\n")
		} else {
			s.WriteString(RenderTabs(m.tabs, m.activeTab))
			s.WriteString("\n")
			s.WriteString(LastClose(m.series[m.activeTab]))
			s.WriteString("\n")
			s.WriteString(m.tables[m.activeTab].View())
			s.WriteString("\n\n")
		}

		if m.report != nil {
			s.WriteString(RenderFailures(m.report.Failures()))
			s.WriteString("\n")
		}

		m.writeMessages(&s)
		s.WriteString(HelpStyle.Render("tab/shift+tab: switch symbol | d: download xlsx | Esc: back | q: quit"))
	}

	return s.String()
}

func (m Model) writeMessages(s *strings.Builder) {
	if m.err != nil {
		s.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		s.WriteString("\n\n")
	}

	if m.status != "" {
		s.WriteString(StatusStyle.Render(m.status))
		s.WriteString("\n\n")
	}
}
