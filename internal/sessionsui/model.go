// Package sessionsui provides the Bubble Tea session browser.
package sessionsui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerace/internal/model"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea session browser. Selecting a row quits
// the program; the caller reads Selected to decide whether to open the
// replay viewer.
type Model struct {
	sessions []model.SessionRecord
	table    table.Model

	width  int
	height int

	selected int64
	chosen   bool
}

// NewModel constructs a browser over the given sessions, newest first.
func NewModel(sessions []model.SessionRecord) *Model {
	m := &Model{sessions: sessions, selected: -1}
	m.table = buildSessionTable(sessions, 0, 1)
	return m
}

// Selected returns the chosen session ID, if any.
func (m *Model) Selected() (int64, bool) {
	return m.selected, m.chosen
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(m.width)
		m.table.SetHeight(maxInt(1, m.height-2))
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			if id, ok := m.cursorSessionID(); ok {
				m.selected = id
				m.chosen = true
				return m, tea.Quit
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.sessions) == 0 {
		return "No sessions found.\n"
	}
	help := headerStyle.Render("enter: replay  up/down: move  q: quit")
	return mutedStyle.Render(m.table.View()) + "\n" + help
}

func (m *Model) cursorSessionID() (int64, bool) {
	row := m.table.SelectedRow()
	if row == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimSpace(row[0]), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func buildSessionTable(sessions []model.SessionRecord, width, height int) table.Model {
	columns := []table.Column{
		{Title: "ID", Width: 5},
		{Title: "When", Width: 16},
		{Title: "User", Width: 12},
		{Title: "WPM", Width: 5},
		{Title: "Acc", Width: 5},
		{Title: "Errors", Width: 6},
		{Title: "Duration", Width: 9},
	}
	rows := make([]table.Row, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, table.Row{
			strconv.FormatInt(s.ID, 10),
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.UserID,
			strconv.Itoa(s.Stats.WPM),
			fmt.Sprintf("%d%%", s.Stats.Accuracy),
			strconv.Itoa(s.Stats.Errors),
			fmt.Sprintf("%.1fs", float64(s.Stats.DurationMs)/1000),
		})
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithHeight(maxInt(1, height)),
		table.WithFocused(true),
	)
	t.SetWidth(width)
	t.SetStyles(sessionTableStyles())
	return t
}

func sessionTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
