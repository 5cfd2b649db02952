// Package tui provides the Bubble Tea replay viewer.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/typerace/internal/model"
	"github.com/verte-zerg/typerace/internal/replay"
)

const frameInterval = 50 * time.Millisecond

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
)

type tickMsg time.Time

// Model implements the Bubble Tea replay viewer. It owns no playback logic:
// every keypress and animation frame is forwarded to the player, and View
// renders whatever state the player reports.
type Model struct {
	session model.SessionRecord
	player  *replay.Player
	target  []rune

	width     int
	height    int
	lastFrame time.Time
}

// NewModel constructs a replay viewer for a stored session.
func NewModel(session model.SessionRecord, log []model.KeystrokeEvent) *Model {
	r := replay.New(log, session.Stats.DurationMs)
	return &Model{
		session: session,
		player:  replay.NewPlayer(r),
		target:  []rune(session.TargetText),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return frameTick()
}

func frameTick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		now := time.Time(msg)
		if !m.lastFrame.IsZero() {
			m.player.Tick(now.Sub(m.lastFrame))
		}
		m.lastFrame = now
		return m, frameTick()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeySpace:
			m.player.TogglePlay()
			return m, nil
		case tea.KeyLeft:
			m.player.Skip(-2000)
			return m, nil
		case tea.KeyRight:
			m.player.Skip(2000)
			return m, nil
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				switch r {
				case 'q':
					return m, tea.Quit
				case 's':
					m.player.CycleSpeed()
				case 'e':
					m.seekNextError()
				}
			}
			return m, nil
		default:
			return m, nil
		}
	default:
		return m, nil
	}
}

// seekNextError jumps to the first error cluster after the playback
// position, wrapping to the first cluster when none remain.
func (m *Model) seekNextError() {
	clusters := m.player.Clusters()
	if len(clusters) == 0 {
		return
	}
	cur := m.player.CurrentMs()
	for _, c := range clusters {
		if c.FirstErrorMs > cur {
			m.player.SeekToError(c)
			return
		}
	}
	m.player.SeekToError(clusters[0])
}

// View implements tea.Model.
func (m *Model) View() string {
	if len(m.target) == 0 {
		return ""
	}
	styledRunes := buildStyledRunes(m.target, m.player.Snapshot())
	if m.width == 0 || m.height == 0 {
		return renderStyledRunes(styledRunes)
	}
	contentWidth := int(float64(m.width) * 0.70)
	if contentWidth < 1 {
		contentWidth = 1
	}
	wrapped := wrapStyledRunes(styledRunes, contentWidth)
	content := lipgloss.NewStyle().Width(contentWidth).Render(wrapped)
	if m.player.ErrorSummaryVisible() {
		content += "\n\n" + summaryStyle.Render(m.renderErrorSummary())
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	bodyHeight := m.height - 1
	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) renderFooter() string {
	state := "paused"
	if m.player.Playing() {
		state = "playing"
	}
	stats := m.player.Stats()
	segments := []string{
		fmt.Sprintf("%s / %s", formatMs(m.player.CurrentMs()), formatMs(m.player.TotalMs())),
		fmt.Sprintf("%gx", m.player.Speed()),
		state,
		fmt.Sprintf("%d WPM · %d%%", stats.WPM, stats.Accuracy),
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderErrorSummary() string {
	clusters := m.player.Clusters()
	lines := make([]string, 0, len(clusters)+1)
	lines = append(lines, "Errors:")
	for _, c := range clusters {
		lines = append(lines, fmt.Sprintf("  %.1f%% — %d at %s (press e to jump)", c.PositionPct, c.Count, formatMs(c.FirstErrorMs)))
	}
	return strings.Join(lines, "\n")
}

func formatMs(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	return fmt.Sprintf("%d:%04.1f", ms/60000, float64(ms%60000)/1000)
}
