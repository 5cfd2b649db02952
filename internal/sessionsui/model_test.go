package sessionsui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/typerace/internal/model"
)

func sampleSessions() []model.SessionRecord {
	return []model.SessionRecord{
		{ID: 2, UserID: "alice", StartedAt: time.Unix(200, 0), Stats: model.TypingStats{WPM: 70, Accuracy: 97, DurationMs: 30000}},
		{ID: 1, UserID: "bob", StartedAt: time.Unix(100, 0), Stats: model.TypingStats{WPM: 55, Accuracy: 92, DurationMs: 42000}},
	}
}

func TestEnterSelectsCursorRow(t *testing.T) {
	m := NewModel(sampleSessions())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	id, ok := m.Selected()
	if !ok || id != 2 {
		t.Fatalf("expected selection of session 2, got %d (%v)", id, ok)
	}
}

func TestQuitWithoutSelection(t *testing.T) {
	m := NewModel(sampleSessions())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := m.Selected(); ok {
		t.Fatalf("expected no selection after quit")
	}
}

func TestEmptyView(t *testing.T) {
	m := NewModel(nil)
	if m.View() != "No sessions found.\n" {
		t.Fatalf("unexpected view: %q", m.View())
	}
}
