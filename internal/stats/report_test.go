package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

func TestWPMSeriesRises(t *testing.T) {
	// Correct keystrokes bunched in the second half: WPM climbs.
	log := []model.KeystrokeEvent{
		{TimestampMs: 0, Correct: true},
		{TimestampMs: 5000, Correct: true},
		{TimestampMs: 5500, Correct: true},
		{TimestampMs: 6000, Correct: true},
		{TimestampMs: 6500, Correct: true},
		{TimestampMs: 7000, Correct: true},
	}
	series := WPMSeries(log, 8000, 4)
	if len(series) != 4 {
		t.Fatalf("expected 4 points, got %d", len(series))
	}
	if series[3] <= series[0] {
		t.Fatalf("expected rising WPM, got %v", series)
	}
}

func TestWPMSeriesDegenerate(t *testing.T) {
	if s := WPMSeries(nil, 0, 10); s != nil {
		t.Fatalf("expected nil for zero duration, got %v", s)
	}
	if s := WPMSeries(nil, 1000, 0); s != nil {
		t.Fatalf("expected nil for zero points, got %v", s)
	}
}

func TestSparklineFlat(t *testing.T) {
	line := Sparkline([]float64{5, 5, 5})
	if len(line) != 3 {
		t.Fatalf("expected 3 chars, got %q", line)
	}
	if line[0] != line[1] || line[1] != line[2] {
		t.Fatalf("expected flat sparkline, got %q", line)
	}
}

func TestRenderRaceResults(t *testing.T) {
	race := model.Race{ID: "r1", Status: model.RaceFinished, MaxPlayers: 2}
	parts := []model.RaceParticipant{
		{UserID: "bob", WPM: 90, Accuracy: 98, Rank: 1, FinishedAt: time.Unix(1, 0)},
		{UserID: "alice", WPM: 70, Accuracy: 95, Rank: 2, FinishedAt: time.Unix(2, 0)},
	}
	var buf bytes.Buffer
	if err := RenderRaceResults(&buf, race, parts); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "bob") || !strings.Contains(out, "alice") {
		t.Fatalf("missing players in output:\n%s", out)
	}
	if strings.Index(out, "bob") > strings.Index(out, "alice") {
		t.Fatalf("expected rank order:\n%s", out)
	}
}

func TestRenderSessionTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderSessionTable(&buf, nil); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No sessions") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Rank", "Player", "WPM"}
	rows := [][]string{
		{"1", "bob", "120"},
		{"2", "alice", "85"},
	}
	rightAlign := map[int]bool{0: true, 2: true}
	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[1] != "   1 bob    120" {
		t.Fatalf("unexpected row: %q", lines[1])
	}
	if lines[2] != "   2 alice   85" {
		t.Fatalf("unexpected row: %q", lines[2])
	}
}
