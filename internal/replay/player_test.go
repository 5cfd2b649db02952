package replay

import (
	"testing"
	"time"
)

func newTestPlayer(t *testing.T) *Player {
	t.Helper()
	return NewPlayer(New(sampleLog(), 800))
}

func TestPlayerTickAdvancesBySpeed(t *testing.T) {
	p := newTestPlayer(t)
	p.TogglePlay()
	p.Tick(100 * time.Millisecond)
	if p.CurrentMs() != 100 {
		t.Fatalf("expected 100ms at 1x, got %d", p.CurrentMs())
	}
	p.CycleSpeed() // 1.5x
	p.Tick(100 * time.Millisecond)
	if p.CurrentMs() != 250 {
		t.Fatalf("expected 250ms after 1.5x tick, got %d", p.CurrentMs())
	}
}

func TestPlayerPausedTickIsNoop(t *testing.T) {
	p := newTestPlayer(t)
	p.Tick(time.Second)
	if p.CurrentMs() != 0 {
		t.Fatalf("paused player advanced to %d", p.CurrentMs())
	}
}

func TestPlayerAutoPausesAtEnd(t *testing.T) {
	p := newTestPlayer(t)
	p.TogglePlay()
	p.Tick(2 * time.Second)
	if p.CurrentMs() != 800 {
		t.Fatalf("expected clamp to 800, got %d", p.CurrentMs())
	}
	if p.Playing() {
		t.Fatalf("expected auto-pause at end")
	}
	// sampleLog has errors, so the summary is exposed.
	if !p.ErrorSummaryVisible() {
		t.Fatalf("expected error summary at end")
	}
}

func TestPlayerSpeedCycleWraps(t *testing.T) {
	p := newTestPlayer(t)
	seen := []float64{p.Speed()}
	for range Speeds {
		seen = append(seen, p.CycleSpeed())
	}
	if seen[0] != 1 {
		t.Fatalf("expected initial speed 1x, got %v", seen[0])
	}
	if seen[len(seen)-1] != 1 {
		t.Fatalf("expected cycle to wrap back to 1x, got %v", seen[len(seen)-1])
	}
}

func TestPlayerSeekClamps(t *testing.T) {
	p := newTestPlayer(t)
	p.SeekTo(-100)
	if p.CurrentMs() != 0 {
		t.Fatalf("expected clamp at 0, got %d", p.CurrentMs())
	}
	p.Skip(5000)
	if p.CurrentMs() != 800 {
		t.Fatalf("expected clamp at 800, got %d", p.CurrentMs())
	}
	p.Skip(-300)
	if p.CurrentMs() != 500 {
		t.Fatalf("expected 500 after relative skip, got %d", p.CurrentMs())
	}
}

func TestPlayerSeekToError(t *testing.T) {
	p := newTestPlayer(t)
	p.TogglePlay()

	clusters := p.Clusters()
	if len(clusters) == 0 {
		t.Fatalf("expected error clusters in sample log")
	}
	// First error is at 300ms; the lead would land before 0, so clamp.
	p.SeekToError(clusters[0])
	if p.Playing() {
		t.Fatalf("expected pause after error seek")
	}
	if p.CurrentMs() != 0 {
		t.Fatalf("expected clamp at 0, got %d", p.CurrentMs())
	}
}

func TestPlayerRestartAfterEnd(t *testing.T) {
	p := newTestPlayer(t)
	p.TogglePlay()
	p.Tick(2 * time.Second)
	p.TogglePlay()
	if p.CurrentMs() != 0 || !p.Playing() {
		t.Fatalf("expected restart from zero, got t=%d playing=%v", p.CurrentMs(), p.Playing())
	}
	if p.ErrorSummaryVisible() {
		t.Fatalf("expected error summary cleared on restart")
	}
}
