// Package replay reconstructs a finished session's state at any point in
// time from its recorded keystroke log.
package replay

import (
	"github.com/verte-zerg/typerace/internal/engine"
	"github.com/verte-zerg/typerace/internal/model"
)

// Replay answers "what was the state at time T" for an immutable keystroke
// log. It never mutates the log.
type Replay struct {
	log             []model.KeystrokeEvent
	totalDurationMs int64
}

// Snapshot is the reconstructed visual state at a point in time.
type Snapshot struct {
	Cursor    int
	Typed     []rune
	Errors    map[int]bool
	Correct   int
	Incorrect int
}

// New builds a replay over a complete keystroke log.
func New(log []model.KeystrokeEvent, totalDurationMs int64) *Replay {
	return &Replay{log: log, totalDurationMs: totalDurationMs}
}

// TotalDurationMs returns the session's total duration.
func (r *Replay) TotalDurationMs() int64 {
	return r.totalDurationMs
}

// Log returns the underlying keystroke log.
func (r *Replay) Log() []model.KeystrokeEvent {
	return r.log
}

// SnapshotAt reconstructs cursor, typed buffer, and error positions at
// time T. A linear scan is deliberate: logs are hundreds of entries, so
// simplicity wins over a precomputed index.
func (r *Replay) SnapshotAt(tMs int64) Snapshot {
	snap := Snapshot{Errors: map[int]bool{}}
	for _, ev := range r.log {
		if ev.TimestampMs > tMs {
			break
		}
		snap.Typed = append(snap.Typed, ev.Actual)
		if ev.Correct {
			snap.Correct++
		} else {
			snap.Errors[snap.Cursor] = true
			snap.Incorrect++
		}
		snap.Cursor++
	}
	return snap
}

// StatsAt re-derives live statistics at time T using the same formulas the
// measurement engine applies during a session. At T equal to the total
// duration the result matches the stats computed at actual completion.
func (r *Replay) StatsAt(tMs int64) model.TypingStats {
	prefix := r.log
	for i, ev := range r.log {
		if ev.TimestampMs > tMs {
			prefix = r.log[:i]
			break
		}
	}
	return engine.ComputeStats(prefix, tMs)
}
