package engine

import (
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

// CompletionFunc receives the final statistics and the full keystroke log
// when the target text has been typed through.
type CompletionFunc func(stats model.TypingStats, log []model.KeystrokeEvent)

// Engine measures a single typing session against a target text. It is
// pure and single-threaded: all mutation happens via explicit calls from
// one owning context. Invalid calls are no-ops, never errors; that keeps a
// live-input pipeline robust and the engine trivially fuzz-testable.
type Engine struct {
	target []rune

	cursor    int
	log       []model.KeystrokeEvent
	errors    map[int]struct{}
	started   bool
	startedAt time.Time
	lastKeyAt time.Time
	complete  bool
	hintUsed  bool

	onComplete CompletionFunc
	now        func() time.Time
}

// New returns an engine for the given target text.
func New(target string) *Engine {
	return &Engine{
		target: []rune(target),
		errors: map[int]struct{}{},
		now:    time.Now,
	}
}

// OnComplete registers the completion notification. Final statistics are
// computed once, at the moment the cursor reaches the end of the target.
func (e *Engine) OnComplete(fn CompletionFunc) {
	e.onComplete = fn
}

// ApplyKeystroke records one typed character. The first call starts the
// session. The cursor always advances regardless of correctness: errors do
// not block progress ("type through" semantics). Ignored once complete.
func (e *Engine) ApplyKeystroke(r rune) {
	if e.complete || e.cursor >= len(e.target) {
		return
	}
	now := e.now()
	if !e.started {
		e.started = true
		e.startedAt = now
	}
	var latency int64
	if len(e.log) > 0 {
		latency = now.Sub(e.lastKeyAt).Milliseconds()
	}
	expected := e.target[e.cursor]
	correct := r == expected
	e.log = append(e.log, model.KeystrokeEvent{
		TimestampMs: now.Sub(e.startedAt).Milliseconds(),
		Expected:    expected,
		Actual:      r,
		Correct:     correct,
		LatencyMs:   latency,
	})
	if !correct {
		e.errors[e.cursor] = struct{}{}
	}
	e.lastKeyAt = now
	e.cursor++

	if e.cursor == len(e.target) {
		e.complete = true
		stats := ComputeStats(e.log, e.log[len(e.log)-1].TimestampMs)
		if e.onComplete != nil {
			e.onComplete(stats, e.Log())
		}
	}
}

// ApplyBackspace undoes the previous keystroke: cursor, log, and error set
// return to their prior values, so live statistics always reflect the
// current log. No-op before the first keystroke or after completion.
func (e *Engine) ApplyBackspace() {
	if !e.started || e.complete || e.cursor == 0 {
		return
	}
	e.cursor--
	e.log = e.log[:len(e.log)-1]
	delete(e.errors, e.cursor)
}

// RequestHint returns the expected character at the cursor without moving
// it, and flags the session as hint-assisted. Whether a hinted run may
// compete for rank is race policy, not the engine's concern. Returns false
// once complete.
func (e *Engine) RequestHint() (rune, bool) {
	if e.complete || e.cursor >= len(e.target) {
		return 0, false
	}
	e.hintUsed = true
	return e.target[e.cursor], true
}

// Reset discards the whole attempt and returns the engine to its initial
// state. Unlike backspace this is not an undo of one event.
func (e *Engine) Reset() {
	e.cursor = 0
	e.log = nil
	e.errors = map[int]struct{}{}
	e.started = false
	e.startedAt = time.Time{}
	e.lastKeyAt = time.Time{}
	e.complete = false
	e.hintUsed = false
}

// Cursor returns the current cursor position.
func (e *Engine) Cursor() int { return e.cursor }

// Complete reports whether the target has been fully typed.
func (e *Engine) Complete() bool { return e.complete }

// HintUsed reports whether a hint was requested during this attempt.
func (e *Engine) HintUsed() bool { return e.hintUsed }

// ErrorCount returns the number of positions currently marked incorrect.
func (e *Engine) ErrorCount() int { return len(e.errors) }

// Log returns a copy of the keystroke log recorded so far.
func (e *Engine) Log() []model.KeystrokeEvent {
	out := make([]model.KeystrokeEvent, len(e.log))
	copy(out, e.log)
	return out
}

// LiveStats computes statistics for the session as it stands now. Before
// the first keystroke all counters are zero and accuracy is 100.
func (e *Engine) LiveStats() model.TypingStats {
	if !e.started {
		return model.TypingStats{Accuracy: 100}
	}
	if e.complete {
		return ComputeStats(e.log, e.log[len(e.log)-1].TimestampMs)
	}
	return ComputeStats(e.log, e.now().Sub(e.startedAt).Milliseconds())
}
