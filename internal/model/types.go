// Package model defines shared data structures.
package model

import "time"

// KeystrokeEvent is one recorded keystroke, immutable once logged.
// Timestamps are milliseconds since session start; insertion order is
// chronological order.
type KeystrokeEvent struct {
	TimestampMs int64
	Expected    rune
	Actual      rune
	Correct     bool
	LatencyMs   int64
}

// LatencyStats describes the inter-key latency distribution of a session.
// The first keystroke carries no meaningful latency and is excluded.
type LatencyStats struct {
	AvgMs    int64
	MinMs    int64
	MaxMs    int64
	StdDevMs int64
	P50Ms    int64
	P95Ms    int64
}

// TypingStats is derived from a keystroke log; it is never stored
// independently of the log it was computed from.
type TypingStats struct {
	WPM        int
	RawWPM     int
	Accuracy   int
	Keystrokes int
	Errors     int
	DurationMs int64
	Latency    LatencyStats
}

// RaceStatus is the lifecycle state of a race. Transitions are strictly
// forward: waiting -> countdown -> in_progress -> finished.
type RaceStatus string

// Race statuses.
const (
	RaceWaiting    RaceStatus = "waiting"
	RaceCountdown  RaceStatus = "countdown"
	RaceInProgress RaceStatus = "in_progress"
	RaceFinished   RaceStatus = "finished"
)

// Race is a synchronized multiplayer contest over shared content.
type Race struct {
	ID            string
	Status        RaceStatus
	MaxPlayers    int
	ChallengeRefs []string
	CreatedAt     time.Time
	StartedAt     time.Time
}

// RaceParticipant is one player's row in a race. Rank is assigned once, in
// finish order, starting at 1; an unfinished participant has no rank.
type RaceParticipant struct {
	UserID                string
	CurrentChallengeIndex int
	WPM                   int
	Accuracy              int
	FinishedAt            time.Time
	Rank                  int
}

// Finished reports whether the participant has submitted final stats.
func (p RaceParticipant) Finished() bool {
	return !p.FinishedAt.IsZero()
}

// QueueEntry is a waiting player in the matchmaking queue.
type QueueEntry struct {
	UserID     string
	UserName   string
	AverageWPM int
	JoinedAt   time.Time
}

// MatchmakingConfig is the fixed grouping configuration; it is never
// mutated at runtime.
type MatchmakingConfig struct {
	WPMRange      int
	MinPlayers    int
	MaxPlayers    int
	ExpandAfterMs int64
	ExpandStep    int
	MaxWPMRange   int
}

// SessionRecord is a persisted typing session. The keystroke log is stored
// alongside it and is the canonical record; the stats here are a cached
// derivation.
type SessionRecord struct {
	ID         int64
	UserID     string
	StartedAt  time.Time
	TargetText string
	HintUsed   bool
	Stats      TypingStats
}
