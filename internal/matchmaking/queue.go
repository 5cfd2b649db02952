// Package matchmaking groups waiting players into races by skill.
package matchmaking

import (
	"sort"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/verte-zerg/typerace/internal/model"
)

// DefaultConfig is a sensible grouping configuration: a 20 WPM band that
// widens by 10 WPM every 10 seconds of waiting, up to 100 WPM.
var DefaultConfig = model.MatchmakingConfig{
	WPMRange:      20,
	MinPlayers:    2,
	MaxPlayers:    5,
	ExpandAfterMs: 10000,
	ExpandStep:    10,
	MaxWPMRange:   100,
}

// Queue holds waiting players and groups them into matches. All operations
// take the queue lock, so a TryMatch scan never observes a snapshot being
// mutated underneath it.
type Queue struct {
	mu      sync.Mutex
	entries map[string]model.QueueEntry
	cfg     model.MatchmakingConfig

	now func() time.Time
}

// NewQueue returns an empty queue with the given fixed configuration.
func NewQueue(cfg model.MatchmakingConfig) *Queue {
	return &Queue{
		entries: map[string]model.QueueEntry{},
		cfg:     cfg,
		now:     time.Now,
	}
}

// AddPlayer inserts or replaces a waiting player. Re-adding resets the
// player's wait time.
func (q *Queue) AddPlayer(userID, userName string, averageWPM int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[userID] = model.QueueEntry{
		UserID:     userID,
		UserName:   userName,
		AverageWPM: averageWPM,
		JoinedAt:   q.now(),
	}
}

// RemovePlayer deletes a player if present; idempotent.
func (q *Queue) RemovePlayer(userID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.entries, userID)
}

// Len returns the number of waiting players.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// TryMatch runs the grouping algorithm over the current queue. On success
// the matched players are removed from the queue and returned; the caller
// creates the actual race. Returns nil when no group of at least
// MinPlayers can be formed.
//
// Players are sorted by average WPM and each in turn serves as the group
// anchor. A candidate joins the anchor's group when the WPM gap is within
// the larger of the two players' effective ranges: a long-waiting player's
// widened band must not be negated by a fresh player's still-narrow one.
// The largest valid group wins; ties keep the first found. Anchor order
// over a fixed snapshot makes the outcome deterministic.
func (q *Queue) TryMatch() []model.QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) < q.cfg.MinPlayers {
		return nil
	}
	sorted := lo.Values(q.entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].AverageWPM == sorted[j].AverageWPM {
			return sorted[i].UserID < sorted[j].UserID
		}
		return sorted[i].AverageWPM < sorted[j].AverageWPM
	})

	now := q.now()
	ranges := make([]int, len(sorted))
	for i, e := range sorted {
		ranges[i] = q.effectiveRange(now, e)
	}

	var best []model.QueueEntry
	for i, anchor := range sorted {
		group := []model.QueueEntry{anchor}
		for j := i + 1; j < len(sorted) && len(group) < q.cfg.MaxPlayers; j++ {
			gap := sorted[j].AverageWPM - anchor.AverageWPM
			if gap < 0 {
				gap = -gap
			}
			if gap <= max(ranges[i], ranges[j]) {
				group = append(group, sorted[j])
			}
		}
		if len(group) >= q.cfg.MinPlayers && len(group) > len(best) {
			best = group
		}
	}
	if best == nil {
		return nil
	}
	for _, e := range best {
		delete(q.entries, e.UserID)
	}
	return best
}

// effectiveRange widens a player's WPM band the longer they have waited,
// bounding worst-case wait time even for skill outliers.
func (q *Queue) effectiveRange(now time.Time, e model.QueueEntry) int {
	waited := now.Sub(e.JoinedAt).Milliseconds()
	steps := int64(0)
	if q.cfg.ExpandAfterMs > 0 {
		steps = waited / q.cfg.ExpandAfterMs
	}
	r := q.cfg.WPMRange + int(steps)*q.cfg.ExpandStep
	if r > q.cfg.MaxWPMRange {
		r = q.cfg.MaxWPMRange
	}
	return r
}
