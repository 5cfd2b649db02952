package matchmaking

import (
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testConfig() model.MatchmakingConfig {
	return model.MatchmakingConfig{
		WPMRange:      20,
		MinPlayers:    2,
		MaxPlayers:    4,
		ExpandAfterMs: 10000,
		ExpandStep:    10,
		MaxWPMRange:   60,
	}
}

func newTestQueue(cfg model.MatchmakingConfig) (*Queue, *testClock) {
	q := NewQueue(cfg)
	clock := &testClock{t: time.Unix(9000, 0)}
	q.now = clock.now
	return q, clock
}

func userIDs(players []model.QueueEntry) map[string]bool {
	ids := map[string]bool{}
	for _, p := range players {
		ids[p.UserID] = true
	}
	return ids
}

func TestTryMatchTooFewPlayers(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	if got := q.TryMatch(); got != nil {
		t.Fatalf("expected no match on empty queue, got %v", got)
	}
	q.AddPlayer("solo", "Solo", 60)
	if got := q.TryMatch(); got != nil {
		t.Fatalf("expected no match for a single player, got %v", got)
	}
	if q.Len() != 1 {
		t.Fatalf("failed match must not drain the queue")
	}
}

func TestTryMatchGroupsWithinBand(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	q.AddPlayer("a", "A", 50)
	q.AddPlayer("b", "B", 60)
	q.AddPlayer("c", "C", 200)

	players := q.TryMatch()
	if players == nil {
		t.Fatalf("expected a match")
	}
	ids := userIDs(players)
	if len(ids) != 2 || !ids["a"] || !ids["b"] {
		t.Fatalf("unexpected group: %v", ids)
	}
	// Matched players leave the queue; the outlier stays.
	if q.Len() != 1 {
		t.Fatalf("expected 1 player left in queue, got %d", q.Len())
	}
}

func TestTryMatchRespectsMaxPlayers(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	for i := 0; i < 6; i++ {
		q.AddPlayer(string(rune('a'+i)), "P", 50+i)
	}
	players := q.TryMatch()
	if len(players) != 4 {
		t.Fatalf("expected group capped at max players 4, got %d", len(players))
	}
}

func TestTryMatchPrefersLargestGroup(t *testing.T) {
	// Two players at 40/55 form a pair; three at 100/110/120 form a
	// larger group that must win.
	q, _ := newTestQueue(testConfig())
	q.AddPlayer("low1", "P", 40)
	q.AddPlayer("low2", "P", 55)
	q.AddPlayer("high1", "P", 100)
	q.AddPlayer("high2", "P", 110)
	q.AddPlayer("high3", "P", 120)

	players := q.TryMatch()
	ids := userIDs(players)
	if len(ids) != 3 || !ids["high1"] || !ids["high2"] || !ids["high3"] {
		t.Fatalf("expected the larger high-WPM group, got %v", ids)
	}
}

func TestRangeExpandsWithWaitTime(t *testing.T) {
	q, clock := newTestQueue(testConfig())
	q.AddPlayer("slow", "P", 40)
	q.AddPlayer("fast", "P", 90)

	// 50 WPM apart: no match within the base 20 WPM band.
	if players := q.TryMatch(); players != nil {
		t.Fatalf("expected no match before expansion, got %v", players)
	}

	// After 30s the band has widened by 3 steps to 50 WPM.
	clock.advance(30 * time.Second)
	players := q.TryMatch()
	if players == nil {
		t.Fatalf("expected match after range expansion")
	}
	if len(players) != 2 {
		t.Fatalf("expected pair, got %d players", len(players))
	}
}

func TestRangeExpansionIsCapped(t *testing.T) {
	q, clock := newTestQueue(testConfig())
	q.AddPlayer("slow", "P", 40)
	q.AddPlayer("fast", "P", 140)

	// 100 WPM apart exceeds MaxWPMRange 60 no matter how long the wait.
	clock.advance(10 * time.Minute)
	if players := q.TryMatch(); players != nil {
		t.Fatalf("expected no match beyond capped range, got %v", players)
	}
}

func TestWiderOfTwoRangesAdmits(t *testing.T) {
	q, clock := newTestQueue(testConfig())
	// A long-waiting low-skill player whose band has widened to 50.
	q.AddPlayer("patient", "P", 40)
	clock.advance(30 * time.Second)
	// A fresh player 45 WPM away, own band still 20.
	q.AddPlayer("fresh", "P", 85)

	players := q.TryMatch()
	if players == nil {
		t.Fatalf("expected the patient player's widened band to admit the fresh one")
	}
}

func TestTryMatchDeterministicForSnapshot(t *testing.T) {
	build := func() *Queue {
		q, _ := newTestQueue(testConfig())
		q.AddPlayer("c", "P", 62)
		q.AddPlayer("a", "P", 58)
		q.AddPlayer("b", "P", 60)
		q.AddPlayer("d", "P", 130)
		return q
	}
	first := userIDs(build().TryMatch())
	for i := 0; i < 5; i++ {
		got := userIDs(build().TryMatch())
		if len(got) != len(first) {
			t.Fatalf("non-deterministic group size: %v vs %v", got, first)
		}
		for id := range first {
			if !got[id] {
				t.Fatalf("non-deterministic group: %v vs %v", got, first)
			}
		}
	}
}

func TestRemovePlayerIdempotent(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	q.AddPlayer("a", "P", 50)
	q.RemovePlayer("a")
	q.RemovePlayer("a")
	if q.Len() != 0 {
		t.Fatalf("expected empty queue after removal")
	}
}

func TestAddPlayerReplacesEntry(t *testing.T) {
	q, clock := newTestQueue(testConfig())
	q.AddPlayer("a", "P", 50)
	clock.advance(time.Minute)
	q.AddPlayer("a", "P", 75)
	if q.Len() != 1 {
		t.Fatalf("expected replacement, got %d entries", q.Len())
	}
}
