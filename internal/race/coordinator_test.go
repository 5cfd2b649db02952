package race

import (
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestCoordinator() (*Coordinator, *testClock) {
	c := NewCoordinator()
	clock := &testClock{t: time.Unix(5000, 0)}
	c.now = func() time.Time {
		clock.mu.Lock()
		defer clock.mu.Unlock()
		return clock.t
	}
	return c, clock
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// startedRace creates a race with the given users joined and the countdown
// already elapsed.
func startedRace(t *testing.T, c *Coordinator, clock *testClock, users ...string) model.Race {
	t.Helper()
	r, err := c.Create(MaxPlayers, []string{"text-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for _, u := range users {
		if err := c.Join(r.ID, u); err != nil {
			t.Fatalf("join %s: %v", u, err)
		}
	}
	if err := c.Start(r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	clock.advance(CountdownLead + time.Second)
	return r
}

func TestCreateValidatesPlayers(t *testing.T) {
	c, _ := newTestCoordinator()
	if _, err := c.Create(1, []string{"t"}); err == nil {
		t.Fatalf("expected error for max players below minimum")
	}
	if _, err := c.Create(9, []string{"t"}); err == nil {
		t.Fatalf("expected error for max players above maximum")
	}
	if _, err := c.Create(4, nil); err == nil {
		t.Fatalf("expected error for race without challenges")
	}
}

func TestJoinLeaveWhileWaiting(t *testing.T) {
	c, _ := newTestCoordinator()
	r, err := c.Create(4, []string{"t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := c.Join(r.ID, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := c.Join(r.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := c.Leave(r.ID, "alice"); err != nil {
		t.Fatalf("leave: %v", err)
	}
	_, parts, err := c.Snapshot(r.ID)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(parts) != 1 || parts[0].UserID != "bob" {
		t.Fatalf("unexpected participants: %+v", parts)
	}
}

func TestJoinRejections(t *testing.T) {
	c, _ := newTestCoordinator()
	r, _ := c.Create(2, []string{"t"})

	if err := c.Join(r.ID, "alice"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := c.Join(r.ID, "alice"); !errors.Is(err, ErrDuplicateParticipant) {
		t.Fatalf("expected duplicate participant, got %v", err)
	}
	if err := c.Join(r.ID, "bob"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if err := c.Join(r.ID, "carol"); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected capacity exceeded, got %v", err)
	}
	if err := c.Join("no-such-race", "dave"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStartStampsCountdown(t *testing.T) {
	c, clock := newTestCoordinator()
	r, _ := c.Create(2, []string{"t"})
	_ = c.Join(r.ID, "alice")
	_ = c.Join(r.ID, "bob")

	before := c.now()
	if err := c.Start(r.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	snap, _, _ := c.Snapshot(r.ID)
	if snap.Status != model.RaceCountdown {
		t.Fatalf("expected countdown, got %s", snap.Status)
	}
	if got := snap.StartedAt.Sub(before); got != CountdownLead {
		t.Fatalf("expected StartedAt %v ahead, got %v", CountdownLead, got)
	}

	// Input is accepted only after the stamped instant has passed.
	if err := c.Finish(r.ID, "alice", 80, 97); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition during countdown, got %v", err)
	}
	clock.advance(CountdownLead)
	snap, _, _ = c.Snapshot(r.ID)
	if snap.Status != model.RaceInProgress {
		t.Fatalf("expected in_progress after countdown, got %s", snap.Status)
	}
}

func TestTransitionsAreStrictlyForward(t *testing.T) {
	c, clock := newTestCoordinator()
	r := startedRace(t, c, clock, "alice", "bob")

	if err := c.Start(r.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for start on running race, got %v", err)
	}
	if err := c.Join(r.ID, "carol"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for join on running race, got %v", err)
	}
	if err := c.Leave(r.ID, "alice"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for leave on running race, got %v", err)
	}

	_ = c.Finish(r.ID, "alice", 90, 98)
	_ = c.Finish(r.ID, "bob", 70, 95)

	if err := c.Join(r.ID, "carol"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for join on finished race, got %v", err)
	}
}

func TestFinishRanksByArrivalOrder(t *testing.T) {
	c, clock := newTestCoordinator()
	r := startedRace(t, c, clock, "slow", "fast")

	// The slower typist finishes first and takes rank 1 regardless of WPM.
	if err := c.Finish(r.ID, "slow", 40, 90); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := c.Finish(r.ID, "fast", 120, 99); err != nil {
		t.Fatalf("finish: %v", err)
	}

	snap, parts, _ := c.Snapshot(r.ID)
	if snap.Status != model.RaceFinished {
		t.Fatalf("expected finished race, got %s", snap.Status)
	}
	ranks := map[string]int{}
	for _, p := range parts {
		ranks[p.UserID] = p.Rank
	}
	if ranks["slow"] != 1 || ranks["fast"] != 2 {
		t.Fatalf("unexpected ranks: %v", ranks)
	}
}

func TestFinishRejections(t *testing.T) {
	c, clock := newTestCoordinator()
	r, _ := c.Create(2, []string{"t"})
	_ = c.Join(r.ID, "alice")
	_ = c.Join(r.ID, "bob")

	if err := c.Finish(r.ID, "alice", 50, 90); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition before start, got %v", err)
	}

	_ = c.Start(r.ID)
	clock.advance(CountdownLead + time.Second)

	if err := c.Finish(r.ID, "mallory", 50, 90); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("expected not a participant, got %v", err)
	}
	if err := c.Finish(r.ID, "alice", 50, 90); err != nil {
		t.Fatalf("finish: %v", err)
	}
	if err := c.Finish(r.ID, "alice", 55, 91); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for double finish, got %v", err)
	}
}

func TestAdvanceChallenge(t *testing.T) {
	c, clock := newTestCoordinator()
	r, _ := c.Create(2, []string{"t1", "t2", "t3"})
	_ = c.Join(r.ID, "alice")
	_ = c.Join(r.ID, "bob")

	if _, err := c.AdvanceChallenge(r.ID, "alice"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition before start, got %v", err)
	}

	_ = c.Start(r.ID)
	clock.advance(CountdownLead + time.Second)

	for i := 0; i < 2; i++ {
		done, err := c.AdvanceChallenge(r.ID, "alice")
		if err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if done {
			t.Fatalf("completed all after %d advances", i+1)
		}
	}
	done, err := c.AdvanceChallenge(r.ID, "alice")
	if err != nil {
		t.Fatalf("advance: %v", err)
	}
	if !done {
		t.Fatalf("expected completed-all after final advance")
	}

	// Completing all challenges does not finish the participant.
	_, parts, _ := c.Snapshot(r.ID)
	for _, p := range parts {
		if p.UserID == "alice" && p.Finished() {
			t.Fatalf("advance must not finish the participant")
		}
	}

	if _, err := c.AdvanceChallenge(r.ID, "mallory"); !errors.Is(err, ErrNotAParticipant) {
		t.Fatalf("expected not a participant, got %v", err)
	}
}

func TestConcurrentFinishesGetDistinctRanks(t *testing.T) {
	c, clock := newTestCoordinator()
	users := []string{"u1", "u2", "u3", "u4", "u5", "u6"}
	r := startedRace(t, c, clock, users...)

	var wg sync.WaitGroup
	for _, u := range users {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if err := c.Finish(r.ID, u, 60, 95); err != nil {
				t.Errorf("finish %s: %v", u, err)
			}
		}(u)
	}
	wg.Wait()

	snap, parts, _ := c.Snapshot(r.ID)
	if snap.Status != model.RaceFinished {
		t.Fatalf("expected finished race, got %s", snap.Status)
	}
	ranks := make([]int, 0, len(parts))
	for _, p := range parts {
		ranks = append(ranks, p.Rank)
	}
	sort.Ints(ranks)
	for i, rank := range ranks {
		if rank != i+1 {
			t.Fatalf("ranks not strictly ordered: %v", ranks)
		}
	}
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	c, _ := newTestCoordinator()
	r, _ := c.Create(2, []string{"t"})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := c.Join(r.ID, string(rune('a'+i))); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	if succeeded != 2 {
		t.Fatalf("expected exactly 2 joins to succeed, got %d", succeeded)
	}
	_, parts, _ := c.Snapshot(r.ID)
	if len(parts) != 2 {
		t.Fatalf("participant count exceeded capacity: %d", len(parts))
	}
}

func TestEventsAreEmitted(t *testing.T) {
	c, clock := newTestCoordinator()

	var mu sync.Mutex
	var types []EventType
	c.Subscribe(func(ev Event) {
		mu.Lock()
		types = append(types, ev.Type)
		mu.Unlock()
	})

	r, _ := c.Create(2, []string{"t"})
	_ = c.Join(r.ID, "alice")
	_ = c.Join(r.ID, "bob")
	_ = c.Start(r.ID)
	clock.advance(CountdownLead + time.Second)
	_ = c.Finish(r.ID, "alice", 80, 98)
	_ = c.Finish(r.ID, "bob", 75, 96)

	want := []EventType{
		EventRaceCreated, EventPlayerJoined, EventPlayerJoined,
		EventRaceStarted, EventPlayerFinished, EventPlayerFinished,
		EventRaceFinished,
	}
	mu.Lock()
	defer mu.Unlock()
	if len(types) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(types), types)
	}
	for i, w := range want {
		if types[i] != w {
			t.Fatalf("event %d: got %s, want %s", i, types[i], w)
		}
	}
}
