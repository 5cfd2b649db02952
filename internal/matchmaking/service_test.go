package matchmaking

import (
	"testing"
	"time"
)

func TestServiceTickDeliversMatch(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	s := NewService(q, DefaultTickInterval)
	matches := s.Subscribe()
	telemetry := s.Subscribe()

	q.AddPlayer("a", "A", 50)
	q.AddPlayer("b", "B", 55)

	if !s.Tick() {
		t.Fatalf("expected tick to produce a match")
	}

	for _, ch := range []<-chan Match{matches, telemetry} {
		select {
		case m := <-ch:
			if len(m.Players) != 2 {
				t.Fatalf("expected 2 players, got %d", len(m.Players))
			}
		default:
			t.Fatalf("expected match delivered to every subscriber")
		}
	}

	if s.Tick() {
		t.Fatalf("expected no further match from drained queue")
	}
}

func TestServicePeriodicTick(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	s := NewService(q, 10*time.Millisecond)
	matches := s.Subscribe()

	q.AddPlayer("a", "A", 50)
	q.AddPlayer("b", "B", 55)

	s.Start()
	defer s.Stop()

	select {
	case m := <-matches:
		if len(m.Players) != 2 {
			t.Fatalf("expected 2 players, got %d", len(m.Players))
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for periodic match")
	}
}

func TestServiceStartStopIdempotent(t *testing.T) {
	s := NewService(NewQueue(testConfig()), 10*time.Millisecond)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()

	// Restartable after a stop.
	s.Start()
	s.Stop()
}

func TestServiceSlowSubscriberDoesNotStallTick(t *testing.T) {
	q, _ := newTestQueue(testConfig())
	s := NewService(q, DefaultTickInterval)
	s.Subscribe() // never drained

	for i := 0; i < 20; i++ {
		q.AddPlayer("a", "A", 50)
		q.AddPlayer("b", "B", 55)
		if !s.Tick() {
			t.Fatalf("tick %d blocked by slow subscriber", i)
		}
	}
}
