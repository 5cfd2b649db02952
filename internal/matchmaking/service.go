package matchmaking

import (
	"sync"
	"time"

	"github.com/verte-zerg/typerace/internal/model"
)

// DefaultTickInterval is how often the service attempts a match.
const DefaultTickInterval = 3 * time.Second

// Match is a group of players the queue paired up, delivered to
// subscribers. The receiver creates the race and its participants.
type Match struct {
	Players   []model.QueueEntry
	MatchedAt time.Time
}

// Service drives a queue with a periodic matching tick. Matching runs on a
// single goroutine, never concurrently with itself, which together with
// the queue's own locking keeps the scan-and-group step atomic.
type Service struct {
	queue    *Queue
	interval time.Duration

	mu      sync.Mutex
	subs    []chan Match
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewService wraps a queue with a tick loop at the given interval.
func NewService(queue *Queue, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Service{queue: queue, interval: interval}
}

// Queue exposes the underlying queue for player admission.
func (s *Service) Queue() *Queue {
	return s.queue
}

// Subscribe returns a channel receiving match results. Multiple consumers
// (race creation, telemetry) can subscribe independently. A consumer that
// falls behind misses matches rather than stalling the tick loop.
func (s *Service) Subscribe() <-chan Match {
	ch := make(chan Match, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Start launches the periodic tick. Calling Start on a running service is
// a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

// Stop halts the tick loop and waits for it to exit. Subscriber channels
// stay open; no matches are delivered after Stop returns.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// Tick runs one matching attempt immediately, delivering any match to
// subscribers. Exposed for direct admission paths and tests.
func (s *Service) Tick() bool {
	players := s.queue.TryMatch()
	if players == nil {
		return false
	}
	m := Match{Players: players, MatchedAt: s.queue.now()}
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- m:
		default:
		}
	}
	return true
}

func (s *Service) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}
