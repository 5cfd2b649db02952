package race

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/verte-zerg/typerace/internal/model"
)

// CountdownLead is how far in the future a started race's StartedAt is
// stamped. Clients receive the state change asynchronously; the lead gives
// all of them a synchronized countdown before input is accepted.
const CountdownLead = 3 * time.Second

// Player count bounds for a race.
const (
	MinPlayers = 2
	MaxPlayers = 8
)

// EventType identifies a race state change.
type EventType string

// Race event types.
const (
	EventRaceCreated        EventType = "race_created"
	EventPlayerJoined       EventType = "player_joined"
	EventPlayerLeft         EventType = "player_left"
	EventRaceStarted        EventType = "race_started"
	EventChallengeAdvanced  EventType = "challenge_advanced"
	EventPlayerFinished     EventType = "player_finished"
	EventRaceFinished       EventType = "race_finished"
)

// Event is a structured race state change delivered to observers.
type Event struct {
	Type         EventType
	Race         model.Race
	UserID       string
	Participants []model.RaceParticipant
}

// Coordinator manages the lifecycle of all live races. Races are
// independent: each one is serialized by its own mutex, so capacity checks
// and rank assignment are read-then-write atomic per race while distinct
// races proceed fully in parallel.
type Coordinator struct {
	mu    sync.RWMutex
	races map[string]*raceState

	obsMu     sync.RWMutex
	observers []func(Event)

	now func() time.Time
}

type raceState struct {
	mu           sync.Mutex
	race         model.Race
	participants map[string]*model.RaceParticipant
	joinOrder    []string
	finished     int
}

// NewCoordinator returns an empty coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		races: map[string]*raceState{},
		now:   time.Now,
	}
}

// Subscribe registers an observer for race events. Observers are invoked
// synchronously, outside any race lock.
func (c *Coordinator) Subscribe(fn func(Event)) {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Coordinator) emit(events ...Event) {
	c.obsMu.RLock()
	observers := c.observers
	c.obsMu.RUnlock()
	for _, ev := range events {
		for _, fn := range observers {
			fn(ev)
		}
	}
}

// Create opens a new race in the waiting state.
func (c *Coordinator) Create(maxPlayers int, challengeRefs []string) (model.Race, error) {
	if maxPlayers < MinPlayers || maxPlayers > MaxPlayers {
		return model.Race{}, fmt.Errorf("max players must be between %d and %d, got %d", MinPlayers, MaxPlayers, maxPlayers)
	}
	if len(challengeRefs) == 0 {
		return model.Race{}, fmt.Errorf("race needs at least one challenge")
	}
	st := &raceState{
		race: model.Race{
			ID:            uuid.NewString(),
			Status:        model.RaceWaiting,
			MaxPlayers:    maxPlayers,
			ChallengeRefs: append([]string(nil), challengeRefs...),
			CreatedAt:     c.now(),
		},
		participants: map[string]*model.RaceParticipant{},
	}
	c.mu.Lock()
	c.races[st.race.ID] = st
	c.mu.Unlock()

	c.emit(Event{Type: EventRaceCreated, Race: st.race})
	return st.race, nil
}

func (c *Coordinator) state(raceID string) (*raceState, error) {
	c.mu.RLock()
	st, ok := c.races[raceID]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("race %s: %w", raceID, ErrNotFound)
	}
	return st, nil
}

// effectiveStatus promotes countdown to in_progress once the stamped start
// instant has passed. Must be called with the race lock held.
func (st *raceState) effectiveStatus(now time.Time) model.RaceStatus {
	if st.race.Status == model.RaceCountdown && !now.Before(st.race.StartedAt) {
		st.race.Status = model.RaceInProgress
	}
	return st.race.Status
}

// Join adds a user to a waiting race with zeroed stats.
func (c *Coordinator) Join(raceID, userID string) error {
	st, err := c.state(raceID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	if status := st.effectiveStatus(c.now()); status != model.RaceWaiting {
		st.mu.Unlock()
		return fmt.Errorf("join in status %s: %w", status, ErrInvalidTransition)
	}
	if _, ok := st.participants[userID]; ok {
		st.mu.Unlock()
		return fmt.Errorf("user %s: %w", userID, ErrDuplicateParticipant)
	}
	if len(st.participants) >= st.race.MaxPlayers {
		st.mu.Unlock()
		return fmt.Errorf("race %s: %w", raceID, ErrCapacityExceeded)
	}
	st.participants[userID] = &model.RaceParticipant{UserID: userID}
	st.joinOrder = append(st.joinOrder, userID)
	ev := Event{Type: EventPlayerJoined, Race: st.race, UserID: userID, Participants: st.participantsLocked()}
	st.mu.Unlock()

	c.emit(ev)
	return nil
}

// Leave removes a user from a race that has not started. Once a race has
// started its participant count is fixed for ranking purposes.
func (c *Coordinator) Leave(raceID, userID string) error {
	st, err := c.state(raceID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	if status := st.effectiveStatus(c.now()); status != model.RaceWaiting {
		st.mu.Unlock()
		return fmt.Errorf("leave in status %s: %w", status, ErrInvalidTransition)
	}
	if _, ok := st.participants[userID]; !ok {
		st.mu.Unlock()
		return fmt.Errorf("user %s: %w", userID, ErrNotAParticipant)
	}
	delete(st.participants, userID)
	st.joinOrder = lo.Without(st.joinOrder, userID)
	ev := Event{Type: EventPlayerLeft, Race: st.race, UserID: userID, Participants: st.participantsLocked()}
	st.mu.Unlock()

	c.emit(ev)
	return nil
}

// Start moves a waiting race into countdown, stamping a StartedAt a fixed
// lead in the future.
func (c *Coordinator) Start(raceID string) error {
	st, err := c.state(raceID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	if status := st.effectiveStatus(c.now()); status != model.RaceWaiting {
		st.mu.Unlock()
		return fmt.Errorf("start in status %s: %w", status, ErrInvalidTransition)
	}
	st.race.Status = model.RaceCountdown
	st.race.StartedAt = c.now().Add(CountdownLead)
	ev := Event{Type: EventRaceStarted, Race: st.race, Participants: st.participantsLocked()}
	st.mu.Unlock()

	c.emit(ev)
	return nil
}

// AdvanceChallenge moves a participant to the next challenge of a
// multi-challenge race. It reports whether the participant has completed
// all challenges; finishing still requires a separate Finish call carrying
// the final measured stats for the whole sequence.
func (c *Coordinator) AdvanceChallenge(raceID, userID string) (completedAll bool, err error) {
	st, err := c.state(raceID)
	if err != nil {
		return false, err
	}
	st.mu.Lock()
	if status := st.effectiveStatus(c.now()); status != model.RaceInProgress {
		st.mu.Unlock()
		return false, fmt.Errorf("advance in status %s: %w", status, ErrInvalidTransition)
	}
	p, ok := st.participants[userID]
	if !ok {
		st.mu.Unlock()
		return false, fmt.Errorf("user %s: %w", userID, ErrNotAParticipant)
	}
	p.CurrentChallengeIndex++
	completedAll = p.CurrentChallengeIndex >= len(st.race.ChallengeRefs)
	ev := Event{Type: EventChallengeAdvanced, Race: st.race, UserID: userID, Participants: st.participantsLocked()}
	st.mu.Unlock()

	c.emit(ev)
	return completedAll, nil
}

// Finish records a participant's final stats. Rank is assigned by finish
// order, not by submitted WPM: the finished-count read and the rank write
// happen under the race lock, so two participants finishing concurrently
// still receive distinct, strictly ordered ranks. When the last
// participant finishes, the race transitions to finished.
func (c *Coordinator) Finish(raceID, userID string, wpm, accuracy int) error {
	st, err := c.state(raceID)
	if err != nil {
		return err
	}
	st.mu.Lock()
	if status := st.effectiveStatus(c.now()); status != model.RaceInProgress {
		st.mu.Unlock()
		return fmt.Errorf("finish in status %s: %w", status, ErrInvalidTransition)
	}
	p, ok := st.participants[userID]
	if !ok {
		st.mu.Unlock()
		return fmt.Errorf("user %s: %w", userID, ErrNotAParticipant)
	}
	if p.Finished() {
		st.mu.Unlock()
		return fmt.Errorf("user %s already finished: %w", userID, ErrInvalidTransition)
	}
	p.WPM = wpm
	p.Accuracy = accuracy
	p.FinishedAt = c.now()
	p.Rank = st.finished + 1
	st.finished++

	events := []Event{{Type: EventPlayerFinished, Race: st.race, UserID: userID, Participants: st.participantsLocked()}}
	if st.finished == len(st.participants) {
		st.race.Status = model.RaceFinished
		events = append(events, Event{Type: EventRaceFinished, Race: st.race, Participants: st.participantsLocked()})
	}
	st.mu.Unlock()

	c.emit(events...)
	return nil
}

// Snapshot returns the race and its participants in join order.
func (c *Coordinator) Snapshot(raceID string) (model.Race, []model.RaceParticipant, error) {
	st, err := c.state(raceID)
	if err != nil {
		return model.Race{}, nil, err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.effectiveStatus(c.now())
	return st.race, st.participantsLocked(), nil
}

// participantsLocked copies participants in join order. Must be called
// with the race lock held.
func (st *raceState) participantsLocked() []model.RaceParticipant {
	return lo.Map(st.joinOrder, func(userID string, _ int) model.RaceParticipant {
		return *st.participants[userID]
	})
}
