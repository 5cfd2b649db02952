// Package race owns the lifecycle of multiplayer typing races.
package race

import "errors"

// Error kinds surfaced to callers. None are retried internally; retry and
// backoff are a caller concern.
var (
	// ErrInvalidTransition is returned for an action attempted in a
	// status that does not permit it.
	ErrInvalidTransition = errors.New("invalid race transition")

	// ErrCapacityExceeded is returned for a join on a full race.
	ErrCapacityExceeded = errors.New("race is full")

	// ErrDuplicateParticipant is returned for a join by a user already in
	// the race.
	ErrDuplicateParticipant = errors.New("user already joined")

	// ErrNotAParticipant is returned for an advance or finish by a user
	// not in the race.
	ErrNotAParticipant = errors.New("user is not a participant")

	// ErrMissingRequiredField is returned for a finish without both wpm
	// and accuracy.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrNotFound is returned when the referenced race does not exist.
	ErrNotFound = errors.New("race not found")
)
