package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is returned when a session cannot accept the requested operation.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrInsufficientData indicates the subject dataset cannot produce four distinct options.
	ErrInsufficientData = errors.New("insufficient subject data")
	// ErrAlreadyUnlocked is returned when an achievement is granted twice. Callers treat it as a no-op.
	ErrAlreadyUnlocked = errors.New("achievement already unlocked")
	// ErrPersistence marks a failed durable write or read.
	ErrPersistence = errors.New("persistence failure")
	// ErrProfileNotFound is returned by persistence ports for unknown players.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoActiveSession is returned when a player has not started a game.
	ErrNoActiveSession = errors.New("no active session")
	// ErrInvalidOption indicates a chosen option index outside the question's options.
	ErrInvalidOption = errors.New("option index out of range")
	// ErrUnknownMode and ErrUnknownDifficulty reject unrecognised start parameters.
	ErrUnknownMode       = errors.New("unknown game mode")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// TransitionError describes a rejected state machine operation.
type TransitionError struct {
	Op     string
	Status SessionStatus
	Detail string
}

func (e *TransitionError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: cannot %s while %s: %s", ErrInvalidTransition, e.Op, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: cannot %s while %s", ErrInvalidTransition, e.Op, e.Status)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// PersistenceError wraps a storage failure. It never aborts gameplay.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
