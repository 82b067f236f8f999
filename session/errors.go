package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBuffer is returned when playback or save is requested with nothing recorded
	ErrEmptyBuffer = errors.New("no recorded frames")
	// ErrSettingsLocked is returned when settings are changed during a collection session
	ErrSettingsLocked = errors.New("settings cannot be changed while collecting")
	// ErrInvalidDuration is returned for clip durations outside the allowed range
	ErrInvalidDuration = errors.New("invalid clip duration")
	// ErrInvalidTransition is the base error for operations not allowed in the current state
	ErrInvalidTransition = errors.New("operation not allowed")
	// ErrStopped is returned when the controller is no longer running
	ErrStopped = errors.New("controller stopped")
)

// TransitionError describes an operation rejected by the state machine
type TransitionError struct {
	Operation string
	State     State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s is not allowed while %s", e.Operation, e.State)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

func invalidTransition(operation string, state State) error {
	return &TransitionError{Operation: operation, State: state}
}
