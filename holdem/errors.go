package holdem

import (
	"errors"
	"fmt"
)

var (
	ErrHandEnded      = errors.New("hand already ended")
	ErrOutOfTurn      = errors.New("action out of turn")
	ErrHandInProgress = errors.New("hand in progress")
	ErrNotDealt       = errors.New("no hand dealt")
	ErrMatchOver      = errors.New("match is over")
	ErrDeckExhausted  = errors.New("deck exhausted")
	ErrRandomSource   = errors.New("random source unavailable")
	ErrInvalidIntent  = errors.New("invalid intent")
)

type InvalidStateError string

func (e InvalidStateError) Error() string { return "invalid state: " + string(e) }

func ErrInvalidState(msg string) error { return InvalidStateError(msg) }

// InvalidIntentError rejects a human intent without touching match state.
type InvalidIntentError struct {
	Reason string
}

func (e *InvalidIntentError) Error() string {
	return fmt.Sprintf("invalid intent: %s", e.Reason)
}

func (e *InvalidIntentError) Unwrap() error { return ErrInvalidIntent }

func invalidIntent(format string, args ...any) error {
	return &InvalidIntentError{Reason: fmt.Sprintf(format, args...)}
}
