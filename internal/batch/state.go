package batch

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a batch judgment job.
type State string

const (
	StateCollecting State = "collecting"
	StateSubmitted  State = "submitted"
	StatePolling    State = "polling"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
)

type Event string

const (
	EventSubmitted   Event = "submitted"
	EventPolled      Event = "polled"
	EventDrained     Event = "drained"
	EventDeadline    Event = "deadline"
	EventFailed      Event = "failed"
	EventFetchFailed Event = "fetch_failed"
)

var ErrInvalidTransition = errors.New("invalid batch state transition")

// Terminal reports whether no further polling happens in s.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed || s == StateTimedOut
}

// Transition is the pure state function of the batch lifecycle.
func Transition(s State, e Event) (State, error) {
	switch s {
	case StateCollecting:
		switch e {
		case EventSubmitted:
			return StateSubmitted, nil
		case EventFailed:
			return StateFailed, nil
		}
	case StateSubmitted, StatePolling:
		switch e {
		case EventPolled:
			return StatePolling, nil
		case EventDrained:
			return StateCompleted, nil
		case EventDeadline:
			return StateTimedOut, nil
		case EventFailed:
			return StateFailed, nil
		}
	case StateCompleted:
		// Results are fetched after completion; a failed fetch fails the job.
		if e == EventFetchFailed {
			return StateFailed, nil
		}
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, e, s)
}
