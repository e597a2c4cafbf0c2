package storage

import (
	"fmt"
	"time"
)

// AttemptState is the lifecycle stage of an attempt.
//   - not started: the team has not unlocked the puzzle yet.
//   - in progress: the team unlocked the puzzle and is solving it.
//   - submitted: the team handed in a solution link.
type AttemptState string

const (
	StateNotStarted AttemptState = "not started"
	StateInProgress AttemptState = "in progress"
	StateSubmitted  AttemptState = "submitted"
)

// StateError reports an illegal attempt transition.
type StateError struct {
	Current  AttemptState
	Expected AttemptState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("attempt is %s; expected it to be %s", e.Current, e.Expected)
}

// Unlock moves the attempt to in progress and starts the timer. Only legal
// from not started.
func (a *Attempt) Unlock(now time.Time) error {
	if a.State != StateNotStarted {
		return &StateError{Current: a.State, Expected: StateNotStarted}
	}
	a.State = StateInProgress
	a.Timer.Start = &now
	return nil
}

// Submit moves the attempt to submitted, stops the timer, freezes the elapsed
// duration and records the solution link. Only legal from in progress.
func (a *Attempt) Submit(link string, now time.Time) error {
	if a.State != StateInProgress {
		return &StateError{Current: a.State, Expected: StateInProgress}
	}
	a.State = StateSubmitted
	a.Timer.End = &now
	a.Timer.Duration = now.Sub(*a.Timer.Start).String()
	a.Link = link
	return nil
}
