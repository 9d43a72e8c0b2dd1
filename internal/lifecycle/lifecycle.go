// Package lifecycle is the state machine for an assessment subject and the
// expiry calculators driven by its reassessment cadence.
//
// The transition table is data: one adjacency map queried by a single
// lookup. The machine never decides when to move; callers consult it as a
// guard before persisting a status change.
package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// State is a subject's lifecycle status.
type State string

const (
	NotStarted State = "not_started"
	InProgress State = "in_progress"
	Completed  State = "completed"
	Stable     State = "stable"
	Expired    State = "expired"
)

// States lists every state in canonical order.
var States = []State{NotStarted, InProgress, Completed, Stable, Expired}

// transitions is the complete set of legal moves. Reaching InProgress from
// Completed, Stable or Expired means starting a new run at version+1.
var transitions = map[State][]State{
	NotStarted: {InProgress},
	InProgress: {Completed},
	Completed:  {Stable, Expired, InProgress},
	Stable:     {Expired, InProgress},
	Expired:    {InProgress},
}

// ErrStaleTransition is matched by StaleTransitionError.
var ErrStaleTransition = errors.New("stale transition")

// StaleTransitionError reports a move that is not in the table.
type StaleTransitionError struct {
	From, To State
}

func (e *StaleTransitionError) Error() string {
	return fmt.Sprintf("transition %s → %s is not allowed", e.From, e.To)
}

func (e *StaleTransitionError) Is(target error) bool {
	return target == ErrStaleTransition
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// ParseState validates a state string.
func ParseState(s string) (State, error) {
	st := State(s)
	if !st.Valid() {
		return "", fmt.Errorf("invalid lifecycle state %q: must be one of: not_started, in_progress, completed, stable, expired", s)
	}
	return st, nil
}

// CanTransition reports whether from → to is a legal move.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition is CanTransition as an error-returning guard.
func Transition(from, to State) error {
	if !CanTransition(from, to) {
		return &StaleTransitionError{From: from, To: to}
	}
	return nil
}

// Next returns the states reachable from s.
func Next(s State) []State {
	next := transitions[s]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// --- Expiry ---

const day = 24 * time.Hour

// DueDate returns lastCompletedAt + frequencyDays. ok is false when the
// subject never expires (nil or non-positive cadence) or has never
// completed a run (zero lastCompletedAt).
func DueDate(lastCompletedAt time.Time, frequencyDays *int) (due time.Time, ok bool) {
	if frequencyDays == nil || *frequencyDays <= 0 || lastCompletedAt.IsZero() {
		return time.Time{}, false
	}
	return lastCompletedAt.Add(time.Duration(*frequencyDays) * day), true
}

// IsExpired reports whether now is past the due date.
func IsExpired(lastCompletedAt time.Time, frequencyDays *int) bool {
	due, ok := DueDate(lastCompletedAt, frequencyDays)
	if !ok {
		return false
	}
	return timeNow().After(due)
}

// DaysUntilDue returns ceil((due − now) / 1 day). Negative means overdue.
// ok is false when there is no due date.
func DaysUntilDue(lastCompletedAt time.Time, frequencyDays *int) (days int, ok bool) {
	due, ok := DueDate(lastCompletedAt, frequencyDays)
	if !ok {
		return 0, false
	}
	remaining := due.Sub(timeNow())
	return int(math.Ceil(remaining.Hours() / 24)), true
}

// Effective derives the status to present for a subject: a completed or
// stable subject past its due date reads as expired. Expiry is never stored
// by this package.
func Effective(stored State, lastCompletedAt time.Time, frequencyDays *int) State {
	if (stored == Completed || stored == Stable) && IsExpired(lastCompletedAt, frequencyDays) {
		return Expired
	}
	return stored
}
