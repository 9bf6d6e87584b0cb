// Package lifecycle is the single transition table for every workflow entity.
// Callers never decide reachability themselves; they ask Allowed or Check.
package lifecycle

import (
	"github.com/xaitan80/liga-voley/internal/domainerr"
)

type Kind string

const (
	Event      Kind = "event"
	Match      Kind = "match"
	Enrollment Kind = "enrollment"
	Transfer   Kind = "transfer"
)

type State string

// Evento
const (
	EventPlanned    State = "planned"
	EventInProgress State = "in_progress"
	EventFinished   State = "finished"
	EventCancelled  State = "cancelled"
)

// Partido
const (
	MatchScheduled State = "scheduled"
	MatchInPlay    State = "in_play"
	MatchFinished  State = "finished"
	MatchCancelled State = "cancelled"
)

// Inscripcion and Transferencia share the approval workflow.
const (
	Pending  State = "pending"
	Approved State = "approved"
	Rejected State = "rejected"
)

var transitions = map[Kind]map[State][]State{
	Event: {
		EventPlanned:    {EventInProgress, EventCancelled},
		EventInProgress: {EventFinished, EventCancelled},
		EventFinished:   nil,
		EventCancelled:  nil,
	},
	Match: {
		MatchScheduled: {MatchInPlay, MatchCancelled},
		MatchInPlay:    {MatchFinished, MatchCancelled},
		MatchFinished:  nil,
		MatchCancelled: nil,
	},
	Enrollment: {
		Pending:  {Approved, Rejected},
		Approved: nil,
		Rejected: nil,
	},
	Transfer: {
		Pending:  {Approved, Rejected},
		Approved: nil,
		Rejected: nil,
	},
}

// Allowed returns the states reachable from current. Terminal and unknown
// states yield an empty slice.
func Allowed(kind Kind, current State) []State {
	next := transitions[kind][current]
	out := make([]State, len(next))
	copy(out, next)
	return out
}

// Valid reports whether s is a known state for kind.
func Valid(kind Kind, s State) bool {
	_, ok := transitions[kind][s]
	return ok
}

// Terminal reports whether current has no outgoing transitions.
func Terminal(kind Kind, current State) bool {
	return Valid(kind, current) && len(transitions[kind][current]) == 0
}

// CanTransition reports whether target is reachable from current in one step.
func CanTransition(kind Kind, current, target State) bool {
	for _, s := range transitions[kind][current] {
		if s == target {
			return true
		}
	}
	return false
}

// Check fails with InvalidTransition unless target is a strictly different,
// reachable state.
func Check(kind Kind, current, target State) error {
	if CanTransition(kind, current, target) {
		return nil
	}
	return domainerr.New(domainerr.ErrInvalidTransition, "state", string(current)+" -> "+string(target))
}
