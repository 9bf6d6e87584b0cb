package lifecycle

import (
	"errors"
	"testing"

	"github.com/xaitan80/liga-voley/internal/domainerr"
)

func TestAllowed_Table(t *testing.T) {
	cases := []struct {
		kind Kind
		from State
		want []State
	}{
		{Event, EventPlanned, []State{EventInProgress, EventCancelled}},
		{Event, EventInProgress, []State{EventFinished, EventCancelled}},
		{Match, MatchScheduled, []State{MatchInPlay, MatchCancelled}},
		{Match, MatchInPlay, []State{MatchFinished, MatchCancelled}},
		{Enrollment, Pending, []State{Approved, Rejected}},
		{Transfer, Pending, []State{Approved, Rejected}},
	}
	for _, tc := range cases {
		got := Allowed(tc.kind, tc.from)
		if len(got) != len(tc.want) {
			t.Fatalf("%s/%s: got %v want %v", tc.kind, tc.from, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("%s/%s: got %v want %v", tc.kind, tc.from, got, tc.want)
			}
		}
	}
}

func TestAllowed_TerminalStatesAreEmpty(t *testing.T) {
	terminal := map[Kind][]State{
		Event:      {EventFinished, EventCancelled},
		Match:      {MatchFinished, MatchCancelled},
		Enrollment: {Approved, Rejected},
		Transfer:   {Approved, Rejected},
	}
	for kind, states := range terminal {
		for _, s := range states {
			if got := Allowed(kind, s); len(got) != 0 {
				t.Errorf("%s/%s: expected no transitions, got %v", kind, s, got)
			}
			if !Terminal(kind, s) {
				t.Errorf("%s/%s: expected terminal", kind, s)
			}
		}
	}
}

func TestAllowed_ReturnsCopy(t *testing.T) {
	got := Allowed(Event, EventPlanned)
	got[0] = EventFinished
	if Allowed(Event, EventPlanned)[0] != EventInProgress {
		t.Fatal("table mutated through returned slice")
	}
}

func TestAllowed_UnknownState(t *testing.T) {
	if got := Allowed(Match, State("paused")); len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
	if Valid(Match, State("paused")) {
		t.Fatal("paused should not be a valid match state")
	}
	if Terminal(Match, State("paused")) {
		t.Fatal("unknown state should not count as terminal")
	}
}

func TestCheck(t *testing.T) {
	if err := Check(Match, MatchScheduled, MatchInPlay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cases := []struct {
		kind     Kind
		from, to State
	}{
		{Match, MatchScheduled, MatchScheduled},
		{Match, MatchScheduled, MatchFinished},
		{Event, EventFinished, EventPlanned},
		{Event, EventCancelled, EventInProgress},
		{Enrollment, Approved, Approved},
		{Transfer, Rejected, Approved},
	}
	for _, tc := range cases {
		err := Check(tc.kind, tc.from, tc.to)
		if !errors.Is(err, domainerr.ErrInvalidTransition) {
			t.Errorf("%s %s->%s: expected InvalidTransition, got %v", tc.kind, tc.from, tc.to, err)
		}
		if domainerr.FieldOf(err) != "state" {
			t.Errorf("expected field state, got %q", domainerr.FieldOf(err))
		}
	}
}
