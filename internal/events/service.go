package events

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// Store is the persistence collaborator for events.
type Store interface {
	Get(ctx context.Context, id int64) (Event, error)
	List(ctx context.Context, f Filter) ([]Event, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, id int64, p Patch) error
}

// EnrollmentReader lists the clubs holding an approved enrollment.
type EnrollmentReader interface {
	ApprovedClubIDs(ctx context.Context, eventID int64) ([]int64, error)
}

type Service struct {
	store       Store
	enrollments EnrollmentReader
	now         func() time.Time
}

func NewService(store Store, enrollments EnrollmentReader) *Service {
	return &Service{store: store, enrollments: enrollments, now: time.Now}
}

// WithClock replaces the time source used for lifecycle stamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func validate(in Input) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return domainerr.Invalid("name", "required")
	case !in.Type.Valid():
		return domainerr.Invalid("type", "must be one of tournament, friendly, qualifier, championship")
	case in.StartDate.IsZero():
		return domainerr.Invalid("start_date", "required")
	case in.EndDate.IsZero():
		return domainerr.Invalid("end_date", "required")
	case in.EndDate.Before(in.StartDate):
		return domainerr.Invalid("end_date", "must not be before start_date")
	}
	return nil
}

// Create registers a new event in the planned state.
func (s *Service) Create(ctx context.Context, in Input, organizerID int64) (Event, error) {
	if err := validate(in); err != nil {
		return Event{}, err
	}
	e := Event{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Location:    in.Location,
		Type:        in.Type,
		OrganizerID: organizerID,
		State:       lifecycle.EventPlanned,
	}
	if err := s.store.Create(ctx, &e); err != nil {
		return Event{}, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id int64) (Event, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Event, error) {
	if f.State != "" && !lifecycle.Valid(lifecycle.Event, f.State) {
		return nil, domainerr.Invalid("state", "unknown event state")
	}
	if f.Type != "" && !f.Type.Valid() {
		return nil, domainerr.Invalid("type", "unknown event type")
	}
	return s.store.List(ctx, f)
}

// Update edits the attributes of an event that is still planned. Fields left
// nil keep their value.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Event, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if cur.State != lifecycle.EventPlanned {
		return Event{}, domainerr.New(domainerr.ErrInvalidState, "state", "only planned events can be edited")
	}
	merged := Input{
		Name:        cur.Name,
		Description: cur.Description,
		StartDate:   cur.StartDate,
		EndDate:     cur.EndDate,
		Location:    cur.Location,
		Type:        cur.Type,
	}
	if p.Name != nil {
		merged.Name = strings.TrimSpace(*p.Name)
		p.Name = &merged.Name
	}
	if p.Description != nil {
		merged.Description = *p.Description
	}
	if p.Location != nil {
		merged.Location = *p.Location
	}
	if p.Type != nil {
		merged.Type = *p.Type
	}
	if p.StartDate != nil {
		merged.StartDate = *p.StartDate
	}
	if p.EndDate != nil {
		merged.EndDate = *p.EndDate
	}
	if err := validate(merged); err != nil {
		return Event{}, err
	}
	// state and lifecycle stamps only move through Transition
	p.State, p.ActualStart, p.ActualEnd = nil, nil, nil
	p.FromState = lifecycle.EventPlanned
	if err := s.store.Update(ctx, id, p); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Event{}, domainerr.New(domainerr.ErrInvalidState, "state", "event left the planned state")
		}
		return Event{}, err
	}
	return s.store.Get(ctx, id)
}

// Transition moves the event to target if the guard allows it.
func (s *Service) Transition(ctx context.Context, id int64, target lifecycle.State) (Event, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Event{}, err
	}
	if err := lifecycle.Check(lifecycle.Event, cur.State, target); err != nil {
		return Event{}, err
	}
	now := s.now().UTC()
	p := Patch{FromState: cur.State, State: &target}
	switch target {
	case lifecycle.EventInProgress:
		p.ActualStart = &now
	case lifecycle.EventFinished:
		p.ActualEnd = &now
	}
	if err := s.store.Update(ctx, id, p); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Event{}, domainerr.New(domainerr.ErrInvalidTransition, "state", "event state changed concurrently")
		}
		return Event{}, err
	}
	return s.store.Get(ctx, id)
}

// Cancel is Transition to cancelled. Matches of the event are left as they
// are.
func (s *Service) Cancel(ctx context.Context, id int64) (Event, error) {
	return s.Transition(ctx, id, lifecycle.EventCancelled)
}

// ListEnrolledClubs returns the clubs with an approved enrollment for the
// event, the candidates for match scheduling.
func (s *Service) ListEnrolledClubs(ctx context.Context, eventID int64) ([]int64, error) {
	if _, err := s.store.Get(ctx, eventID); err != nil {
		return nil, err
	}
	return s.enrollments.ApprovedClubIDs(ctx, eventID)
}
