// Package enrollments manages club enrollments in events and their approval.
package enrollments

import (
	"context"
	"errors"
	"time"

	"github.com/xaitan80/liga-voley/internal/clubs"
	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/events"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

type Store interface {
	Get(ctx context.Context, id int64) (Enrollment, error)
	List(ctx context.Context, f Filter) ([]Enrollment, error)
	HasLive(ctx context.Context, eventID, clubID int64) (bool, error)
	Create(ctx context.Context, e *Enrollment) error
	Decide(ctx context.Context, id int64, from lifecycle.State, d Decision) error
}

type EventReader interface {
	Get(ctx context.Context, id int64) (events.Event, error)
}

type ClubReader interface {
	GetClub(ctx context.Context, id int64) (clubs.Club, error)
}

type Service struct {
	store  Store
	events EventReader
	clubs  ClubReader
	now    func() time.Time
}

func NewService(store Store, ev EventReader, cl ClubReader) *Service {
	return &Service{store: store, events: ev, clubs: cl, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Request files a pending enrollment for the club. The event must still be
// planned and the pair must not already hold a pending or approved one.
func (s *Service) Request(ctx context.Context, eventID, clubID, registeredBy int64) (Enrollment, error) {
	ev, err := s.events.Get(ctx, eventID)
	if err != nil {
		return Enrollment{}, err
	}
	if ev.State != lifecycle.EventPlanned {
		return Enrollment{}, domainerr.New(domainerr.ErrEventNotOpen, "event_id", "event is "+string(ev.State))
	}
	if _, err := s.clubs.GetClub(ctx, clubID); err != nil {
		return Enrollment{}, err
	}
	live, err := s.store.HasLive(ctx, eventID, clubID)
	if err != nil {
		return Enrollment{}, err
	}
	if live {
		return Enrollment{}, domainerr.Field(domainerr.ErrDuplicateEnrollment, "club_id")
	}
	e := Enrollment{
		EventID:      eventID,
		ClubID:       clubID,
		RegisteredBy: registeredBy,
		RegisteredAt: s.now().UTC(),
		State:        lifecycle.Pending,
	}
	if err := s.store.Create(ctx, &e); err != nil {
		if errors.Is(err, errLiveExists) {
			return Enrollment{}, domainerr.Field(domainerr.ErrDuplicateEnrollment, "club_id")
		}
		return Enrollment{}, err
	}
	return e, nil
}

func (s *Service) Approve(ctx context.Context, id, userID int64) (Enrollment, error) {
	return s.decide(ctx, id, lifecycle.Approved, userID)
}

func (s *Service) Reject(ctx context.Context, id, userID int64) (Enrollment, error) {
	return s.decide(ctx, id, lifecycle.Rejected, userID)
}

func (s *Service) decide(ctx context.Context, id int64, target lifecycle.State, userID int64) (Enrollment, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}
	if err := lifecycle.Check(lifecycle.Enrollment, cur.State, target); err != nil {
		return Enrollment{}, err
	}
	err = s.store.Decide(ctx, id, cur.State, Decision{State: target, By: userID, At: s.now()})
	if err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Enrollment{}, domainerr.New(domainerr.ErrInvalidTransition, "state", "enrollment was decided concurrently")
		}
		return Enrollment{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Enrollment, error) {
	return s.store.Get(ctx, id)
}

// ListByEvent returns the event's enrollments, optionally only those in state.
func (s *Service) ListByEvent(ctx context.Context, eventID int64, state lifecycle.State) ([]Enrollment, error) {
	if state != "" && !lifecycle.Valid(lifecycle.Enrollment, state) {
		return nil, domainerr.Invalid("state", "unknown enrollment state")
	}
	return s.store.List(ctx, Filter{EventID: eventID, State: state})
}

func (s *Service) ListByClub(ctx context.Context, clubID int64) ([]Enrollment, error) {
	return s.store.List(ctx, Filter{ClubID: clubID})
}
