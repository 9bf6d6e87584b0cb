// Package matches schedules matches between enrolled clubs, drives them
// through play and records their results.
package matches

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
	"github.com/xaitan80/liga-voley/internal/results"
)

type Store interface {
	Get(ctx context.Context, id int64) (Match, error)
	List(ctx context.Context, f Filter) ([]Match, error)
	Create(ctx context.Context, m *Match) error
	Update(ctx context.Context, id int64, p Patch) error
	CreateResult(ctx context.Context, r *Result) error
	GetResult(ctx context.Context, matchID int64) (Result, error)
}

// EnrolledClubs lists the clubs allowed to play in an event.
type EnrolledClubs interface {
	ListEnrolledClubs(ctx context.Context, eventID int64) ([]int64, error)
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	store    Store
	enrolled EnrolledClubs
	tx       TxRunner
	strict   bool
	now      func() time.Time
}

func NewService(store Store, enrolled EnrolledClubs, tx TxRunner) *Service {
	return &Service{store: store, enrolled: enrolled, tx: tx, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithStrictBestOfFive makes RecordResult reject score sheets that are not a
// complete best-of-five match.
func (s *Service) WithStrictBestOfFive(on bool) *Service {
	s.strict = on
	return s
}

func (s *Service) validate(ctx context.Context, in Input) error {
	switch {
	case in.EventID <= 0:
		return domainerr.Invalid("event_id", "required")
	case in.HomeClubID <= 0:
		return domainerr.Invalid("home_club_id", "required")
	case in.AwayClubID <= 0:
		return domainerr.Invalid("away_club_id", "required")
	case in.ScheduledAt.IsZero():
		return domainerr.Invalid("scheduled_at", "required")
	}
	if in.HomeClubID == in.AwayClubID {
		return domainerr.New(domainerr.ErrSameClub, "away_club_id", fmt.Sprintf("home and away are both %d", in.HomeClubID))
	}
	if in.RefereeID != nil && in.AssistantRefereeID != nil && *in.RefereeID == *in.AssistantRefereeID {
		return domainerr.Invalid("assistant_referee_id", "must differ from referee_id")
	}
	enrolled, err := s.enrolled.ListEnrolledClubs(ctx, in.EventID)
	if err != nil {
		return err
	}
	if !slices.Contains(enrolled, in.HomeClubID) {
		return domainerr.New(domainerr.ErrClubNotEnrolled, "home_club_id", fmt.Sprintf("club %d in event %d", in.HomeClubID, in.EventID))
	}
	if !slices.Contains(enrolled, in.AwayClubID) {
		return domainerr.New(domainerr.ErrClubNotEnrolled, "away_club_id", fmt.Sprintf("club %d in event %d", in.AwayClubID, in.EventID))
	}
	return nil
}

// Schedule creates a match between two clubs enrolled in the event.
func (s *Service) Schedule(ctx context.Context, in Input) (Match, error) {
	in.Location = strings.TrimSpace(in.Location)
	if err := s.validate(ctx, in); err != nil {
		return Match{}, err
	}
	m := Match{
		EventID:            in.EventID,
		ScheduledAt:        in.ScheduledAt.UTC(),
		Location:           in.Location,
		HomeClubID:         in.HomeClubID,
		AwayClubID:         in.AwayClubID,
		RefereeID:          in.RefereeID,
		AssistantRefereeID: in.AssistantRefereeID,
		State:              lifecycle.MatchScheduled,
	}
	if err := s.store.Create(ctx, &m); err != nil {
		return Match{}, err
	}
	return m, nil
}

// Reschedule replaces the date, venue, clubs and referees of a match that
// has not started. The event of a match never changes.
func (s *Service) Reschedule(ctx context.Context, id int64, in Input) (Match, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Match{}, err
	}
	if cur.State != lifecycle.MatchScheduled {
		return Match{}, domainerr.New(domainerr.ErrInvalidState, "state", "only scheduled matches can be edited")
	}
	in.EventID = cur.EventID
	in.Location = strings.TrimSpace(in.Location)
	if err := s.validate(ctx, in); err != nil {
		return Match{}, err
	}
	err = s.store.Update(ctx, id, Patch{FromState: lifecycle.MatchScheduled, Schedule: &in})
	if err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Match{}, domainerr.New(domainerr.ErrInvalidState, "state", "match left the scheduled state")
		}
		return Match{}, err
	}
	return s.store.Get(ctx, id)
}

// Transition moves a match to in_play or cancelled. Finishing goes through
// RecordResult, which writes the result in the same transaction.
func (s *Service) Transition(ctx context.Context, id int64, target lifecycle.State, reason string) (Match, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Match{}, err
	}
	if err := lifecycle.Check(lifecycle.Match, cur.State, target); err != nil {
		return Match{}, err
	}
	p := Patch{FromState: cur.State, State: &target}
	switch target {
	case lifecycle.MatchCancelled:
		reason = strings.TrimSpace(reason)
		if reason == "" {
			return Match{}, domainerr.Field(domainerr.ErrMissingReason, "reason")
		}
		p.CancelReason = &reason
	case lifecycle.MatchFinished:
		return Match{}, domainerr.New(domainerr.ErrResultRequired, "sets", "record the result to finish the match")
	case lifecycle.MatchInPlay:
		now := s.now().UTC()
		p.StartedAt = &now
	}
	if err := s.store.Update(ctx, id, p); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Match{}, domainerr.New(domainerr.ErrInvalidTransition, "state", "match state changed concurrently")
		}
		return Match{}, err
	}
	return s.store.Get(ctx, id)
}

// RecordResult finishes an in-play match and stores its result. Either both
// the state change and the result are written or neither is.
func (s *Service) RecordResult(ctx context.Context, matchID int64, in ResultInput, registeredBy int64) (Result, error) {
	cur, err := s.store.Get(ctx, matchID)
	if err != nil {
		return Result{}, err
	}
	if cur.State == lifecycle.MatchFinished {
		return Result{}, domainerr.Field(domainerr.ErrResultAlreadyExists, "match_id")
	}
	if err := lifecycle.Check(lifecycle.Match, cur.State, lifecycle.MatchFinished); err != nil {
		return Result{}, err
	}
	if err := results.Validate(in.Sets); err != nil {
		return Result{}, err
	}
	played := results.PlayedSets(in.Sets)
	if len(played) == 0 {
		return Result{}, domainerr.New(domainerr.ErrResultRequired, "sets", "no set was played")
	}
	if s.strict {
		if err := results.CheckBestOfFive(played); err != nil {
			return Result{}, err
		}
	}
	out := results.Aggregate(played)
	if in.SetsHome != nil && *in.SetsHome != out.SetsHome {
		return Result{}, domainerr.Invalid("sets_home", fmt.Sprintf("sets give %d", out.SetsHome))
	}
	if in.SetsAway != nil && *in.SetsAway != out.SetsAway {
		return Result{}, domainerr.Invalid("sets_away", fmt.Sprintf("sets give %d", out.SetsAway))
	}
	if in.DurationMin != nil && *in.DurationMin < 0 {
		return Result{}, domainerr.Invalid("duration_min", "must not be negative")
	}

	res := Result{
		MatchID:      matchID,
		SetsHome:     out.SetsHome,
		SetsAway:     out.SetsAway,
		Winner:       out.Winner,
		DurationMin:  in.DurationMin,
		Notes:        strings.TrimSpace(in.Notes),
		RegisteredBy: registeredBy,
	}
	for _, set := range played {
		res.Sets = append(res.Sets, ResultSet{Number: set.Number, HomePoints: set.HomePoints, AwayPoints: set.AwayPoints})
	}
	slices.SortFunc(res.Sets, func(a, b ResultSet) int { return a.Number - b.Number })

	finished := lifecycle.MatchFinished
	ended := s.now().UTC()
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Update(ctx, matchID, Patch{FromState: cur.State, State: &finished, EndedAt: &ended}); err != nil {
			return err
		}
		return s.store.CreateResult(ctx, &res)
	})
	switch {
	case err == nil:
		return res, nil
	case errors.Is(err, errResultExists):
		return Result{}, domainerr.Field(domainerr.ErrResultAlreadyExists, "match_id")
	case errors.Is(err, ErrStateChanged):
		if now, gerr := s.store.Get(ctx, matchID); gerr == nil && now.State == lifecycle.MatchFinished {
			return Result{}, domainerr.Field(domainerr.ErrResultAlreadyExists, "match_id")
		}
		return Result{}, domainerr.New(domainerr.ErrInvalidTransition, "state", "match state changed concurrently")
	default:
		return Result{}, err
	}
}

func (s *Service) Get(ctx context.Context, id int64) (Match, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Match, error) {
	if f.State != "" && !lifecycle.Valid(lifecycle.Match, f.State) {
		return nil, domainerr.Invalid("state", "unknown match state")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, domainerr.Invalid("to", "must not be before from")
	}
	return s.store.List(ctx, f)
}

// GetResult returns the result of a match. A match without one yields
// NotFound on field "result".
func (s *Service) GetResult(ctx context.Context, matchID int64) (Result, error) {
	if _, err := s.store.Get(ctx, matchID); err != nil {
		return Result{}, err
	}
	return s.store.GetResult(ctx, matchID)
}
