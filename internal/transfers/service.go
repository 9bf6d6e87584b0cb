// Package transfers handles requests to move athletes between clubs.
package transfers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xaitan80/liga-voley/internal/clubs"
	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

type Store interface {
	Get(ctx context.Context, id int64) (Transfer, error)
	List(ctx context.Context, f Filter) ([]Transfer, error)
	HasPending(ctx context.Context, athleteID int64) (bool, error)
	Create(ctx context.Context, t *Transfer) error
	Decide(ctx context.Context, id int64, from lifecycle.State, d Decision) error
}

// Registry looks up the athlete and clubs a request refers to.
type Registry interface {
	GetAthlete(ctx context.Context, id int64) (clubs.Athlete, error)
	GetClub(ctx context.Context, id int64) (clubs.Club, error)
}

// Membership moves an athlete between clubs. It must join the transaction
// carried by ctx.
type Membership interface {
	MoveMember(ctx context.Context, athleteID, fromClubID, toClubID int64) error
}

type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	store      Store
	registry   Registry
	membership Membership
	tx         TxRunner
	loc        *time.Location
	now        func() time.Time
}

func NewService(store Store, registry Registry, membership Membership, tx TxRunner, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, registry: registry, membership: membership, tx: tx, loc: loc, now: time.Now}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// day truncates t to the start of its calendar day in the league's zone.
func (s *Service) day(t time.Time) time.Time {
	y, m, d := t.In(s.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, s.loc)
}

// Request files a pending transfer. The date may not lie after today and
// an athlete holds at most one pending transfer.
func (s *Service) Request(ctx context.Context, in Input, registeredBy int64) (Transfer, error) {
	switch {
	case in.AthleteID <= 0:
		return Transfer{}, domainerr.Invalid("athlete_id", "required")
	case in.OriginClubID <= 0:
		return Transfer{}, domainerr.Invalid("origin_club_id", "required")
	case in.DestinationClubID <= 0:
		return Transfer{}, domainerr.Invalid("destination_club_id", "required")
	case in.TransferDate.IsZero():
		return Transfer{}, domainerr.Invalid("transfer_date", "required")
	}
	if in.OriginClubID == in.DestinationClubID {
		return Transfer{}, domainerr.New(domainerr.ErrSameClub, "destination_club_id", fmt.Sprintf("origin and destination are both %d", in.OriginClubID))
	}
	date := s.day(in.TransferDate)
	if today := s.day(s.now()); date.After(today) {
		return Transfer{}, domainerr.New(domainerr.ErrFutureDateNotAllowed, "transfer_date", date.Format(time.DateOnly)+" is after "+today.Format(time.DateOnly))
	}
	if _, err := s.registry.GetAthlete(ctx, in.AthleteID); err != nil {
		return Transfer{}, err
	}
	for _, c := range []struct {
		field string
		id    int64
	}{{"origin_club_id", in.OriginClubID}, {"destination_club_id", in.DestinationClubID}} {
		if _, err := s.registry.GetClub(ctx, c.id); err != nil {
			if errors.Is(err, domainerr.ErrNotFound) {
				return Transfer{}, domainerr.Field(domainerr.ErrNotFound, c.field)
			}
			return Transfer{}, err
		}
	}
	pending, err := s.store.HasPending(ctx, in.AthleteID)
	if err != nil {
		return Transfer{}, err
	}
	if pending {
		return Transfer{}, domainerr.Field(domainerr.ErrTransferAlreadyPending, "athlete_id")
	}
	t := Transfer{
		AthleteID:         in.AthleteID,
		OriginClubID:      in.OriginClubID,
		DestinationClubID: in.DestinationClubID,
		TransferDate:      date.UTC(),
		Motive:            strings.TrimSpace(in.Motive),
		RegisteredBy:      registeredBy,
		State:             lifecycle.Pending,
	}
	if err := s.store.Create(ctx, &t); err != nil {
		if errors.Is(err, errPendingExists) {
			return Transfer{}, domainerr.Field(domainerr.ErrTransferAlreadyPending, "athlete_id")
		}
		return Transfer{}, err
	}
	return t, nil
}

// Approve marks the transfer approved and moves the athlete in one
// transaction. If the move fails the transfer stays pending.
func (s *Service) Approve(ctx context.Context, id, userID int64) (Transfer, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Transfer{}, err
	}
	if err := lifecycle.Check(lifecycle.Transfer, cur.State, lifecycle.Approved); err != nil {
		return Transfer{}, err
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		d := Decision{State: lifecycle.Approved, By: userID, At: s.now()}
		if err := s.store.Decide(ctx, id, cur.State, d); err != nil {
			return err
		}
		if err := s.membership.MoveMember(ctx, cur.AthleteID, cur.OriginClubID, cur.DestinationClubID); err != nil {
			log.Printf("transfer %d: approval rolled back, membership move failed: %v", id, err)
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Transfer{}, domainerr.New(domainerr.ErrInvalidTransition, "state", "transfer was decided concurrently")
		}
		return Transfer{}, err
	}
	return s.store.Get(ctx, id)
}

// Reject closes the transfer. A non-empty motive is stored verbatim.
func (s *Service) Reject(ctx context.Context, id, userID int64, motive string) (Transfer, error) {
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Transfer{}, err
	}
	if err := lifecycle.Check(lifecycle.Transfer, cur.State, lifecycle.Rejected); err != nil {
		return Transfer{}, err
	}
	d := Decision{State: lifecycle.Rejected, By: userID, At: s.now()}
	if motive != "" {
		d.Motive = &motive
	}
	if err := s.store.Decide(ctx, id, cur.State, d); err != nil {
		if errors.Is(err, ErrStateChanged) {
			return Transfer{}, domainerr.New(domainerr.ErrInvalidTransition, "state", "transfer was decided concurrently")
		}
		return Transfer{}, err
	}
	return s.store.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Transfer, error) {
	return s.store.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Transfer, error) {
	if f.State != "" && !lifecycle.Valid(lifecycle.Transfer, f.State) {
		return nil, domainerr.Invalid("state", "unknown transfer state")
	}
	return s.store.List(ctx, f)
}
