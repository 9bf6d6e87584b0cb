package matches

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/domainerr"
)

// ErrStateChanged is returned by Update when the row left Patch.FromState.
var ErrStateChanged = errors.New("match state changed concurrently")

// errResultExists is returned by CreateResult when the match already has one.
var errResultExists = errors.New("result exists")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id int64) (Match, error) {
	var m Match
	if err := dbpkg.Conn(ctx, r.db).First(&m, id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return Match{}, domainerr.Field(domainerr.ErrNotFound, "match_id")
		}
		return Match{}, fmt.Errorf("get match: %w", err)
	}
	return m, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Match, error) {
	q := dbpkg.Conn(ctx, r.db).Model(&Match{})
	if f.EventID != 0 {
		q = q.Where("event_id = ?", f.EventID)
	}
	if f.ClubID != 0 {
		q = q.Where("home_club_id = ? OR away_club_id = ?", f.ClubID, f.ClubID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.From != nil {
		q = q.Where("scheduled_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		q = q.Where("scheduled_at < ?", f.To.UTC())
	}
	var out []Match
	if err := q.Order("scheduled_at, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, m *Match) error {
	if err := dbpkg.Conn(ctx, r.db).Create(m).Error; err != nil {
		return fmt.Errorf("create match: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, id int64, p Patch) error {
	set := map[string]any{}
	if p.State != nil {
		set["state"] = *p.State
	}
	if s := p.Schedule; s != nil {
		set["scheduled_at"] = s.ScheduledAt.UTC()
		set["location"] = s.Location
		set["home_club_id"] = s.HomeClubID
		set["away_club_id"] = s.AwayClubID
		set["referee_id"] = s.RefereeID
		set["assistant_referee_id"] = s.AssistantRefereeID
	}
	if p.CancelReason != nil {
		set["cancel_reason"] = *p.CancelReason
	}
	if p.StartedAt != nil {
		set["started_at"] = p.StartedAt.UTC()
	}
	if p.EndedAt != nil {
		set["ended_at"] = p.EndedAt.UTC()
	}
	if len(set) == 0 {
		return nil
	}
	res := dbpkg.Conn(ctx, r.db).Model(&Match{}).
		Where("id = ? AND state = ?", id, p.FromState).
		Updates(set)
	if res.Error != nil {
		return fmt.Errorf("update match %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

// CreateResult inserts the result together with its sets.
func (r *Repo) CreateResult(ctx context.Context, res *Result) error {
	if err := dbpkg.Conn(ctx, r.db).Create(res).Error; err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return errResultExists
		}
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

func (r *Repo) GetResult(ctx context.Context, matchID int64) (Result, error) {
	var res Result
	err := dbpkg.Conn(ctx, r.db).
		Preload("Sets", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Where("match_id = ?", matchID).
		First(&res).Error
	if err != nil {
		if dbpkg.IsNotFound(err) {
			return Result{}, domainerr.Field(domainerr.ErrNotFound, "result")
		}
		return Result{}, fmt.Errorf("get result: %w", err)
	}
	return res, nil
}
