package enrollments

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// ErrStateChanged is returned by Decide when the row is no longer in the
// state the caller read.
var ErrStateChanged = errors.New("enrollment state changed concurrently")

// errLiveExists is returned by Create when the partial unique index rejects
// a second live enrollment for the pair.
var errLiveExists = errors.New("live enrollment exists")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id int64) (Enrollment, error) {
	var e Enrollment
	if err := dbpkg.Conn(ctx, r.db).First(&e, id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return Enrollment{}, domainerr.Field(domainerr.ErrNotFound, "enrollment_id")
		}
		return Enrollment{}, fmt.Errorf("get enrollment: %w", err)
	}
	return e, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Enrollment, error) {
	q := dbpkg.Conn(ctx, r.db).Model(&Enrollment{})
	if f.EventID != 0 {
		q = q.Where("event_id = ?", f.EventID)
	}
	if f.ClubID != 0 {
		q = q.Where("club_id = ?", f.ClubID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	var out []Enrollment
	if err := q.Order("registered_at, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return out, nil
}

// HasLive reports whether a pending or approved enrollment exists for the pair.
func (r *Repo) HasLive(ctx context.Context, eventID, clubID int64) (bool, error) {
	var n int64
	err := dbpkg.Conn(ctx, r.db).Model(&Enrollment{}).
		Where("event_id = ? AND club_id = ? AND state <> ?", eventID, clubID, lifecycle.Rejected).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count live enrollments: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) Create(ctx context.Context, e *Enrollment) error {
	if err := dbpkg.Conn(ctx, r.db).Create(e).Error; err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return errLiveExists
		}
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Decide moves a pending enrollment to d.State and stamps who did it.
func (r *Repo) Decide(ctx context.Context, id int64, from lifecycle.State, d Decision) error {
	set := map[string]any{"state": d.State}
	switch d.State {
	case lifecycle.Approved:
		set["approved_by"] = d.By
		set["approved_at"] = d.At.UTC()
	case lifecycle.Rejected:
		set["rejected_by"] = d.By
		set["rejected_at"] = d.At.UTC()
	}
	res := dbpkg.Conn(ctx, r.db).Model(&Enrollment{}).
		Where("id = ? AND state = ?", id, from).
		Updates(set)
	if res.Error != nil {
		return fmt.Errorf("update enrollment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}

// ApprovedClubIDs lists the clubs whose enrollment in eventID is approved.
func (r *Repo) ApprovedClubIDs(ctx context.Context, eventID int64) ([]int64, error) {
	var ids []int64
	err := dbpkg.Conn(ctx, r.db).Model(&Enrollment{}).
		Where("event_id = ? AND state = ?", eventID, lifecycle.Approved).
		Order("club_id").
		Pluck("club_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("approved clubs: %w", err)
	}
	return ids, nil
}
