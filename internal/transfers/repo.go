package transfers

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// ErrStateChanged is returned by Decide when the row is no longer pending.
var ErrStateChanged = errors.New("transfer state changed concurrently")

var errPendingExists = errors.New("pending transfer exists")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id int64) (Transfer, error) {
	var t Transfer
	if err := dbpkg.Conn(ctx, r.db).First(&t, id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return Transfer{}, domainerr.Field(domainerr.ErrNotFound, "transfer_id")
		}
		return Transfer{}, fmt.Errorf("get transfer: %w", err)
	}
	return t, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Transfer, error) {
	q := dbpkg.Conn(ctx, r.db).Model(&Transfer{})
	if f.AthleteID != 0 {
		q = q.Where("athlete_id = ?", f.AthleteID)
	}
	if f.ClubID != 0 {
		q = q.Where("origin_club_id = ? OR destination_club_id = ?", f.ClubID, f.ClubID)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	var out []Transfer
	if err := q.Order("transfer_date DESC, id DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	return out, nil
}

// HasPending reports whether the athlete already has a pending transfer.
func (r *Repo) HasPending(ctx context.Context, athleteID int64) (bool, error) {
	var n int64
	err := dbpkg.Conn(ctx, r.db).Model(&Transfer{}).
		Where("athlete_id = ? AND state = ?", athleteID, lifecycle.Pending).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count pending transfers: %w", err)
	}
	return n > 0, nil
}

func (r *Repo) Create(ctx context.Context, t *Transfer) error {
	if err := dbpkg.Conn(ctx, r.db).Create(t).Error; err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return errPendingExists
		}
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

func (r *Repo) Decide(ctx context.Context, id int64, from lifecycle.State, d Decision) error {
	set := map[string]any{"state": d.State}
	switch d.State {
	case lifecycle.Approved:
		set["approved_by"] = d.By
		set["approved_at"] = d.At.UTC()
	case lifecycle.Rejected:
		set["rejected_by"] = d.By
		set["rejected_at"] = d.At.UTC()
		if d.Motive != nil {
			set["rejection_motive"] = *d.Motive
		}
	}
	res := dbpkg.Conn(ctx, r.db).Model(&Transfer{}).
		Where("id = ? AND state = ?", id, from).
		Updates(set)
	if res.Error != nil {
		return fmt.Errorf("update transfer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}
