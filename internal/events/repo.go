package events

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/domainerr"
)

// ErrStateChanged is returned by Update when the row left Patch.FromState
// before the write landed.
var ErrStateChanged = errors.New("event state changed concurrently")

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) Get(ctx context.Context, id int64) (Event, error) {
	var e Event
	if err := dbpkg.Conn(ctx, r.db).First(&e, id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return Event{}, domainerr.Field(domainerr.ErrNotFound, "event_id")
		}
		return Event{}, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

func (r *Repo) List(ctx context.Context, f Filter) ([]Event, error) {
	q := dbpkg.Conn(ctx, r.db).Model(&Event{})
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if f.StartsFrom != nil {
		q = q.Where("start_date >= ?", f.StartsFrom.UTC())
	}
	var out []Event
	if err := q.Order("start_date, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, e *Event) error {
	if err := dbpkg.Conn(ctx, r.db).Create(e).Error; err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, id int64, p Patch) error {
	set := map[string]any{}
	if p.State != nil {
		set["state"] = *p.State
	}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Location != nil {
		set["location"] = *p.Location
	}
	if p.Type != nil {
		set["type"] = *p.Type
	}
	if p.StartDate != nil {
		set["start_date"] = p.StartDate.UTC()
	}
	if p.EndDate != nil {
		set["end_date"] = p.EndDate.UTC()
	}
	if p.ActualStart != nil {
		set["actual_start"] = p.ActualStart.UTC()
	}
	if p.ActualEnd != nil {
		set["actual_end"] = p.ActualEnd.UTC()
	}
	if len(set) == 0 {
		return nil
	}
	res := dbpkg.Conn(ctx, r.db).Model(&Event{}).
		Where("id = ? AND state = ?", id, p.FromState).
		Updates(set)
	if res.Error != nil {
		return fmt.Errorf("update event %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStateChanged
	}
	return nil
}
