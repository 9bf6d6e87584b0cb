package events

import (
	"time"

	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

type Type string

const (
	Tournament   Type = "tournament"
	Friendly     Type = "friendly"
	Qualifier    Type = "qualifier"
	Championship Type = "championship"
)

func (t Type) Valid() bool {
	switch t {
	case Tournament, Friendly, Qualifier, Championship:
		return true
	}
	return false
}

type Event struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Location    string          `json:"location"`
	Type        Type            `json:"type"`
	OrganizerID int64           `json:"organizer_id"`
	State       lifecycle.State `json:"state"`
	ActualStart *time.Time      `json:"actual_start,omitempty"`
	ActualEnd   *time.Time      `json:"actual_end,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

// Input carries the editable attributes of an event.
type Input struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Location    string    `json:"location"`
	Type        Type      `json:"type"`
}

type Filter struct {
	Type  Type
	State lifecycle.State
	// StartsFrom keeps events starting on or after the given instant.
	StartsFrom *time.Time
}

// Patch is a partial update. The store applies it only while the row is
// still in FromState.
type Patch struct {
	FromState   lifecycle.State
	State       *lifecycle.State
	Name        *string
	Description *string
	Location    *string
	Type        *Type
	StartDate   *time.Time
	EndDate     *time.Time
	ActualStart *time.Time
	ActualEnd   *time.Time
}
