package matches

import (
	"time"

	"github.com/xaitan80/liga-voley/internal/lifecycle"
	"github.com/xaitan80/liga-voley/internal/results"
)

type Match struct {
	ID                 int64           `json:"id" gorm:"primaryKey"`
	EventID            int64           `json:"event_id"`
	ScheduledAt        time.Time       `json:"scheduled_at"`
	Location           string          `json:"location"`
	HomeClubID         int64           `json:"home_club_id"`
	AwayClubID         int64           `json:"away_club_id"`
	RefereeID          *int64          `json:"referee_id,omitempty"`
	AssistantRefereeID *int64          `json:"assistant_referee_id,omitempty"`
	State              lifecycle.State `json:"state"`
	CancelReason       *string         `json:"cancel_reason,omitempty"`
	StartedAt          *time.Time      `json:"started_at,omitempty"`
	EndedAt            *time.Time      `json:"ended_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (Match) TableName() string { return "matches" }

// Result is the score sheet of a finished match. Only played sets are kept.
type Result struct {
	ID           int64          `json:"id" gorm:"primaryKey"`
	MatchID      int64          `json:"match_id"`
	SetsHome     int            `json:"sets_home"`
	SetsAway     int            `json:"sets_away"`
	Winner       results.Winner `json:"winner"`
	DurationMin  *int           `json:"duration_min,omitempty"`
	Notes        string         `json:"notes"`
	RegisteredBy int64          `json:"registered_by"`
	CreatedAt    time.Time      `json:"created_at"`
	Sets         []ResultSet    `json:"sets" gorm:"foreignKey:ResultID"`
}

func (Result) TableName() string { return "results" }

type ResultSet struct {
	ID         int64 `json:"-" gorm:"primaryKey"`
	ResultID   int64 `json:"-"`
	Number     int   `json:"number"`
	HomePoints int   `json:"home_points"`
	AwayPoints int   `json:"away_points"`
}

func (ResultSet) TableName() string { return "result_sets" }

// Input carries the schedulable attributes of a match.
type Input struct {
	EventID            int64     `json:"event_id"`
	ScheduledAt        time.Time `json:"scheduled_at"`
	Location           string    `json:"location"`
	HomeClubID         int64     `json:"home_club_id"`
	AwayClubID         int64     `json:"away_club_id"`
	RefereeID          *int64    `json:"referee_id"`
	AssistantRefereeID *int64    `json:"assistant_referee_id"`
}

// ResultInput is what the scorer submits to close a match. SetsHome and
// SetsAway are optional and, when present, must agree with the sets.
type ResultInput struct {
	Sets        []results.Set `json:"sets"`
	DurationMin *int          `json:"duration_min"`
	Notes       string        `json:"notes"`
	SetsHome    *int          `json:"sets_home"`
	SetsAway    *int          `json:"sets_away"`
}

type Filter struct {
	EventID int64
	// ClubID matches either side.
	ClubID int64
	State  lifecycle.State
	From   *time.Time
	To     *time.Time
}

// Patch is applied by the store only while the row is still in FromState.
type Patch struct {
	FromState    lifecycle.State
	State        *lifecycle.State
	Schedule     *Input
	CancelReason *string
	StartedAt    *time.Time
	EndedAt      *time.Time
}
