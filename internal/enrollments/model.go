package enrollments

import (
	"time"

	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// Enrollment is a club's request to take part in an event.
type Enrollment struct {
	ID           int64           `json:"id" gorm:"primaryKey"`
	EventID      int64           `json:"event_id"`
	ClubID       int64           `json:"club_id"`
	RegisteredBy int64           `json:"registered_by"`
	RegisteredAt time.Time       `json:"registered_at"`
	State        lifecycle.State `json:"state"`
	ApprovedBy   *int64          `json:"approved_by,omitempty"`
	ApprovedAt   *time.Time      `json:"approved_at,omitempty"`
	RejectedBy   *int64          `json:"rejected_by,omitempty"`
	RejectedAt   *time.Time      `json:"rejected_at,omitempty"`
}

func (Enrollment) TableName() string { return "enrollments" }

// Filter narrows List. Zero values match everything.
type Filter struct {
	EventID int64
	ClubID  int64
	State   lifecycle.State
}

// Decision is the patch written when an enrollment leaves pending.
type Decision struct {
	State lifecycle.State
	By    int64
	At    time.Time
}
