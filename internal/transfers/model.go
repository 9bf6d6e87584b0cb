package transfers

import (
	"time"

	"github.com/xaitan80/liga-voley/internal/lifecycle"
)

// Transfer moves an athlete's membership from one club to another once
// approved.
type Transfer struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	AthleteID         int64           `json:"athlete_id"`
	OriginClubID      int64           `json:"origin_club_id"`
	DestinationClubID int64           `json:"destination_club_id"`
	TransferDate      time.Time       `json:"transfer_date"`
	Motive            string          `json:"motive"`
	RegisteredBy      int64           `json:"registered_by"`
	State             lifecycle.State `json:"state"`
	ApprovedBy        *int64          `json:"approved_by,omitempty"`
	ApprovedAt        *time.Time      `json:"approved_at,omitempty"`
	RejectedBy        *int64          `json:"rejected_by,omitempty"`
	RejectedAt        *time.Time      `json:"rejected_at,omitempty"`
	RejectionMotive   *string         `json:"rejection_motive,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func (Transfer) TableName() string { return "transfers" }

type Input struct {
	AthleteID         int64     `json:"athlete_id"`
	OriginClubID      int64     `json:"origin_club_id"`
	DestinationClubID int64     `json:"destination_club_id"`
	TransferDate      time.Time `json:"transfer_date"`
	Motive            string    `json:"motive"`
}

type Filter struct {
	AthleteID int64
	ClubID    int64
	State     lifecycle.State
}

// Decision is the patch written when a transfer leaves pending.
type Decision struct {
	State  lifecycle.State
	By     int64
	At     time.Time
	Motive *string
}
