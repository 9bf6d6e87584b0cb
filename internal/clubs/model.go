package clubs

import "time"

type Club struct {
	ID            int64      `json:"id" gorm:"primaryKey"`
	Name          string     `json:"name"`
	Founded       *time.Time `json:"founded,omitempty"`
	Address       string     `json:"address"`
	Phone         string     `json:"phone"`
	Email         string     `json:"email"`
	Branch        string     `json:"branch"`
	Category      string     `json:"category"`
	ManagerUserID *int64     `json:"manager_user_id,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func (Club) TableName() string { return "clubs" }

// Athlete carries the single club membership that transfers move.
type Athlete struct {
	ID          int64      `json:"id" gorm:"primaryKey"`
	DocumentID  string     `json:"document_id"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	BirthDate   *time.Time `json:"birth_date,omitempty"`
	Gender      string     `json:"gender"`
	Position    string     `json:"position"`
	ShirtNumber int        `json:"shirt_number"`
	ClubID      *int64     `json:"club_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (Athlete) TableName() string { return "athletes" }
