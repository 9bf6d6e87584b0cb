package clubs

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/domainerr"
)

// Membership moves athletes between clubs. It joins the caller's
// transaction, so a failed move undoes whatever the caller already wrote.
type Membership struct{ db *gorm.DB }

func NewMembership(db *gorm.DB) *Membership { return &Membership{db: db} }

// MoveMember sets the athlete's club to toClubID provided it currently is
// fromClubID.
func (m *Membership) MoveMember(ctx context.Context, athleteID, fromClubID, toClubID int64) error {
	conn := dbpkg.Conn(ctx, m.db)
	var exists int64
	if err := conn.Model(&Club{}).Where("id = ?", toClubID).Count(&exists).Error; err != nil {
		return fmt.Errorf("check destination club: %w", err)
	}
	if exists == 0 {
		return domainerr.Field(domainerr.ErrNotFound, "club_destination_id")
	}
	res := conn.Model(&Athlete{}).
		Where("id = ? AND club_id = ?", athleteID, fromClubID).
		Update("club_id", toClubID)
	if res.Error != nil {
		return fmt.Errorf("move athlete %d: %w", athleteID, res.Error)
	}
	if res.RowsAffected == 0 {
		return domainerr.New(domainerr.ErrInvalidState, "club_origin_id",
			fmt.Sprintf("athlete %d is not a member of club %d", athleteID, fromClubID))
	}
	return nil
}

// ClubOf returns the athlete's current club, 0 when unattached.
func (m *Membership) ClubOf(ctx context.Context, athleteID int64) (int64, error) {
	var a Athlete
	if err := dbpkg.Conn(ctx, m.db).Select("id", "club_id").First(&a, athleteID).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return 0, domainerr.Field(domainerr.ErrNotFound, "athlete_id")
		}
		return 0, fmt.Errorf("athlete club: %w", err)
	}
	if a.ClubID == nil {
		return 0, nil
	}
	return *a.ClubID, nil
}
