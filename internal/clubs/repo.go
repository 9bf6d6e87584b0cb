package clubs

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/domainerr"
)

type Repo struct{ db *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{db: db} }

func (r *Repo) CreateClub(ctx context.Context, c *Club) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return domainerr.Invalid("name", "required")
	}
	if err := dbpkg.Conn(ctx, r.db).Create(c).Error; err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return domainerr.Invalid("name", "club already registered")
		}
		return fmt.Errorf("create club: %w", err)
	}
	return nil
}

func (r *Repo) GetClub(ctx context.Context, id int64) (Club, error) {
	var c Club
	if err := dbpkg.Conn(ctx, r.db).First(&c, id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return Club{}, domainerr.Field(domainerr.ErrNotFound, "club_id")
		}
		return Club{}, fmt.Errorf("get club: %w", err)
	}
	return c, nil
}

func (r *Repo) ListClubs(ctx context.Context) ([]Club, error) {
	var out []Club
	err := dbpkg.Conn(ctx, r.db).Order("name").Find(&out).Error
	return out, err
}

func (r *Repo) CreateAthlete(ctx context.Context, a *Athlete) error {
	a.DocumentID = strings.TrimSpace(a.DocumentID)
	switch {
	case a.DocumentID == "":
		return domainerr.Invalid("document_id", "required")
	case strings.TrimSpace(a.FirstName) == "":
		return domainerr.Invalid("first_name", "required")
	case strings.TrimSpace(a.LastName) == "":
		return domainerr.Invalid("last_name", "required")
	}
	if a.ClubID != nil {
		if _, err := r.GetClub(ctx, *a.ClubID); err != nil {
			return err
		}
	}
	if err := dbpkg.Conn(ctx, r.db).Create(a).Error; err != nil {
		if dbpkg.IsUniqueViolation(err) {
			return domainerr.Invalid("document_id", "athlete already registered")
		}
		return fmt.Errorf("create athlete: %w", err)
	}
	return nil
}

func (r *Repo) GetAthlete(ctx context.Context, id int64) (Athlete, error) {
	var a Athlete
	if err := dbpkg.Conn(ctx, r.db).First(&a, id).Error; err != nil {
		if dbpkg.IsNotFound(err) {
			return Athlete{}, domainerr.Field(domainerr.ErrNotFound, "athlete_id")
		}
		return Athlete{}, fmt.Errorf("get athlete: %w", err)
	}
	return a, nil
}

func (r *Repo) ListAthletes(ctx context.Context, clubID int64) ([]Athlete, error) {
	var out []Athlete
	err := dbpkg.Conn(ctx, r.db).Where("club_id = ?", clubID).Order("last_name, first_name").Find(&out).Error
	return out, err
}
