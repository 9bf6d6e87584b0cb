package clubs

import (
	"context"
	"errors"
	"testing"

	"github.com/xaitan80/liga-voley/internal/db/dbtest"
	"github.com/xaitan80/liga-voley/internal/domainerr"
)

func TestMoveMember(t *testing.T) {
	sqlDB, gdb := dbtest.New(t)
	ctx := context.Background()
	from := dbtest.Club(t, sqlDB, "Halcones")
	to := dbtest.Club(t, sqlDB, "Cóndores")
	athlete := dbtest.Athlete(t, sqlDB, "1020304050", from)

	m := NewMembership(gdb)
	if err := m.MoveMember(ctx, athlete, from, to); err != nil {
		t.Fatalf("move: %v", err)
	}
	club, err := m.ClubOf(ctx, athlete)
	if err != nil {
		t.Fatal(err)
	}
	if club != to {
		t.Fatalf("club = %d want %d", club, to)
	}

	// a second move from the old club no longer matches
	err = m.MoveMember(ctx, athlete, from, to)
	if !errors.Is(err, domainerr.ErrInvalidState) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestMoveMember_UnknownDestination(t *testing.T) {
	sqlDB, gdb := dbtest.New(t)
	from := dbtest.Club(t, sqlDB, "Halcones")
	athlete := dbtest.Athlete(t, sqlDB, "99", from)
	err := NewMembership(gdb).MoveMember(context.Background(), athlete, from, 999)
	if !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestCreateAthlete_Validation(t *testing.T) {
	_, gdb := dbtest.New(t)
	repo := NewRepo(gdb)
	ctx := context.Background()

	if err := repo.CreateAthlete(ctx, &Athlete{FirstName: "Ana", LastName: "Gómez"}); !errors.Is(err, domainerr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for missing document, got %v", err)
	}
	missing := int64(42)
	err := repo.CreateAthlete(ctx, &Athlete{DocumentID: "1", FirstName: "Ana", LastName: "Gómez", ClubID: &missing})
	if !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected NotFound club, got %v", err)
	}

	club := Club{Name: "  Halcones  "}
	if err := repo.CreateClub(ctx, &club); err != nil {
		t.Fatal(err)
	}
	if club.Name != "Halcones" || club.ID == 0 {
		t.Fatalf("unexpected club: %+v", club)
	}
	a := Athlete{DocumentID: "1", FirstName: "Ana", LastName: "Gómez", ClubID: &club.ID}
	if err := repo.CreateAthlete(ctx, &a); err != nil {
		t.Fatal(err)
	}
	list, err := repo.ListAthletes(ctx, club.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list = %v, %v", list, err)
	}
	if err := repo.CreateAthlete(ctx, &Athlete{DocumentID: "1", FirstName: "B", LastName: "C"}); !errors.Is(err, domainerr.ErrInvalidInput) {
		t.Fatalf("expected duplicate document to be rejected, got %v", err)
	}
}
