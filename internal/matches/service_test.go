package matches

import (
	"context"
	"errors"
	"testing"
	"time"

	dbpkg "github.com/xaitan80/liga-voley/internal/db"
	"github.com/xaitan80/liga-voley/internal/db/dbtest"
	"github.com/xaitan80/liga-voley/internal/domainerr"
	"github.com/xaitan80/liga-voley/internal/lifecycle"
	"github.com/xaitan80/liga-voley/internal/results"
)

type enrolledStub map[int64][]int64

func (e enrolledStub) ListEnrolledClubs(_ context.Context, eventID int64) ([]int64, error) {
	ids, ok := e[eventID]
	if !ok {
		return nil, domainerr.Field(domainerr.ErrNotFound, "event_id")
	}
	return ids, nil
}

type fixture struct {
	svc   *Service
	repo  *Repo
	event int64
	home  int64
	away  int64
	other int64
}

func setup(t *testing.T) fixture {
	t.Helper()
	sqlDB, gdb := dbtest.New(t)
	f := fixture{
		repo:  NewRepo(gdb),
		event: dbtest.Event(t, sqlDB, "Liga Nacional"),
		home:  dbtest.Club(t, sqlDB, "Halcones"),
		away:  dbtest.Club(t, sqlDB, "Cóndores"),
		other: dbtest.Club(t, sqlDB, "Pumas"),
	}
	enrolled := enrolledStub{f.event: {f.home, f.away}}
	f.svc = NewService(f.repo, enrolled, dbpkg.NewTxManager(gdb))
	return f
}

func (f fixture) input() Input {
	return Input{
		EventID:     f.event,
		ScheduledAt: time.Date(2025, 6, 7, 15, 0, 0, 0, time.UTC),
		Location:    "Coliseo Menor",
		HomeClubID:  f.home,
		AwayClubID:  f.away,
	}
}

func (f fixture) inPlay(t *testing.T) Match {
	t.Helper()
	ctx := context.Background()
	m, err := f.svc.Schedule(ctx, f.input())
	if err != nil {
		t.Fatal(err)
	}
	m, err = f.svc.Transition(ctx, m.ID, lifecycle.MatchInPlay, "")
	if err != nil {
		t.Fatal(err)
	}
	return m
}

var fiveSets = []results.Set{{Number: 1, HomePoints: 25, AwayPoints: 20}, {Number: 2, HomePoints: 18, AwayPoints: 25}, {Number: 3, HomePoints: 25, AwayPoints: 23}, {Number: 4, HomePoints: 20, AwayPoints: 25}, {Number: 5, HomePoints: 15, AwayPoints: 25}}

func TestSchedule_SameClub(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	in := f.input()
	in.AwayClubID = in.HomeClubID
	_, err := f.svc.Schedule(ctx, in)
	if !errors.Is(err, domainerr.ErrSameClub) {
		t.Fatalf("expected SameClub, got %v", err)
	}
	assertEq(t, domainerr.FieldOf(err), "away_club_id")
	list, _ := f.svc.List(ctx, Filter{})
	assertEq(t, len(list), 0)
}

func TestSchedule_ClubNotEnrolled(t *testing.T) {
	f := setup(t)
	in := f.input()
	in.AwayClubID = f.other
	_, err := f.svc.Schedule(context.Background(), in)
	if !errors.Is(err, domainerr.ErrClubNotEnrolled) {
		t.Fatalf("expected ClubNotEnrolled, got %v", err)
	}
	assertEq(t, domainerr.FieldOf(err), "away_club_id")
}

func TestSchedule_RefereesMustDiffer(t *testing.T) {
	f := setup(t)
	in := f.input()
	ref := int64(4)
	in.RefereeID, in.AssistantRefereeID = &ref, &ref
	if _, err := f.svc.Schedule(context.Background(), in); !errors.Is(err, domainerr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestSchedule_UnknownEvent(t *testing.T) {
	f := setup(t)
	in := f.input()
	in.EventID = 999
	if _, err := f.svc.Schedule(context.Background(), in); !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestReschedule(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m, err := f.svc.Schedule(ctx, f.input())
	if err != nil {
		t.Fatal(err)
	}
	in := f.input()
	in.ScheduledAt = in.ScheduledAt.Add(24 * time.Hour)
	in.HomeClubID, in.AwayClubID = f.away, f.home
	in.Location = "Coliseo Mayor"
	m, err = f.svc.Reschedule(ctx, m.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, m.HomeClubID, f.away)
	assertEq(t, m.Location, "Coliseo Mayor")
	if !m.ScheduledAt.Equal(in.ScheduledAt) {
		t.Fatalf("scheduled_at = %v", m.ScheduledAt)
	}

	in.AwayClubID = in.HomeClubID
	if _, err := f.svc.Reschedule(ctx, m.ID, in); !errors.Is(err, domainerr.ErrSameClub) {
		t.Fatalf("expected SameClub, got %v", err)
	}

	if _, err := f.svc.Transition(ctx, m.ID, lifecycle.MatchInPlay, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Reschedule(ctx, m.ID, f.input()); !errors.Is(err, domainerr.ErrInvalidState) {
		t.Fatalf("expected InvalidState, got %v", err)
	}
}

func TestCancel_RequiresReason(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m, _ := f.svc.Schedule(ctx, f.input())

	if _, err := f.svc.Transition(ctx, m.ID, lifecycle.MatchCancelled, "  "); !errors.Is(err, domainerr.ErrMissingReason) {
		t.Fatalf("expected MissingReason, got %v", err)
	}
	got, _ := f.svc.Get(ctx, m.ID)
	assertEq(t, got.State, lifecycle.MatchScheduled)

	m, err := f.svc.Transition(ctx, m.ID, lifecycle.MatchCancelled, "weather")
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, m.State, lifecycle.MatchCancelled)
	if m.CancelReason == nil || *m.CancelReason != "weather" {
		t.Fatalf("cancel reason = %v", m.CancelReason)
	}
}

func TestTransition_FinishNeedsResult(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.inPlay(t)
	if m.StartedAt == nil {
		t.Fatal("expected started_at")
	}
	if _, err := f.svc.Transition(ctx, m.ID, lifecycle.MatchFinished, ""); !errors.Is(err, domainerr.ErrResultRequired) {
		t.Fatalf("expected ResultRequired, got %v", err)
	}
	s, _ := f.svc.Schedule(ctx, f.input())
	if _, err := f.svc.Transition(ctx, s.ID, lifecycle.MatchFinished, ""); !errors.Is(err, domainerr.ErrInvalidTransition) {
		t.Fatalf("scheduled -> finished: expected InvalidTransition, got %v", err)
	}
}

func TestRecordResult(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.inPlay(t)

	res, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: fiveSets, Notes: "tie-break reñido"}, 11)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, res.SetsHome, 2)
	assertEq(t, res.SetsAway, 3)
	assertEq(t, res.Winner, results.Away)

	got, err := f.svc.GetResult(ctx, m.ID)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, len(got.Sets), 5)
	assertEq(t, got.Sets[4].AwayPoints, 25)
	assertEq(t, got.RegisteredBy, int64(11))

	after, _ := f.svc.Get(ctx, m.ID)
	assertEq(t, after.State, lifecycle.MatchFinished)
	if after.EndedAt == nil {
		t.Fatal("expected ended_at")
	}
}

func TestRecordResult_Twice(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.inPlay(t)
	if _, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: fiveSets}, 1); err != nil {
		t.Fatal(err)
	}
	other := []results.Set{{Number: 1, HomePoints: 25, AwayPoints: 0}, {Number: 2, HomePoints: 25, AwayPoints: 0}, {Number: 3, HomePoints: 25, AwayPoints: 0}}
	_, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: other}, 2)
	if !errors.Is(err, domainerr.ErrResultAlreadyExists) {
		t.Fatalf("expected ResultAlreadyExists, got %v", err)
	}
	got, _ := f.svc.GetResult(ctx, m.ID)
	assertEq(t, got.SetsAway, 3)
	assertEq(t, got.RegisteredBy, int64(1))
}

func TestRecordResult_DropsUnplayedSets(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.inPlay(t)
	sets := []results.Set{{Number: 3, HomePoints: 25, AwayPoints: 19}, {Number: 1, HomePoints: 25, AwayPoints: 10}, {Number: 2, HomePoints: 25, AwayPoints: 12}, {Number: 4, HomePoints: 0, AwayPoints: 0}, {Number: 5, HomePoints: 0, AwayPoints: 0}}
	home := 3
	res, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: sets, SetsHome: &home}, 1)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, len(res.Sets), 3)
	assertEq(t, res.Sets[0].Number, 1)
	assertEq(t, res.Winner, results.Home)
}

func TestRecordResult_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	m := f.inPlay(t)

	if _, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: []results.Set{{Number: 1, HomePoints: 0, AwayPoints: 0}}}, 1); !errors.Is(err, domainerr.ErrResultRequired) {
		t.Fatalf("expected ResultRequired, got %v", err)
	}
	wrong := 3
	if _, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: fiveSets, SetsHome: &wrong}, 1); !errors.Is(err, domainerr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for mismatched sets_home, got %v", err)
	}
	dup := []results.Set{{Number: 1, HomePoints: 25, AwayPoints: 20}, {Number: 1, HomePoints: 25, AwayPoints: 20}}
	if _, err := f.svc.RecordResult(ctx, m.ID, ResultInput{Sets: dup}, 1); !errors.Is(err, domainerr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput for duplicate set, got %v", err)
	}
	// nothing was committed
	got, _ := f.svc.Get(ctx, m.ID)
	assertEq(t, got.State, lifecycle.MatchInPlay)
	if _, err := f.svc.GetResult(ctx, m.ID); !errors.Is(err, domainerr.ErrNotFound) {
		t.Fatalf("expected no result, got %v", err)
	}

	s, _ := f.svc.Schedule(ctx, f.input())
	if _, err := f.svc.RecordResult(ctx, s.ID, ResultInput{Sets: fiveSets}, 1); !errors.Is(err, domainerr.ErrInvalidTransition) {
		t.Fatalf("scheduled match: expected InvalidTransition, got %v", err)
	}
}

func TestRecordResult_PermissiveByDefault(t *testing.T) {
	f := setup(t)
	m := f.inPlay(t)
	res, err := f.svc.RecordResult(context.Background(), m.ID, ResultInput{Sets: []results.Set{{Number: 1, HomePoints: 25, AwayPoints: 20}, {Number: 2, HomePoints: 25, AwayPoints: 22}}}, 1)
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, res.SetsHome, 2)
	assertEq(t, res.Winner, results.Home)
}

func TestRecordResult_StrictBestOfFive(t *testing.T) {
	f := setup(t)
	f.svc.WithStrictBestOfFive(true)
	m := f.inPlay(t)
	_, err := f.svc.RecordResult(context.Background(), m.ID, ResultInput{Sets: []results.Set{{Number: 1, HomePoints: 25, AwayPoints: 20}, {Number: 2, HomePoints: 25, AwayPoints: 22}}}, 1)
	if !errors.Is(err, domainerr.ErrInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
	if _, err := f.svc.RecordResult(context.Background(), m.ID, ResultInput{Sets: fiveSets}, 1); err != nil {
		t.Fatal(err)
	}
}

// failingResults lets the result insert fail after the state update.
type failingResults struct{ *Repo }

func (failingResults) CreateResult(context.Context, *Result) error {
	return errors.New("disk full")
}

func TestRecordResult_RollsBackState(t *testing.T) {
	sqlDB, gdb := dbtest.New(t)
	event := dbtest.Event(t, sqlDB, "Copa")
	home := dbtest.Club(t, sqlDB, "A")
	away := dbtest.Club(t, sqlDB, "B")
	repo := NewRepo(gdb)
	svc := NewService(failingResults{repo}, enrolledStub{event: {home, away}}, dbpkg.NewTxManager(gdb))
	ctx := context.Background()
	m, err := svc.Schedule(ctx, Input{EventID: event, ScheduledAt: time.Now(), HomeClubID: home, AwayClubID: away})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Transition(ctx, m.ID, lifecycle.MatchInPlay, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordResult(ctx, m.ID, ResultInput{Sets: fiveSets}, 1); err == nil {
		t.Fatal("expected error")
	}
	got, _ := repo.Get(ctx, m.ID)
	assertEq(t, got.State, lifecycle.MatchInPlay)
	if got.EndedAt != nil {
		t.Fatal("ended_at leaked out of the rolled back transaction")
	}
}

func TestList_Filters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	a, _ := f.svc.Schedule(ctx, f.input())
	later := f.input()
	later.ScheduledAt = later.ScheduledAt.Add(7 * 24 * time.Hour)
	b, _ := f.svc.Schedule(ctx, later)

	byClub, err := f.svc.List(ctx, Filter{ClubID: f.away})
	if err != nil {
		t.Fatal(err)
	}
	assertEq(t, len(byClub), 2)

	from := a.ScheduledAt.Add(time.Hour)
	upcoming, _ := f.svc.List(ctx, Filter{EventID: f.event, From: &from})
	assertEq(t, len(upcoming), 1)
	assertEq(t, upcoming[0].ID, b.ID)

	to := from
	early, _ := f.svc.List(ctx, Filter{To: &to})
	assertEq(t, len(early), 1)
	assertEq(t, early[0].ID, a.ID)

	none, _ := f.svc.List(ctx, Filter{ClubID: f.other})
	assertEq(t, len(none), 0)
}
