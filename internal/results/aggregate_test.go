package results

import (
	"errors"
	"testing"

	"github.com/xaitan80/liga-voley/internal/domainerr"
)

func TestAggregate_FiveSetAwayWin(t *testing.T) {
	sets := []Set{{1, 25, 20}, {2, 18, 25}, {3, 25, 23}, {4, 20, 25}, {5, 15, 25}}
	got := Aggregate(sets)
	assertEq(t, got.SetsHome, 2)
	assertEq(t, got.SetsAway, 3)
	assertEq(t, got.Winner, Away)
}

func TestAggregate_IgnoresUnplayedSets(t *testing.T) {
	sets := []Set{{1, 25, 10}, {2, 25, 12}, {3, 25, 19}, {4, 0, 0}, {5, 0, 0}}
	got := Aggregate(sets)
	assertEq(t, got.SetsHome, 3)
	assertEq(t, got.SetsAway, 0)
	assertEq(t, got.Winner, Home)
}

func TestAggregate_NoSetsPlayed(t *testing.T) {
	assertEq(t, Aggregate(nil).Winner, Undetermined)
	assertEq(t, Aggregate([]Set{{1, 0, 0}}).Winner, Undetermined)
}

func TestAggregate_Draw(t *testing.T) {
	got := Aggregate([]Set{{1, 25, 20}, {2, 20, 25}})
	assertEq(t, got.Winner, Draw)

	// a tied set counts as played but is won by nobody
	got = Aggregate([]Set{{1, 10, 10}})
	assertEq(t, got.SetsHome+got.SetsAway, 0)
	assertEq(t, got.Winner, Draw)
}

func TestAggregate_OrderIndependent(t *testing.T) {
	base := []Set{{1, 25, 20}, {2, 18, 25}, {3, 25, 23}, {4, 20, 25}, {5, 0, 0}}
	want := Aggregate(base)
	permute(base, 0, func(p []Set) {
		got := Aggregate(p)
		if got != want {
			t.Fatalf("permutation %v: got %+v want %+v", p, got, want)
		}
		if got.SetsHome+got.SetsAway > len(p) {
			t.Fatalf("won sets exceed total: %+v", got)
		}
	})
}

func TestValidate(t *testing.T) {
	if err := Validate([]Set{{1, 25, 20}, {2, 0, 0}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bad := [][]Set{
		{{0, 25, 20}},
		{{1, 25, 20}, {1, 20, 25}},
		{{1, -1, 25}},
	}
	for _, sets := range bad {
		if err := Validate(sets); !errors.Is(err, domainerr.ErrInvalidInput) {
			t.Errorf("%v: expected InvalidInput, got %v", sets, err)
		}
	}
}

func TestCheckBestOfFive(t *testing.T) {
	ok := [][]Set{
		{{1, 25, 20}, {2, 25, 20}, {3, 25, 20}},
		{{3, 15, 13}, {1, 25, 20}, {2, 20, 25}, {4, 22, 25}, {5, 15, 10}},
		{{1, 25, 20}, {2, 25, 20}, {3, 25, 20}, {4, 0, 0}},
	}
	for _, sets := range ok {
		if err := CheckBestOfFive(sets); err != nil {
			t.Errorf("%v: unexpected error %v", sets, err)
		}
	}
	bad := [][]Set{
		{{1, 25, 20}, {2, 25, 20}},
		{{1, 25, 20}, {2, 25, 20}, {3, 25, 20}, {4, 20, 25}},
		{{1, 25, 20}, {2, 25, 25}, {3, 25, 20}, {4, 25, 20}},
		{{1, 25, 20}, {2, 20, 25}, {3, 25, 20}, {4, 20, 25}, {5, 10, 15}, {6, 15, 10}},
	}
	for _, sets := range bad {
		if err := CheckBestOfFive(sets); !errors.Is(err, domainerr.ErrInvalidInput) {
			t.Errorf("%v: expected InvalidInput, got %v", sets, err)
		}
	}
}

func permute(s []Set, k int, visit func([]Set)) {
	if k == len(s) {
		visit(s)
		return
	}
	for i := k; i < len(s); i++ {
		s[k], s[i] = s[i], s[k]
		permute(s, k+1, visit)
		s[k], s[i] = s[i], s[k]
	}
}

func assertEq[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("got %v want %v", got, want)
	}
}
