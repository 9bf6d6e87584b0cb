// Package results derives the outcome of a volleyball match from its set
// scores.
package results

import (
	"sort"
	"strconv"

	"github.com/xaitan80/liga-voley/internal/domainerr"
)

type Winner string

const (
	Home         Winner = "home"
	Away         Winner = "away"
	Draw         Winner = "draw"
	Undetermined Winner = "undetermined"
)

// Set is the score of one set.
type Set struct {
	Number     int `json:"number"`
	HomePoints int `json:"home_points"`
	AwayPoints int `json:"away_points"`
}

// Played reports whether at least one side scored in the set.
func (s Set) Played() bool { return s.HomePoints > 0 || s.AwayPoints > 0 }

type Outcome struct {
	SetsHome int    `json:"sets_home"`
	SetsAway int    `json:"sets_away"`
	Winner   Winner `json:"winner"`
}

// Aggregate counts sets won per side. Sets where neither side scored are
// ignored, and so is a tied set.
func Aggregate(sets []Set) Outcome {
	var out Outcome
	played := 0
	for _, s := range sets {
		if !s.Played() {
			continue
		}
		played++
		switch {
		case s.HomePoints > s.AwayPoints:
			out.SetsHome++
		case s.AwayPoints > s.HomePoints:
			out.SetsAway++
		}
	}
	switch {
	case played == 0:
		out.Winner = Undetermined
	case out.SetsHome > out.SetsAway:
		out.Winner = Home
	case out.SetsAway > out.SetsHome:
		out.Winner = Away
	default:
		out.Winner = Draw
	}
	return out
}

// PlayedSets returns the sets in which at least one point was scored.
func PlayedSets(sets []Set) []Set {
	out := make([]Set, 0, len(sets))
	for _, s := range sets {
		if s.Played() {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks the shape of a score sheet: positive unique set numbers and
// non-negative points.
func Validate(sets []Set) error {
	seen := make(map[int]bool, len(sets))
	for i, s := range sets {
		field := "sets[" + strconv.Itoa(i) + "]"
		if s.Number <= 0 {
			return domainerr.Invalid(field+".number", "must be positive")
		}
		if seen[s.Number] {
			return domainerr.Invalid(field+".number", "duplicate set "+strconv.Itoa(s.Number))
		}
		seen[s.Number] = true
		if s.HomePoints < 0 || s.AwayPoints < 0 {
			return domainerr.Invalid(field, "points must not be negative")
		}
	}
	return nil
}

const (
	MaxSets   = 5
	SetsToWin = 3
)

// CheckBestOfFive is the optional precondition for leagues that only accept
// complete best-of-five matches: at most five played sets, one side with
// exactly three, and no set played after the match was decided.
func CheckBestOfFive(sets []Set) error {
	sorted := PlayedSets(sets)
	if len(sorted) > MaxSets {
		return domainerr.Invalid("sets", "more than "+strconv.Itoa(MaxSets)+" sets played")
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Number < sorted[j].Number })

	home, away := 0, 0
	for _, s := range sorted {
		if home == SetsToWin || away == SetsToWin {
			return domainerr.Invalid("sets", "set "+strconv.Itoa(s.Number)+" played after the match was decided")
		}
		switch {
		case s.HomePoints > s.AwayPoints:
			home++
		case s.AwayPoints > s.HomePoints:
			away++
		default:
			return domainerr.Invalid("sets", "set "+strconv.Itoa(s.Number)+" has no winner")
		}
	}
	if home != SetsToWin && away != SetsToWin {
		return domainerr.Invalid("sets", "no side won "+strconv.Itoa(SetsToWin)+" sets")
	}
	return nil
}
