package domainerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_UnwrapsToKind(t *testing.T) {
	err := New(ErrSameClub, "away_club_id", "home and away are both 4")
	if !errors.Is(err, ErrSameClub) {
		t.Fatal("expected errors.Is to match kind")
	}
	wrapped := fmt.Errorf("schedule: %w", err)
	if Code(wrapped) != "SameClub" {
		t.Fatalf("code = %q", Code(wrapped))
	}
	if FieldOf(wrapped) != "away_club_id" {
		t.Fatalf("field = %q", FieldOf(wrapped))
	}
	if got := err.Error(); got != "away_club_id: clubs must differ (home and away are both 4)" {
		t.Fatalf("message = %q", got)
	}
}

func TestCode_Internal(t *testing.T) {
	if Code(errors.New("disk full")) != "Internal" {
		t.Fatal("expected Internal for foreign errors")
	}
	if FieldOf(errors.New("x")) != "" {
		t.Fatal("expected no field")
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		ErrNotFound:               http.StatusNotFound,
		ErrMissingReason:          http.StatusUnprocessableEntity,
		ErrFutureDateNotAllowed:   http.StatusUnprocessableEntity,
		ErrInvalidTransition:      http.StatusConflict,
		ErrTransferAlreadyPending: http.StatusConflict,
		errors.New("boom"):        http.StatusInternalServerError,
	}
	for err, want := range cases {
		if got := HTTPStatus(Field(err, "x")); got != want {
			t.Errorf("%v: got %d want %d", err, got, want)
		}
		if got := HTTPStatus(err); got != want {
			t.Errorf("%v: got %d want %d", err, got, want)
		}
	}
}
