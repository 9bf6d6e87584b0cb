// Package domainerr holds the validation failures the competition workflow
// reports to its callers. Every failure is a sentinel so callers can use
// errors.Is, and *Error adds the offending field for user-facing messages.
package domainerr

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidTransition      = errors.New("target state is not reachable from the current state")
	ErrInvalidState           = errors.New("operation not permitted in the current state")
	ErrMissingReason          = errors.New("cancellation requires a reason")
	ErrResultRequired         = errors.New("finishing a match requires a result")
	ErrResultAlreadyExists    = errors.New("match already has a result")
	ErrClubNotEnrolled        = errors.New("club has no approved enrollment for the event")
	ErrEventNotOpen           = errors.New("event does not accept enrollments")
	ErrDuplicateEnrollment    = errors.New("club already has an enrollment for the event")
	ErrFutureDateNotAllowed   = errors.New("date must not be in the future")
	ErrTransferAlreadyPending = errors.New("athlete already has a pending transfer")
	ErrSameClub               = errors.New("clubs must differ")

	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
)

var codes = map[error]string{
	ErrInvalidTransition:      "InvalidTransition",
	ErrInvalidState:           "InvalidState",
	ErrMissingReason:          "MissingReason",
	ErrResultRequired:         "ResultRequired",
	ErrResultAlreadyExists:    "ResultAlreadyExists",
	ErrClubNotEnrolled:        "ClubNotEnrolled",
	ErrEventNotOpen:           "EventNotOpen",
	ErrDuplicateEnrollment:    "DuplicateEnrollment",
	ErrFutureDateNotAllowed:   "FutureDateNotAllowed",
	ErrTransferAlreadyPending: "TransferAlreadyPending",
	ErrSameClub:               "SameClub",
	ErrInvalidInput:           "InvalidInput",
	ErrNotFound:               "NotFound",
}

// Error is a validation failure of a given Kind on a given Field.
type Error struct {
	Kind   error
	Field  string
	Detail string
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }

func New(kind error, field, detail string) *Error {
	return &Error{Kind: kind, Field: field, Detail: detail}
}

// Field returns a failure of the given kind without extra detail.
func Field(kind error, field string) *Error {
	return &Error{Kind: kind, Field: field}
}

// Invalid is shorthand for an InvalidInput failure.
func Invalid(field, detail string) *Error {
	return &Error{Kind: ErrInvalidInput, Field: field, Detail: detail}
}

// Code returns the stable kind name of err, or "Internal" for anything that is
// not a workflow failure.
func Code(err error) string {
	for kind, code := range codes {
		if errors.Is(err, kind) {
			return code
		}
	}
	return "Internal"
}

// FieldOf returns the offending field carried by err, if any.
func FieldOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Field
	}
	return ""
}

// HTTPStatus maps a workflow failure to the status code the API answers with.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrMissingReason),
		errors.Is(err, ErrSameClub),
		errors.Is(err, ErrFutureDateNotAllowed),
		errors.Is(err, ErrResultRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrInvalidState),
		errors.Is(err, ErrResultAlreadyExists),
		errors.Is(err, ErrClubNotEnrolled),
		errors.Is(err, ErrEventNotOpen),
		errors.Is(err, ErrDuplicateEnrollment),
		errors.Is(err, ErrTransferAlreadyPending):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
