package types

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

// Domain error taxonomy. Handlers recover these at the boundary and map
// them to HTTP statuses with ErrorStatus; anything unrecognized is a 500
// and its detail stays in the server log.
var (
	ErrValidation   = errors.New("invalid request")
	ErrNotFound     = errors.New("resource not found")
	ErrForbidden    = errors.New("access forbidden")
	ErrSlotConflict = errors.New("slot already booked")
	ErrOutOfHours   = errors.New("slot time is outside restaurant hours")
	ErrDuplicate    = errors.New("resource already exists")
	ErrInvalidRange = errors.New("closing hours must be after opening hours")
	ErrInternal     = errors.New("server error")
)

// FromStore folds driver-level errors into the taxonomy. A unique
// violation means a concurrent writer beat the pre-insert existence check.
func FromStore(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrDuplicate
	}
	return err
}

func ErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrOutOfHours),
		errors.Is(err, ErrDuplicate), errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrSlotConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the caller-safe message for err. Internal errors
// never leak their detail to the response body.
func ErrorMessage(err error) string {
	if ErrorStatus(err) == http.StatusInternalServerError {
		return ErrInternal.Error()
	}
	return err.Error()
}
