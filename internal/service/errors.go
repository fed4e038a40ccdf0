// Package service implements the two stateful components of the booking
// core: the hold manager and the booking orchestrator. Every multi-step
// write runs through the transaction coordinator so partial state is
// never observable.
package service

import (
	"errors"
	"fmt"
)

// ErrNoSeats is returned when a hold request names no valid seats.
var ErrNoSeats = errors.New("no seats requested")

// ErrTooManySeats is returned when a booking would exceed the per-booking
// seat ceiling.
var ErrTooManySeats = errors.New("too many seats for one booking")

// ErrSeatUnavailable is returned when a requested seat is not AVAILABLE
// in the ledger or is actively held by another session. The whole request
// fails; no partial holds are created.
var ErrSeatUnavailable = errors.New("seat unavailable")

// ErrNoActiveHolds is returned by booking creation when the session has
// nothing to commit. The caller should treat it as "select seats first,"
// not as a server failure.
var ErrNoActiveHolds = errors.New("no active holds")

// ErrHoldExpired is returned when the session's holds timed out before
// booking creation. The caller must re-select seats.
var ErrHoldExpired = errors.New("hold expired")

// ErrInvalidState is returned when a booking transition is requested from
// a status that does not permit it, including a second cancel.
var ErrInvalidState = errors.New("invalid booking state")

// ErrNotOwner is returned when a customer operates on a booking they do
// not own.
var ErrNotOwner = errors.New("not booking owner")

// ErrTooLate is returned when cancellation is requested inside the
// pre-showtime cutoff window.
var ErrTooLate = errors.New("too late to cancel")

// SeatsUnavailableError carries the ids of the seats that blocked an
// acquire request so the client can show which ones to re-pick. It
// unwraps to ErrSeatUnavailable for errors.Is dispatch.
type SeatsUnavailableError struct {
	SeatIDs []uint64
}

func (e *SeatsUnavailableError) Error() string {
	return fmt.Sprintf("%v: %v", ErrSeatUnavailable, e.SeatIDs)
}

func (e *SeatsUnavailableError) Unwrap() error { return ErrSeatUnavailable }
