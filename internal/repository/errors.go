// Package repository defines the storage layer for seats, holds and
// bookings. Sentinel errors declared here let the service layer
// distinguish failure scenarios with errors.Is instead of inspecting
// driver-specific errors.
package repository

import "errors"

// ErrSeatNotFound is returned when a seat id does not exist or does not
// belong to the requested showtime. This is fatal to the enclosing
// operation and is never retried.
var ErrSeatNotFound = errors.New("seat not found")

// ErrSeatConflict is returned by the compare-and-swap transition when a
// concurrent mutation landed first: the row exists but its status or
// version no longer matches what the caller read. Callers must re-read
// and retry or abort, never blindly overwrite.
var ErrSeatConflict = errors.New("seat version conflict")

// ErrInvalidTransition is returned when the requested status move is not
// permitted by the seat state machine, e.g. AVAILABLE directly to BOOKED.
var ErrInvalidTransition = errors.New("invalid seat status transition")

// ErrShowtimeNotFound is returned when the referenced showtime does not
// exist in the catalog tables.
var ErrShowtimeNotFound = errors.New("showtime not found")

// ErrBookingNotFound is returned when a booking id does not exist.
var ErrBookingNotFound = errors.New("booking not found")
