package model

import "time"

// Hold represents a temporary claim on a seat by one (customer, session)
// pair during checkout. Holds prevent concurrent sessions from grabbing the
// same seat while a customer is choosing a payment method. A hold never
// changes the seat's ledger status; it expires automatically at ExpiresAt.
//
// Fields:
//
//	ID           – primary key identifier.
//	SeatID       – seat being held.
//	ShowtimeID   – showtime for which the seat is held.
//	CustomerID   – customer who owns the hold.
//	SessionToken – opaque session identifier scoping the hold.
//	HoldToken    – unique token returned to the client for reference.
//	LockedAt     – when the hold was created.
//	ExpiresAt    – when the hold expires (LockedAt + TTL).
//	IsActive     – cleared on release, conversion to a booking, or reaping.
type Hold struct {
	ID           uint64    // seat_holds.id
	SeatID       uint64    // seat_holds.seat_id
	ShowtimeID   uint64    // seat_holds.showtime_id
	CustomerID   uint64    // seat_holds.customer_id
	SessionToken string    // seat_holds.session_token
	HoldToken    string    // seat_holds.hold_token
	LockedAt     time.Time // seat_holds.locked_at
	ExpiresAt    time.Time // seat_holds.expires_at
	IsActive     bool      // seat_holds.is_active
}

// Expired reports whether the hold is past its expiry at the given time.
// Readers must apply this predicate even when IsActive is still set,
// because reaping is lazy: the flag alone is never trusted.
func (h *Hold) Expired(now time.Time) bool {
	return !now.Before(h.ExpiresAt)
}

// Live reports whether the hold may still be honoured: active and not
// expired.
func (h *Hold) Live(now time.Time) bool {
	return h.IsActive && !h.Expired(now)
}
