package model

import "time"

// Booking statuses. A booking is created PENDING, becomes CONFIRMED on the
// external payment-success signal, and may move to CANCELLED from either
// state — never the reverse.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Booking is a customer's committed claim over a fixed set of seats for one
// showtime. The seat set is immutable after creation and the total amount
// is captured at creation time; later seat price changes never affect it.
//
// Fields:
//
//	ID                 – primary key identifier.
//	Reference          – external booking reference (UUID), printed on receipts.
//	CustomerID         – customer who owns the booking.
//	ShowtimeID         – showtime the seats belong to.
//	TotalAmountCents   – sum of the seats' prices at booking time.
//	Status             – PENDING, CONFIRMED or CANCELLED.
//	BookingTime        – creation timestamp.
//	ConfirmedAt        – set when the payment signal confirms the booking.
//	CancelledAt        – set when the booking is cancelled.
//	CancellationReason – recorded on cancellation.
//	SeatIDs            – the immutable seat set, ordered by label.
type Booking struct {
	ID                 uint64     // bookings.id
	Reference          string     // bookings.reference
	CustomerID         uint64     // bookings.customer_id
	ShowtimeID         uint64     // bookings.showtime_id
	TotalAmountCents   uint32     // bookings.total_amount_cents
	Status             string     // bookings.status
	BookingTime        time.Time  // bookings.booking_time
	ConfirmedAt        *time.Time // bookings.confirmed_at (nullable)
	CancelledAt        *time.Time // bookings.cancelled_at (nullable)
	CancellationReason *string    // bookings.cancellation_reason (nullable)
	SeatIDs            []uint64   // booking_seats.seat_id per booking
}

// Cancellable reports whether the booking's current status permits
// cancellation. The pre-showtime cutoff is a separate business rule
// enforced by the orchestrator.
func (b *Booking) Cancellable() bool {
	return b.Status == BookingPending || b.Status == BookingConfirmed
}
