// Package queue defines message payloads exchanged over the message broker
// and the durable queues they travel on.
package queue

// Queue names. Both are declared durable so messages survive broker
// restarts.
const (
	BookingConfirmedQueue = "booking.confirmed"
	BookingCancelledQueue = "booking.cancelled"
)

// BookingConfirmedEvent is published when a booking is confirmed by the
// payment signal. It carries enough information for downstream consumers
// to notify the customer or feed analytics without querying the primary
// database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	Reference        string   `json:"reference"`
	CustomerID       uint64   `json:"customer_id"`
	ShowtimeID       uint64   `json:"showtime_id"`
	MovieTitle       string   `json:"movie_title"`
	HallName         string   `json:"hall_name"`
	StartsAt         string   `json:"starts_at"`
	SeatLabels       []string `json:"seats"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}

// BookingCancelledEvent is published when a booking is cancelled and its
// seats return to the pool.
type BookingCancelledEvent struct {
	BookingID   uint64   `json:"booking_id"`
	Reference   string   `json:"reference"`
	CustomerID  uint64   `json:"customer_id"`
	ShowtimeID  uint64   `json:"showtime_id"`
	MovieTitle  string   `json:"movie_title"`
	SeatLabels  []string `json:"seats"`
	Reason      string   `json:"reason"`
	CancelledAt string   `json:"cancelled_at"`
}
