package model

import "time"

// Showtime is the slice of the catalog service's data the booking core
// needs: existence, the start time used for the cancellation cutoff, and
// the base price seats are derived from. Provisioning and editing of
// showtimes belongs to the catalog service.
//
// Fields:
//
//	ID             – primary key identifier.
//	MovieTitle     – movie title shown on receipts and events.
//	HallName       – screening hall name.
//	StartsAt       – when the screening begins.
//	EndsAt         – when the screening ends.
//	BasePriceCents – default price for STANDARD seats.
//	Status         – SCHEDULED, CANCELLED or FINISHED.
type Showtime struct {
	ID             uint64    // showtimes.id
	MovieTitle     string    // showtimes.movie_title
	HallName       string    // showtimes.hall_name
	StartsAt       time.Time // showtimes.starts_at
	EndsAt         time.Time // showtimes.ends_at
	BasePriceCents uint32    // showtimes.base_price_cents
	Status         string    // showtimes.status
}
