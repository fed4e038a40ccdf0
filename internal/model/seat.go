package model

import "time"

// Seat statuses. A seat is AVAILABLE until a booking is being committed,
// RESERVED while a pending booking owns it, and BOOKED once the booking is
// confirmed. Holds never appear here: a held seat stays AVAILABLE and the
// "held" view is derived from seat_holds at read time.
const (
	SeatAvailable = "AVAILABLE"
	SeatReserved  = "RESERVED"
	SeatBooked    = "BOOKED"
)

// Seat categories affecting price.
const (
	CategoryStandard   = "STANDARD"
	CategoryVIP        = "VIP"
	CategoryAccessible = "ACCESSIBLE"
)

// Seat represents one physical seat for one showtime. Seats are
// instantiated per showtime, so a physical position appears once per
// scheduled screening.
//
// Fields:
//
//	ID          – primary key identifier.
//	ShowtimeID  – showtime to which this seat belongs.
//	RowLabel    – letter designating the row.
//	SeatNumber  – number of the seat within the row.
//	Category    – STANDARD, VIP or ACCESSIBLE; determines the price.
//	PriceCents  – price in cents captured when the grid is created.
//	Status      – AVAILABLE, RESERVED or BOOKED.
//	Version     – incremented on every status-changing write; status and
//	              version only change together via the ledger's
//	              compare-and-swap transition.
type Seat struct {
	ID         uint64    // seats.id
	ShowtimeID uint64    // seats.showtime_id
	RowLabel   string    // seats.row_label
	SeatNumber uint32    // seats.seat_number
	Category   string    // seats.category
	PriceCents uint32    // seats.price_cents
	Status     string    // seats.status
	Version    uint32    // seats.version
	CreatedAt  time.Time // seats.created_at
	UpdatedAt  time.Time // seats.updated_at
}

// Label returns the human-readable seat label, e.g. "A7".
func (s *Seat) Label() string {
	return s.RowLabel + itoa(s.SeatNumber)
}

// seatTransitions enumerates the legal status moves. AVAILABLE -> BOOKED
// directly is absent on purpose: every booking path passes through
// RESERVED so the commit and cancel flows stay uniform.
var seatTransitions = map[string]map[string]bool{
	SeatAvailable: {SeatReserved: true},
	SeatReserved:  {SeatBooked: true, SeatAvailable: true},
	SeatBooked:    {SeatAvailable: true},
}

// ValidSeatTransition reports whether moving a seat from one status to
// another is allowed by the state machine.
func ValidSeatTransition(from, to string) bool {
	return seatTransitions[from][to]
}

// itoa avoids pulling strconv into every caller of Label for a two-digit
// number.
func itoa(n uint32) string {
	if n == 0 {
		return "0"
	}
	var buf [10]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
