package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/showtime-booking/internal/model"
)

// BookingRepo provides persistence for bookings and their immutable seat
// sets. Status updates are conditional on the previous status so a stale
// caller can never skip a state or repeat a terminal transition.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// CreateTx inserts a new PENDING booking within the provided transaction
// and populates the generated id and booking time on the passed record.
func (r *BookingRepo) CreateTx(ctx context.Context, tx *sql.Tx, b *model.Booking) error {
	const q = `INSERT INTO bookings (reference, customer_id, showtime_id, total_amount_cents, status)
               VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, b.Reference, b.CustomerID, b.ShowtimeID, b.TotalAmountCents, b.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return tx.QueryRowContext(ctx, `SELECT booking_time FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.BookingTime)
}

// AddSeatsTx fixes the booking's seat set by inserting one booking_seats
// row per seat with the price captured at booking time. The set is never
// modified afterwards.
func (r *BookingRepo) AddSeatsTx(ctx context.Context, tx *sql.Tx, bookingID uint64, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO booking_seats (booking_id, seat_id, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*3)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?)"
		args = append(args, bookingID, s.ID, s.PriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const bookingColumns = `id, reference, customer_id, showtime_id, total_amount_cents, status, booking_time, confirmed_at, cancelled_at, cancellation_reason`

func scanBooking(row interface{ Scan(...interface{}) error }, b *model.Booking) error {
	var confirmedAt, cancelledAt sql.NullTime
	var reason sql.NullString
	if err := row.Scan(&b.ID, &b.Reference, &b.CustomerID, &b.ShowtimeID, &b.TotalAmountCents,
		&b.Status, &b.BookingTime, &confirmedAt, &cancelledAt, &reason); err != nil {
		return err
	}
	if confirmedAt.Valid {
		t := confirmedAt.Time
		b.ConfirmedAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		b.CancelledAt = &t
	}
	if reason.Valid {
		s := reason.String
		b.CancellationReason = &s
	}
	return nil
}

// GetTx loads a booking and its seat ids inside a transaction, locking the
// booking row so concurrent confirm/cancel calls serialize on it. Returns
// ErrBookingNotFound when the id does not exist.
func (r *BookingRepo) GetTx(ctx context.Context, tx *sql.Tx, bookingID uint64) (*model.Booking, error) {
	const q = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? FOR UPDATE`
	var b model.Booking
	if err := scanBooking(tx.QueryRowContext(ctx, q, bookingID), &b); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	const seatQ = `SELECT seat_id FROM booking_seats WHERE booking_id = ? ORDER BY seat_id`
	rows, err := tx.QueryContext(ctx, seatQ, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		b.SeatIDs = append(b.SeatIDs, sid)
	}
	return &b, rows.Err()
}

// ConfirmTx moves a booking from PENDING to CONFIRMED and stamps
// confirmed_at. It reports false when the booking was not PENDING, which
// callers translate into an invalid-state error.
func (r *BookingRepo) ConfirmTx(ctx context.Context, tx *sql.Tx, bookingID uint64, at time.Time) (bool, error) {
	const q = `UPDATE bookings SET status = ?, confirmed_at = ?
               WHERE id = ? AND status = ?`
	res, err := tx.ExecContext(ctx, q, model.BookingConfirmed, at.UTC(), bookingID, model.BookingPending)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CancelTx moves a booking from PENDING or CONFIRMED to CANCELLED,
// recording the reason and timestamp. It reports false when the booking
// was already in a terminal state.
func (r *BookingRepo) CancelTx(ctx context.Context, tx *sql.Tx, bookingID uint64, reason string, at time.Time) (bool, error) {
	const q = `UPDATE bookings SET status = ?, cancelled_at = ?, cancellation_reason = ?
               WHERE id = ? AND status IN (?, ?)`
	res, err := tx.ExecContext(ctx, q, model.BookingCancelled, at.UTC(), reason,
		bookingID, model.BookingPending, model.BookingConfirmed)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// BookingDetail is the read model returned to customers: the booking plus
// showtime context and the seat labels it covers.
type BookingDetail struct {
	ID               uint64   `json:"id"`
	Reference        string   `json:"reference"`
	ShowtimeID       uint64   `json:"showtime_id"`
	MovieTitle       string   `json:"movie_title"`
	HallName         string   `json:"hall_name"`
	StartsAt         string   `json:"starts_at"`
	Status           string   `json:"status"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	Seats            []string `json:"seats"`
}

// GetForCustomer returns a single booking owned by the given customer.
// Ownership is enforced in the query; a booking owned by someone else is
// indistinguishable from a missing one and yields ErrBookingNotFound.
func (r *BookingRepo) GetForCustomer(ctx context.Context, bookingID, customerID uint64) (*BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.showtime_id, st.movie_title, st.hall_name, st.starts_at,
                      b.status, b.total_amount_cents
               FROM bookings b
               JOIN showtimes st ON st.id = b.showtime_id
               WHERE b.id = ? AND b.customer_id = ?`
	var d BookingDetail
	var startsAt time.Time
	err := r.db.QueryRowContext(ctx, q, bookingID, customerID).Scan(
		&d.ID, &d.Reference, &d.ShowtimeID, &d.MovieTitle, &d.HallName, &startsAt,
		&d.Status, &d.TotalAmountCents,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	d.StartsAt = startsAt.UTC().Format(time.RFC3339)
	d.Seats = []string{}
	const seatQ = `SELECT s.row_label, s.seat_number
                   FROM booking_seats bs
                   JOIN seats s ON s.id = bs.seat_id
                   WHERE bs.booking_id = ?
                   ORDER BY s.row_label, s.seat_number`
	rows, err := r.db.QueryContext(ctx, seatQ, d.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var num uint32
		if err := rows.Scan(&label, &num); err != nil {
			return nil, err
		}
		d.Seats = append(d.Seats, (&model.Seat{RowLabel: label, SeatNumber: num}).Label())
	}
	return &d, rows.Err()
}

// ListForCustomer returns all bookings of a customer, newest first, each
// with its seat labels populated in a single follow-up query.
func (r *BookingRepo) ListForCustomer(ctx context.Context, customerID uint64) ([]BookingDetail, error) {
	const q = `SELECT b.id, b.reference, b.showtime_id, st.movie_title, st.hall_name, st.starts_at,
                      b.status, b.total_amount_cents
               FROM bookings b
               JOIN showtimes st ON st.id = b.showtime_id
               WHERE b.customer_id = ?
               ORDER BY b.booking_time DESC`
	rows, err := r.db.QueryContext(ctx, q, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	details := make([]BookingDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var d BookingDetail
		var startsAt time.Time
		if err := rows.Scan(&d.ID, &d.Reference, &d.ShowtimeID, &d.MovieTitle, &d.HallName,
			&startsAt, &d.Status, &d.TotalAmountCents); err != nil {
			return nil, err
		}
		d.StartsAt = startsAt.UTC().Format(time.RFC3339)
		d.Seats = []string{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}
	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	seatQ := `SELECT bs.booking_id, s.row_label, s.seat_number
              FROM booking_seats bs
              JOIN seats s ON s.id = bs.seat_id
              WHERE bs.booking_id IN (` + strings.Join(placeholders, ",") + `)
              ORDER BY bs.booking_id, s.row_label, s.seat_number`
	srows, err := r.db.QueryContext(ctx, seatQ, ids...)
	if err != nil {
		return nil, err
	}
	defer srows.Close()
	for srows.Next() {
		var bid uint64
		var label string
		var num uint32
		if err := srows.Scan(&bid, &label, &num); err != nil {
			return nil, err
		}
		if idx, ok := index[bid]; ok {
			details[idx].Seats = append(details[idx].Seats, (&model.Seat{RowLabel: label, SeatNumber: num}).Label())
		}
	}
	return details, srows.Err()
}
