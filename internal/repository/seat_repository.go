package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/showtime-booking/internal/model"
)

// SeatRepo is the seat ledger: the authoritative record of every seat's
// status, price and version, and the only writer of seat status. All
// status changes go through TransitionTx so that status and version can
// never diverge.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo returns a new SeatRepo bound to the provided database.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

const seatColumns = `id, showtime_id, row_label, seat_number, category, price_cents, status, version, created_at, updated_at`

func scanSeat(row interface{ Scan(...interface{}) error }, s *model.Seat) error {
	return row.Scan(&s.ID, &s.ShowtimeID, &s.RowLabel, &s.SeatNumber, &s.Category,
		&s.PriceCents, &s.Status, &s.Version, &s.CreatedAt, &s.UpdatedAt)
}

// GetByID returns a single seat by id. It returns ErrSeatNotFound when no
// such seat exists.
func (r *SeatRepo) GetByID(ctx context.Context, seatID uint64) (*model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats WHERE id = ?`
	var s model.Seat
	if err := scanSeat(r.db.QueryRowContext(ctx, q, seatID), &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrSeatNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListByShowtime returns every seat of a showtime ordered by row label and
// seat number so callers get a stable, restartable listing.
func (r *SeatRepo) ListByShowtime(ctx context.Context, showtimeID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatColumns + ` FROM seats
               WHERE showtime_id = ?
               ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// GetByIDsTx loads the given seats of a showtime inside a transaction,
// ordered by label. Seats of other showtimes are not returned, so a result
// shorter than the input means some ids do not exist or do not belong to
// the showtime; callers treat that as ErrSeatNotFound.
func (r *SeatRepo) GetByIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) ([]model.Seat, error) {
	if len(seatIDs) == 0 {
		return []model.Seat{}, nil
	}
	placeholders := make([]string, 0, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, id := range seatIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT ` + seatColumns + ` FROM seats
          WHERE showtime_id = ? AND id IN (` + strings.Join(placeholders, ",") + `)
          ORDER BY row_label, seat_number`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := scanSeat(rows, &s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

// TransitionTx is the compare-and-swap primitive every higher-level
// operation builds on. The update succeeds only when the seat's current
// status equals from and its version equals expectedVersion; on success
// the status becomes to and the version increments by one. It returns
// ErrSeatConflict when a concurrent mutation landed first and
// ErrSeatNotFound when the row does not exist.
func (r *SeatRepo) TransitionTx(ctx context.Context, tx *sql.Tx, seatID uint64, expectedVersion uint32, from, to string) error {
	if !model.ValidSeatTransition(from, to) {
		return ErrInvalidTransition
	}
	const q = `UPDATE seats SET status = ?, version = version + 1
               WHERE id = ? AND status = ? AND version = ?`
	res, err := tx.ExecContext(ctx, q, to, seatID, from, expectedVersion)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	// Zero rows: distinguish a lost race from a missing seat.
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM seats WHERE id = ?`, seatID).Scan(&one)
	if err == sql.ErrNoRows {
		return ErrSeatNotFound
	}
	if err != nil {
		return err
	}
	return ErrSeatConflict
}

// CreateBulkTx inserts the seat grid for a showtime in one statement.
// Status defaults to AVAILABLE and version to 0 via the schema; only
// identity, label, category and price are supplied. Passing an empty
// slice has no effect.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (showtime_id, row_label, seat_number, category, price_cents) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.ShowtimeID, s.RowLabel, s.SeatNumber, s.Category, s.PriceCents)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// PricesByIDsTx returns a seat id to price map for the given seats of a
// showtime. The booking orchestrator uses it to compute the total inside
// the same transaction that reserves the seats.
func (r *SeatRepo) PricesByIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) (map[uint64]uint32, error) {
	prices := make(map[uint64]uint32, len(seatIDs))
	if len(seatIDs) == 0 {
		return prices, nil
	}
	placeholders := make([]string, 0, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, id := range seatIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT id, price_cents FROM seats
          WHERE showtime_id = ? AND id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		var price uint32
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}
