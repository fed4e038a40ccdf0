package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/showtime-booking/internal/model"
)

// HoldRepo provides data access to the seat_holds table. Holds are
// additive rows keyed by (seat, session); they are deactivated rather than
// deleted so a cancelled selection leaves an audit trail. All expiry
// comparisons are performed against UTC_TIMESTAMP() so the database clock
// is the single time authority for reaping.
type HoldRepo struct {
	db *sql.DB
}

// NewHoldRepo returns a new HoldRepo bound to the provided database.
func NewHoldRepo(db *sql.DB) *HoldRepo { return &HoldRepo{db: db} }

const holdColumns = `id, seat_id, showtime_id, customer_id, session_token, hold_token, locked_at, expires_at, is_active`

func scanHold(row interface{ Scan(...interface{}) error }, h *model.Hold) error {
	return row.Scan(&h.ID, &h.SeatID, &h.ShowtimeID, &h.CustomerID, &h.SessionToken,
		&h.HoldToken, &h.LockedAt, &h.ExpiresAt, &h.IsActive)
}

// ReapExpiredTx deactivates all holds of a showtime whose expiry has
// passed and returns how many were reaped. It runs inside the caller's
// transaction so the reap and the subsequent availability check observe
// the same snapshot.
func (r *HoldRepo) ReapExpiredTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (int64, error) {
	const q = `UPDATE seat_holds SET is_active = 0
               WHERE showtime_id = ? AND is_active = 1 AND expires_at <= UTC_TIMESTAMP()`
	res, err := tx.ExecContext(ctx, q, showtimeID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ReapAllExpiredTx deactivates expired holds across every showtime. The
// background reaper uses it; request paths reap per showtime to keep the
// touched row range narrow.
func (r *HoldRepo) ReapAllExpiredTx(ctx context.Context, tx *sql.Tx) (int64, error) {
	const q = `UPDATE seat_holds SET is_active = 0
               WHERE is_active = 1 AND expires_at <= UTC_TIMESTAMP()`
	res, err := tx.ExecContext(ctx, q)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CreateBatchTx inserts one row per hold within the provided transaction.
// Passing an empty slice has no effect and returns nil.
func (r *HoldRepo) CreateBatchTx(ctx context.Context, tx *sql.Tx, holds []model.Hold) error {
	if len(holds) == 0 {
		return nil
	}
	query := `INSERT INTO seat_holds (seat_id, showtime_id, customer_id, session_token, hold_token, locked_at, expires_at) VALUES `
	args := make([]interface{}, 0, len(holds)*7)
	for i, h := range holds {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, h.SeatID, h.ShowtimeID, h.CustomerID, h.SessionToken, h.HoldToken,
			h.LockedAt.UTC(), h.ExpiresAt.UTC())
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

// ActiveBySeatIDsTx returns the live holds on any of the given seats.
// Expired rows are excluded in SQL even when a reaping pass has not
// flipped is_active yet.
func (r *HoldRepo) ActiveBySeatIDsTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, seatIDs []uint64) ([]model.Hold, error) {
	if len(seatIDs) == 0 {
		return []model.Hold{}, nil
	}
	placeholders := make([]string, 0, len(seatIDs))
	args := make([]interface{}, 0, len(seatIDs)+1)
	args = append(args, showtimeID)
	for _, id := range seatIDs {
		placeholders = append(placeholders, "?")
		args = append(args, id)
	}
	q := `SELECT ` + holdColumns + ` FROM seat_holds
          WHERE showtime_id = ? AND seat_id IN (` + strings.Join(placeholders, ",") + `)
            AND is_active = 1 AND expires_at > UTC_TIMESTAMP()`
	rows, err := tx.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHolds(rows)
}

// ActiveBySessionTx returns the caller's live holds for a showtime inside
// a transaction. The booking orchestrator uses it to decide what to
// commit.
func (r *HoldRepo) ActiveBySessionTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, sessionToken string) ([]model.Hold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds
               WHERE showtime_id = ? AND session_token = ?
                 AND is_active = 1 AND expires_at > UTC_TIMESTAMP()`
	rows, err := tx.QueryContext(ctx, q, showtimeID, sessionToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHolds(rows)
}

// StaleCountBySessionTx counts the caller's holds that are still flagged
// active but already expired. A non-zero count with no live holds means
// the client's selection timed out rather than never existed, which maps
// to a different error for the caller.
func (r *HoldRepo) StaleCountBySessionTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, sessionToken string) (int, error) {
	const q = `SELECT COUNT(*) FROM seat_holds
               WHERE showtime_id = ? AND session_token = ?
                 AND is_active = 1 AND expires_at <= UTC_TIMESTAMP()`
	var n int
	if err := tx.QueryRowContext(ctx, q, showtimeID, sessionToken).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeactivateBySessionTx releases all of a session's active holds for a
// showtime and returns how many were released. Used on explicit
// release-all and when holds are consumed by a booking.
func (r *HoldRepo) DeactivateBySessionTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, sessionToken string) (int64, error) {
	const q = `UPDATE seat_holds SET is_active = 0
               WHERE showtime_id = ? AND session_token = ? AND is_active = 1`
	res, err := tx.ExecContext(ctx, q, showtimeID, sessionToken)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeactivateOneTx releases the session's active hold on a single seat.
// It reports false when the session does not own a live hold on that seat.
func (r *HoldRepo) DeactivateOneTx(ctx context.Context, tx *sql.Tx, showtimeID uint64, sessionToken string, seatID uint64) (bool, error) {
	const q = `UPDATE seat_holds SET is_active = 0
               WHERE showtime_id = ? AND session_token = ? AND seat_id = ?
                 AND is_active = 1 AND expires_at > UTC_TIMESTAMP()`
	res, err := tx.ExecContext(ctx, q, showtimeID, sessionToken, seatID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListActiveBySession returns the session's live holds outside of any
// transaction, for the read-only "my selection" view.
func (r *HoldRepo) ListActiveBySession(ctx context.Context, showtimeID uint64, sessionToken string) ([]model.Hold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds
               WHERE showtime_id = ? AND session_token = ?
                 AND is_active = 1 AND expires_at > UTC_TIMESTAMP()`
	rows, err := r.db.QueryContext(ctx, q, showtimeID, sessionToken)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHolds(rows)
}

// ListActiveByShowtime returns every live hold for a showtime. The public
// seat map derives "held by me" / "held by others" from this listing; it
// never mutates state.
func (r *HoldRepo) ListActiveByShowtime(ctx context.Context, showtimeID uint64) ([]model.Hold, error) {
	const q = `SELECT ` + holdColumns + ` FROM seat_holds
               WHERE showtime_id = ? AND is_active = 1 AND expires_at > UTC_TIMESTAMP()`
	rows, err := r.db.QueryContext(ctx, q, showtimeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectHolds(rows)
}

func collectHolds(rows *sql.Rows) ([]model.Hold, error) {
	var holds []model.Hold
	for rows.Next() {
		var h model.Hold
		if err := scanHold(rows, &h); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}
