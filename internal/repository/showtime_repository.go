package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/showtime-booking/internal/model"
)

// ShowtimeRepo is the read-only contract against the catalog service's
// showtime data. The booking core needs existence checks, the start time
// for the cancellation cutoff, and the base price; provisioning showtimes
// is the catalog's job.
type ShowtimeRepo struct {
	db *sql.DB
}

// NewShowtimeRepo returns a new ShowtimeRepo bound to the given database.
func NewShowtimeRepo(db *sql.DB) *ShowtimeRepo { return &ShowtimeRepo{db: db} }

const showtimeColumns = `id, movie_title, hall_name, starts_at, ends_at, base_price_cents, status`

// GetByID returns a showtime or ErrShowtimeNotFound.
func (r *ShowtimeRepo) GetByID(ctx context.Context, showtimeID uint64) (*model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, showtimeID))
}

// GetTx is GetByID inside the caller's transaction, used when the start
// time participates in a transactional business rule such as the
// cancellation cutoff.
func (r *ShowtimeRepo) GetTx(ctx context.Context, tx *sql.Tx, showtimeID uint64) (*model.Showtime, error) {
	const q = `SELECT ` + showtimeColumns + ` FROM showtimes WHERE id = ?`
	return r.scanOne(tx.QueryRowContext(ctx, q, showtimeID))
}

func (r *ShowtimeRepo) scanOne(row *sql.Row) (*model.Showtime, error) {
	var st model.Showtime
	err := row.Scan(&st.ID, &st.MovieTitle, &st.HallName, &st.StartsAt, &st.EndsAt,
		&st.BasePriceCents, &st.Status)
	if err == sql.ErrNoRows {
		return nil, ErrShowtimeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}
