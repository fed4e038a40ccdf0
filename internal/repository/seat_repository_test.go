package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/showtime-booking/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func beginTx(t *testing.T, db *sql.DB, mock sqlmock.Sqlmock) *sql.Tx {
	t.Helper()
	mock.ExpectBegin()
	tx, err := db.Begin()
	require.NoError(t, err)
	return tx
}

func seatRows(seats ...model.Seat) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "showtime_id", "row_label", "seat_number", "category",
		"price_cents", "status", "version", "created_at", "updated_at",
	})
	now := time.Now().UTC()
	for _, s := range seats {
		rows.AddRow(s.ID, s.ShowtimeID, s.RowLabel, s.SeatNumber, s.Category,
			s.PriceCents, s.Status, s.Version, now, now)
	}
	return rows
}

func TestTransitionTxSuccess(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec("UPDATE seats SET status = \\?, version = version \\+ 1").
		WithArgs(model.SeatReserved, uint64(5), model.SeatAvailable, uint32(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSeatRepo(db)
	err := repo.TransitionTx(context.Background(), tx, 5, 3, model.SeatAvailable, model.SeatReserved)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxConflict(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	// Zero rows affected but the seat exists: a concurrent writer won.
	mock.ExpectExec("UPDATE seats SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM seats WHERE id = \\?").
		WithArgs(uint64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	repo := NewSeatRepo(db)
	err := repo.TransitionTx(context.Background(), tx, 5, 3, model.SeatAvailable, model.SeatReserved)
	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxSeatMissing(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec("UPDATE seats SET status").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM seats WHERE id = \\?").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewSeatRepo(db)
	err := repo.TransitionTx(context.Background(), tx, 99, 0, model.SeatAvailable, model.SeatReserved)
	assert.ErrorIs(t, err, ErrSeatNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransitionTxRejectsIllegalMove(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	repo := NewSeatRepo(db)
	// AVAILABLE -> BOOKED skips RESERVED and must not even reach SQL.
	err := repo.TransitionTx(context.Background(), tx, 5, 0, model.SeatAvailable, model.SeatBooked)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDsTxScopedToShowtime(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	// Only one of the two requested ids belongs to the showtime; the short
	// result is how callers detect foreign or missing seats.
	mock.ExpectQuery("SELECT (.+) FROM seats").
		WithArgs(uint64(1), uint64(10), uint64(11)).
		WillReturnRows(seatRows(model.Seat{
			ID: 10, ShowtimeID: 1, RowLabel: "A", SeatNumber: 1,
			Category: model.CategoryStandard, PriceCents: 1500, Status: model.SeatAvailable,
		}))

	repo := NewSeatRepo(db)
	seats, err := repo.GetByIDsTx(context.Background(), tx, 1, []uint64{10, 11})
	require.NoError(t, err)
	assert.Len(t, seats, 1)
	assert.Equal(t, uint64(10), seats[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM seats WHERE id = \\?").
		WithArgs(uint64(42)).
		WillReturnError(sql.ErrNoRows)

	repo := NewSeatRepo(db)
	_, err := repo.GetByID(context.Background(), 42)
	assert.ErrorIs(t, err, ErrSeatNotFound)
}

func TestCreateBulkTx(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec("INSERT INTO seats").
		WithArgs(
			uint64(1), "A", uint32(1), model.CategoryStandard, uint32(1500),
			uint64(1), "A", uint32(2), model.CategoryVIP, uint32(2500),
		).
		WillReturnResult(sqlmock.NewResult(1, 2))

	repo := NewSeatRepo(db)
	err := repo.CreateBulkTx(context.Background(), tx, []model.Seat{
		{ShowtimeID: 1, RowLabel: "A", SeatNumber: 1, Category: model.CategoryStandard, PriceCents: 1500},
		{ShowtimeID: 1, RowLabel: "A", SeatNumber: 2, Category: model.CategoryVIP, PriceCents: 2500},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
