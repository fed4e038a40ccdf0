package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/showtime-booking/internal/model"
)

func holdRows(holds ...model.Hold) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "seat_id", "showtime_id", "customer_id", "session_token",
		"hold_token", "locked_at", "expires_at", "is_active",
	})
	for _, h := range holds {
		rows.AddRow(h.ID, h.SeatID, h.ShowtimeID, h.CustomerID, h.SessionToken,
			h.HoldToken, h.LockedAt, h.ExpiresAt, h.IsActive)
	}
	return rows
}

func TestReapExpiredTx(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec("UPDATE seat_holds SET is_active = 0").
		WithArgs(uint64(1)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	repo := NewHoldRepo(db)
	n, err := repo.ReapExpiredTx(context.Background(), tx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeactivateOneTxNoLiveHold(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	mock.ExpectExec("UPDATE seat_holds SET is_active = 0").
		WithArgs(uint64(1), "sess-a", uint64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewHoldRepo(db)
	released, err := repo.DeactivateOneTx(context.Background(), tx, 1, "sess-a", 7)
	require.NoError(t, err)
	assert.False(t, released)
}

func TestActiveBySessionTx(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM seat_holds").
		WithArgs(uint64(1), "sess-a").
		WillReturnRows(holdRows(
			model.Hold{ID: 1, SeatID: 10, ShowtimeID: 1, CustomerID: 2, SessionToken: "sess-a",
				HoldToken: "tok1", LockedAt: now, ExpiresAt: now.Add(10 * time.Minute), IsActive: true},
			model.Hold{ID: 2, SeatID: 11, ShowtimeID: 1, CustomerID: 2, SessionToken: "sess-a",
				HoldToken: "tok2", LockedAt: now, ExpiresAt: now.Add(10 * time.Minute), IsActive: true},
		))

	repo := NewHoldRepo(db)
	holds, err := repo.ActiveBySessionTx(context.Background(), tx, 1, "sess-a")
	require.NoError(t, err)
	assert.Len(t, holds, 2)
	assert.Equal(t, uint64(10), holds[0].SeatID)
}

func TestCreateBatchTx(t *testing.T) {
	db, mock := newMock(t)
	tx := beginTx(t, db, mock)

	now := time.Now().UTC()
	exp := now.Add(10 * time.Minute)
	mock.ExpectExec("INSERT INTO seat_holds").
		WithArgs(
			uint64(10), uint64(1), uint64(2), "sess-a", "tok1", now, exp,
			uint64(11), uint64(1), uint64(2), "sess-a", "tok2", now, exp,
		).
		WillReturnResult(sqlmock.NewResult(1, 2))

	repo := NewHoldRepo(db)
	err := repo.CreateBatchTx(context.Background(), tx, []model.Hold{
		{SeatID: 10, ShowtimeID: 1, CustomerID: 2, SessionToken: "sess-a", HoldToken: "tok1", LockedAt: now, ExpiresAt: exp},
		{SeatID: 11, ShowtimeID: 1, CustomerID: 2, SessionToken: "sess-a", HoldToken: "tok2", LockedAt: now, ExpiresAt: exp},
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
