package database

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func TestRunRetriesOnDeadlock(t *testing.T) {
	db, mock := newMock(t)

	// First attempt deadlocks, second succeeds.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seats").
		WillReturnError(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"})
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE seats").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	retries := 0
	runner := NewTxRunner(db, 3, time.Millisecond, nil, func() { retries++ })
	err := runner.Run(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE seats SET status = ? WHERE id = ?", "RESERVED", 1)
		return err
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunExhaustsAfterCeiling(t *testing.T) {
	db, mock := newMock(t)

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE seats").
			WillReturnError(&mysql.MySQLError{Number: 1205, Message: "Lock wait timeout exceeded"})
		mock.ExpectRollback()
	}

	runner := NewTxRunner(db, 2, time.Millisecond, nil, nil)
	err := runner.Run(context.Background(), func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE seats SET status = ? WHERE id = ?", "RESERVED", 1)
		return err
	})

	assert.ErrorIs(t, err, ErrTxExhausted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunDoesNotRetryBusinessErrors(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("seat already reserved")
	attempts := 0
	runner := NewTxRunner(db, 3, time.Millisecond, nil, nil)
	err := runner.Run(context.Background(), func(tx *sql.Tx) error {
		attempts++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunCommitsOnSuccess(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectCommit()

	runner := NewTxRunner(db, 3, time.Millisecond, nil, nil)
	err := runner.Run(context.Background(), func(tx *sql.Tx) error { return nil })

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRollsBackOnPanic(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	runner := NewTxRunner(db, 3, time.Millisecond, nil, nil)
	assert.Panics(t, func() {
		_ = runner.Run(context.Background(), func(tx *sql.Tx) error { panic("boom") })
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransient(t *testing.T) {
	assert.True(t, Transient(&mysql.MySQLError{Number: 1205}))
	assert.True(t, Transient(&mysql.MySQLError{Number: 1213}))
	assert.False(t, Transient(&mysql.MySQLError{Number: 1062}))
	assert.False(t, Transient(errors.New("no seats")))
	assert.False(t, Transient(nil))
}
