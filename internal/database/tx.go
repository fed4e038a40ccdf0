package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// ErrTxExhausted is returned after the retry ceiling is reached on a
// transient storage conflict. It is distinct from any business rejection
// so callers can surface "please try again" instead of a hard error.
var ErrTxExhausted = errors.New("transaction retries exhausted")

// MySQL error numbers treated as transient contention signals.
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// TxRunner gives multi-step storage operations all-or-nothing semantics
// plus bounded retry on transient conflicts. A unit of work is a closure
// over one *sql.Tx: the runner begins the transaction, rolls back on any
// error or panic, commits on normal return, and re-runs the whole closure
// with exponential backoff when the failure was a lock wait timeout,
// deadlock or dropped connection. Business errors propagate immediately
// without retry.
type TxRunner struct {
	db          *sql.DB
	maxAttempts int
	backoffBase time.Duration
	log         *logrus.Logger
	onRetry     func()
}

// NewTxRunner constructs a TxRunner. maxAttempts must be at least 1;
// backoffBase is the sleep before the second attempt and doubles per
// retry. onRetry, when non-nil, is invoked once per retry (metrics hook).
func NewTxRunner(db *sql.DB, maxAttempts int, backoffBase time.Duration, log *logrus.Logger, onRetry func()) *TxRunner {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if backoffBase <= 0 {
		backoffBase = 50 * time.Millisecond
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &TxRunner{db: db, maxAttempts: maxAttempts, backoffBase: backoffBase, log: log, onRetry: onRetry}
}

// Run executes fn inside a transaction with the runner's retry policy.
func (r *TxRunner) Run(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var lastErr error
	backoff := r.backoffBase
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		err := r.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !Transient(err) {
			return err
		}
		lastErr = err
		if attempt == r.maxAttempts {
			break
		}
		if r.onRetry != nil {
			r.onRetry()
		}
		r.log.WithFields(logrus.Fields{
			"attempt": attempt,
			"backoff": backoff.String(),
		}).WithError(err).Warn("transient storage conflict, retrying transaction")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("%w: %v", ErrTxExhausted, lastErr)
}

func (r *TxRunner) runOnce(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Transient reports whether err is a storage-level conflict worth
// retrying: MySQL lock wait timeout (1205), deadlock (1213), or a
// connection the driver declared bad. Everything else — validation
// failures, not-found, business rules — is terminal for the unit of work.
func Transient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlLockWaitTimeout || myErr.Number == mysqlDeadlock
	}
	return false
}
