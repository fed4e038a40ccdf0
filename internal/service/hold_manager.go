package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/monitoring"
	"github.com/iliyamo/showtime-booking/internal/repository"
)

// HoldManager issues, releases and lists short-lived, session-scoped seat
// holds. Holds never touch the seat ledger's status column: a held seat
// stays AVAILABLE and the exclusivity lives entirely in the seat_holds
// rows, checked and created under one transaction so no interleaving of a
// partial acquire is observable.
type HoldManager struct {
	runner    *database.TxRunner
	seats     *repository.SeatRepo
	holds     *repository.HoldRepo
	showtimes *repository.ShowtimeRepo
	ttl       time.Duration
	now       func() time.Time
	log       *logrus.Logger
}

// NewHoldManager constructs a HoldManager. ttl is how long a fresh hold
// lives; all dependencies must be non-nil.
func NewHoldManager(runner *database.TxRunner, seats *repository.SeatRepo, holds *repository.HoldRepo, showtimes *repository.ShowtimeRepo, ttl time.Duration, log *logrus.Logger) *HoldManager {
	if runner == nil || seats == nil || holds == nil || showtimes == nil {
		panic("nil dependency passed to NewHoldManager")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HoldManager{
		runner:    runner,
		seats:     seats,
		holds:     holds,
		showtimes: showtimes,
		ttl:       ttl,
		now:       func() time.Time { return time.Now().UTC() },
		log:       log,
	}
}

// Acquire places holds on the requested seats for the (customer, session)
// pair. The request is all-or-nothing: expired holds for the showtime are
// reaped first, and if any requested seat is then not AVAILABLE in the
// ledger or is live-held by a different session, nothing is created and a
// SeatsUnavailableError lists the blockers. Seats the same session
// already holds are kept as-is and returned alongside the new holds.
// Duplicate ids are collapsed; an empty request fails with ErrNoSeats.
func (m *HoldManager) Acquire(ctx context.Context, showtimeID, customerID uint64, sessionToken string, seatIDs []uint64) ([]model.Hold, error) {
	unique := dedupe(seatIDs)
	if len(unique) == 0 {
		return nil, ErrNoSeats
	}
	if _, err := m.showtimes.GetByID(ctx, showtimeID); err != nil {
		return nil, err
	}

	now := m.now()
	expiresAt := now.Add(m.ttl)
	var result []model.Hold

	err := m.runner.Run(ctx, func(tx *sql.Tx) error {
		result = result[:0]
		if reaped, err := m.holds.ReapExpiredTx(ctx, tx, showtimeID); err != nil {
			return err
		} else if reaped > 0 {
			monitoring.HoldsReaped.Add(float64(reaped))
		}

		seats, err := m.seats.GetByIDsTx(ctx, tx, showtimeID, unique)
		if err != nil {
			return err
		}
		if len(seats) != len(unique) {
			monitoring.HoldsRejected.WithLabelValues("not_found").Inc()
			return repository.ErrSeatNotFound
		}

		var blocked []uint64
		for _, s := range seats {
			if s.Status != model.SeatAvailable {
				blocked = append(blocked, s.ID)
			}
		}

		live, err := m.holds.ActiveBySeatIDsTx(ctx, tx, showtimeID, unique)
		if err != nil {
			return err
		}
		own := make(map[uint64]model.Hold, len(live))
		for _, h := range live {
			if h.SessionToken == sessionToken {
				own[h.SeatID] = h
			} else {
				blocked = append(blocked, h.SeatID)
			}
		}
		if len(blocked) > 0 {
			monitoring.HoldsRejected.WithLabelValues("unavailable").Inc()
			return &SeatsUnavailableError{SeatIDs: blocked}
		}

		toCreate := make([]uint64, 0, len(unique))
		for _, id := range unique {
			if h, ok := own[id]; ok {
				result = append(result, h)
				continue
			}
			toCreate = append(toCreate, id)
		}
		fresh, err := buildHolds(customerID, sessionToken, showtimeID, toCreate, now, expiresAt)
		if err != nil {
			return err
		}
		if err := m.holds.CreateBatchTx(ctx, tx, fresh); err != nil {
			return err
		}
		result = append(result, fresh...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.HoldsAcquired.Add(float64(len(result)))
	m.log.WithFields(logrus.Fields{
		"showtime_id": showtimeID,
		"customer_id": customerID,
		"seats":       len(result),
		"expires_at":  expiresAt.Format(time.RFC3339),
	}).Info("seat holds acquired")
	return result, nil
}

// Release deactivates the session's own live hold on one seat. It reports
// false without error when the session holds nothing on that seat, so a
// double-release is harmless.
func (m *HoldManager) Release(ctx context.Context, showtimeID uint64, sessionToken string, seatID uint64) (bool, error) {
	var released bool
	err := m.runner.Run(ctx, func(tx *sql.Tx) error {
		var err error
		released, err = m.holds.DeactivateOneTx(ctx, tx, showtimeID, sessionToken, seatID)
		return err
	})
	if err != nil {
		return false, err
	}
	if released {
		monitoring.HoldsReleased.Inc()
	}
	return released, nil
}

// ReleaseAll deactivates every live hold of the session for a showtime and
// returns how many were released. Used when the session ends: browser
// close, navigation away, or an explicit cancel of the selection.
func (m *HoldManager) ReleaseAll(ctx context.Context, showtimeID uint64, sessionToken string) (int64, error) {
	var released int64
	err := m.runner.Run(ctx, func(tx *sql.Tx) error {
		var err error
		released, err = m.holds.DeactivateBySessionTx(ctx, tx, showtimeID, sessionToken)
		return err
	})
	if err != nil {
		return 0, err
	}
	monitoring.HoldsReleased.Add(float64(released))
	return released, nil
}

// ListForSession returns the session's live holds. An empty result means
// "nothing to commit," not an error.
func (m *HoldManager) ListForSession(ctx context.Context, showtimeID uint64, sessionToken string) ([]model.Hold, error) {
	return m.holds.ListActiveBySession(ctx, showtimeID, sessionToken)
}

// ListForShowtime returns every live hold for a showtime, for the public
// availability view. It never mutates state.
func (m *HoldManager) ListForShowtime(ctx context.Context, showtimeID uint64) ([]model.Hold, error) {
	return m.holds.ListActiveByShowtime(ctx, showtimeID)
}

// buildHolds constructs one hold row per seat with a fresh random token
// each, all expiring at the same instant so a batch lives and dies
// together.
func buildHolds(customerID uint64, sessionToken string, showtimeID uint64, seatIDs []uint64, now, expiresAt time.Time) ([]model.Hold, error) {
	holds := make([]model.Hold, 0, len(seatIDs))
	for _, sid := range seatIDs {
		token, err := randomToken(16)
		if err != nil {
			return nil, err
		}
		holds = append(holds, model.Hold{
			SeatID:       sid,
			ShowtimeID:   showtimeID,
			CustomerID:   customerID,
			SessionToken: sessionToken,
			HoldToken:    token,
			LockedAt:     now,
			ExpiresAt:    expiresAt,
			IsActive:     true,
		})
	}
	return holds, nil
}

// randomToken generates a cryptographically random hexadecimal string of
// n*2 characters, used for the hold_token column.
func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// dedupe collapses duplicate and zero seat ids preserving first-seen
// order.
func dedupe(ids []uint64) []uint64 {
	unique := make([]uint64, 0, len(ids))
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	return unique
}
