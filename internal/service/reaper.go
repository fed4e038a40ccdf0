package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/monitoring"
	"github.com/iliyamo/showtime-booking/internal/repository"
)

// StartReaper runs a periodic sweep that deactivates expired holds across
// all showtimes. Expiry is already enforced lazily on every read, so the
// reaper only keeps the seat_holds table tidy; missing a tick costs
// nothing but storage. It returns when ctx is cancelled.
func StartReaper(ctx context.Context, runner *database.TxRunner, holds *repository.HoldRepo, interval time.Duration, log *logrus.Logger) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var reaped int64
			err := runner.Run(ctx, func(tx *sql.Tx) error {
				var err error
				reaped, err = holds.ReapAllExpiredTx(ctx, tx)
				return err
			})
			if err != nil {
				log.WithError(err).Warn("hold reaper sweep failed")
				continue
			}
			if reaped > 0 {
				monitoring.HoldsReaped.Add(float64(reaped))
				log.WithField("reaped", reaped).Info("expired holds reaped")
			}
		}
	}
}
