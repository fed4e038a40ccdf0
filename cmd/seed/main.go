// Command seed inserts a demo showtime and its full seat grid for local
// development. Showtime provisioning belongs to the catalog service in
// production; this tool only gives the booking core something to sell.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/showtime-booking/internal/config"
	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/repository"
	"github.com/iliyamo/showtime-booking/internal/service"
)

func main() {
	movie := flag.String("movie", "Demo Screening", "movie title")
	hall := flag.String("hall", "Hall 1", "hall name")
	startIn := flag.Duration("starts-in", 4*time.Hour, "how far in the future the showtime starts")
	base := flag.Uint("base-price", 1500, "standard seat price in cents")
	flag.Parse()

	_ = godotenv.Load()
	log := logrus.New()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	ctx := context.Background()
	starts := time.Now().UTC().Add(*startIn)

	res, err := db.ExecContext(ctx,
		`INSERT INTO showtimes (movie_title, hall_name, starts_at, ends_at, base_price_cents, status)
         VALUES (?, ?, ?, ?, ?, 'SCHEDULED')`,
		*movie, *hall, starts, starts.Add(2*time.Hour), uint32(*base))
	if err != nil {
		log.WithError(err).Fatal("insert showtime failed")
	}
	showtimeID, err := res.LastInsertId()
	if err != nil {
		log.WithError(err).Fatal("read showtime id failed")
	}

	runner := database.NewTxRunner(db, cfg.TxMaxAttempts, cfg.TxRetryBase, log, nil)
	if err := service.ProvisionSeatGrid(ctx, runner, repository.NewSeatRepo(db), uint64(showtimeID), uint32(*base)); err != nil {
		log.WithError(err).Fatal("seat grid provisioning failed")
	}

	log.WithFields(logrus.Fields{
		"showtime_id": showtimeID,
		"movie":       *movie,
		"starts_at":   starts.Format(time.RFC3339),
		"seats":       80,
	}).Info("demo showtime seeded")
}
