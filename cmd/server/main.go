package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/showtime-booking/internal/config"
	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/handler"
	"github.com/iliyamo/showtime-booking/internal/monitoring"
	"github.com/iliyamo/showtime-booking/internal/queue"
	"github.com/iliyamo/showtime-booking/internal/repository"
	"github.com/iliyamo/showtime-booking/internal/router"
	"github.com/iliyamo/showtime-booking/internal/service"
)

func main() {
	// .env is for local development; in deployment the variables come from
	// the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	if lvl, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(lvl)
	}

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer db.Close()

	runner := database.NewTxRunner(db, cfg.TxMaxAttempts, cfg.TxRetryBase, log, func() {
		monitoring.TxRetries.Inc()
	})

	seatRepo := repository.NewSeatRepo(db)
	holdRepo := repository.NewHoldRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	showtimeRepo := repository.NewShowtimeRepo(db)

	publisher := queue.NewPublisher(log)
	holdManager := service.NewHoldManager(runner, seatRepo, holdRepo, showtimeRepo, cfg.HoldTTL, log)
	orchestrator := service.NewBookingOrchestrator(runner, seatRepo, holdRepo, bookingRepo, showtimeRepo,
		publisher, cfg.MaxSeatsPerBooking, cfg.CancelCutoff, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.StartReaper(ctx, runner, holdRepo, cfg.ReapInterval, log)
	go queue.StartConsumer(log)

	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable, rate limiting and seat-map caching disabled")
	}

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e, router.Deps{
		JWTSecret: cfg.JWTSecret,
		RateLimit: config.LoadRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
		Redis:     rdb,
		SeatMap:   handler.NewSeatMapHandler(seatRepo, showtimeRepo, holdManager),
		Holds:     handler.NewHoldHandler(holdManager),
		Bookings:  handler.NewBookingHandler(orchestrator),
	})

	log.WithField("port", cfg.Port).Info("starting server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}
