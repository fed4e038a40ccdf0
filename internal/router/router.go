package router

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/showtime-booking/internal/config"
	"github.com/iliyamo/showtime-booking/internal/handler"
	"github.com/iliyamo/showtime-booking/internal/middleware"
)

// Deps carries everything the route table needs. The redis client may be
// nil, in which case rate limiting and response caching are disabled and
// every request goes straight to the handlers.
type Deps struct {
	JWTSecret string
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Redis     *redis.Client

	SeatMap  *handler.SeatMapHandler
	Holds    *handler.HoldHandler
	Bookings *handler.BookingHandler
}

// RegisterRoutes wires the HTTP surface. The seat map is public and
// cacheable; everything that holds or moves seats requires a JWT and is
// rate limited per user and route.
func RegisterRoutes(e *echo.Echo, d Deps) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	e.GET("/healthz", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")

	limiter := middleware.NewTokenBucket(d.RateLimit, d.Redis)
	cache := middleware.NewRedisCache(d.Cache, d.Redis)
	auth := middleware.JWTAuth(d.JWTSecret)

	// Public availability view.
	v1.GET("/showtimes/:id/seats", d.SeatMap.ByShowtime, cache)

	// Hold lifecycle: session-scoped seat selection.
	holds := v1.Group("/showtimes/:id/holds", auth)
	holds.POST("", d.Holds.Acquire, limiter)
	holds.GET("", d.Holds.ListMine)
	holds.DELETE("", d.Holds.ReleaseAll, limiter)
	holds.DELETE("/:seatId", d.Holds.Release, limiter)

	// Booking lifecycle: holds become durable allocations here.
	v1.POST("/showtimes/:id/bookings", d.Bookings.Create, auth, limiter)
	v1.POST("/bookings/:id/confirm", d.Bookings.Confirm, auth, limiter)
	v1.DELETE("/bookings/:id", d.Bookings.Cancel, auth, limiter)
	v1.GET("/bookings/:id", d.Bookings.Get, auth)
	v1.GET("/my-bookings", d.Bookings.List, auth)
}
