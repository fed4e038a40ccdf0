package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/showtime-booking/internal/middleware"
	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/repository"
	"github.com/iliyamo/showtime-booking/internal/service"
)

// SeatMapHandler renders the availability view of a showtime: the seat
// ledger overlaid with live holds. The view is advisory; only the commit
// path decides who actually gets a seat.
type SeatMapHandler struct {
	Seats     *repository.SeatRepo
	Showtimes *repository.ShowtimeRepo
	Holds     *service.HoldManager
}

func NewSeatMapHandler(seats *repository.SeatRepo, showtimes *repository.ShowtimeRepo, holds *service.HoldManager) *SeatMapHandler {
	if seats == nil || showtimes == nil || holds == nil {
		panic("nil dependency passed to NewSeatMapHandler")
	}
	return &SeatMapHandler{Seats: seats, Showtimes: showtimes, Holds: holds}
}

type seatMapEntry struct {
	SeatID     uint64 `json:"seat_id"`
	Label      string `json:"label"`
	Category   string `json:"category"`
	PriceCents uint32 `json:"price_cents"`
	State      string `json:"state"`
}

// ByShowtime handles GET /v1/showtimes/:id/seats. Each seat is reported
// as one of: available, held_by_me, held_by_others, reserved, booked.
// held_by_me is only meaningful when the caller sends a session token;
// anonymous callers see those seats as held_by_others.
func (h *SeatMapHandler) ByShowtime(c echo.Context) error {
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	ctx := c.Request().Context()

	showtime, err := h.Showtimes.GetByID(ctx, showtimeID)
	if err != nil {
		if errors.Is(err, repository.ErrShowtimeNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		}
		return storageError(c, err)
	}

	seats, err := h.Seats.ListByShowtime(ctx, showtimeID)
	if err != nil {
		return storageError(c, err)
	}
	holds, err := h.Holds.ListForShowtime(ctx, showtimeID)
	if err != nil {
		return storageError(c, err)
	}

	session := middleware.SessionToken(c)
	heldBy := make(map[uint64]string, len(holds))
	for _, hd := range holds {
		heldBy[hd.SeatID] = hd.SessionToken
	}

	entries := make([]seatMapEntry, 0, len(seats))
	for _, s := range seats {
		entries = append(entries, seatMapEntry{
			SeatID:     s.ID,
			Label:      s.Label(),
			Category:   s.Category,
			PriceCents: s.PriceCents,
			State:      seatState(s, heldBy, session),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"showtime_id": showtime.ID,
		"movie_title": showtime.MovieTitle,
		"hall_name":   showtime.HallName,
		"starts_at":   showtime.StartsAt,
		"seats":       entries,
	})
}

func seatState(s model.Seat, heldBy map[uint64]string, session string) string {
	switch s.Status {
	case model.SeatBooked:
		return "booked"
	case model.SeatReserved:
		return "reserved"
	}
	holder, held := heldBy[s.ID]
	switch {
	case !held:
		return "available"
	case session != "" && holder == session:
		return "held_by_me"
	default:
		return "held_by_others"
	}
}
