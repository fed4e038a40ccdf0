package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/repository"
	"github.com/iliyamo/showtime-booking/internal/service"
)

// HoldHandler exposes the hold manager over HTTP. All routes assume JWT
// authentication has already run; the session token arrives via the
// X-Session-Token header.
type HoldHandler struct {
	Holds *service.HoldManager
}

// NewHoldHandler constructs a HoldHandler; the hold manager must be
// non-nil.
func NewHoldHandler(holds *service.HoldManager) *HoldHandler {
	if holds == nil {
		panic("nil hold manager passed to NewHoldHandler")
	}
	return &HoldHandler{Holds: holds}
}

type holdView struct {
	SeatID    uint64 `json:"seat_id"`
	HoldToken string `json:"hold_token"`
	ExpiresAt string `json:"expires_at"`
}

func holdViews(holds []model.Hold) []holdView {
	out := make([]holdView, 0, len(holds))
	for _, h := range holds {
		out = append(out, holdView{
			SeatID:    h.SeatID,
			HoldToken: h.HoldToken,
			ExpiresAt: h.ExpiresAt.UTC().Format(time.RFC3339),
		})
	}
	return out
}

// Acquire handles POST /v1/showtimes/:id/holds. The body carries a
// "seat_ids" array; the whole request succeeds or fails together. On
// success it returns 201 with one hold per seat. A 409 response lists
// the seats that blocked the request so the client can re-pick.
func (h *HoldHandler) Acquire(c echo.Context) error {
	customerID, sessionToken, ok := identity(c)
	if !ok {
		return nil
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	var body struct {
		SeatIDs []uint64 `json:"seat_ids"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	holds, err := h.Holds.Acquire(c.Request().Context(), showtimeID, customerID, sessionToken, body.SeatIDs)
	if err != nil {
		var unavailable *service.SeatsUnavailableError
		switch {
		case errors.Is(err, service.ErrNoSeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "seat_ids is required"})
		case errors.Is(err, repository.ErrShowtimeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "seat does not exist or does not belong to this showtime"})
		case errors.As(err, &unavailable):
			return c.JSON(http.StatusConflict, echo.Map{
				"error":       "some seats are unavailable",
				"unavailable": unavailable.SeatIDs,
			})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"holds": holdViews(holds)})
}

// Release handles DELETE /v1/showtimes/:id/holds/:seatId, dropping the
// caller's own hold on one seat. released=false means the caller held
// nothing; that is not an error.
func (h *HoldHandler) Release(c echo.Context) error {
	_, sessionToken, ok := identity(c)
	if !ok {
		return nil
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	seatID, ok := pathID(c, "seatId")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid seat id"})
	}
	released, err := h.Holds.Release(c.Request().Context(), showtimeID, sessionToken, seatID)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// ReleaseAll handles DELETE /v1/showtimes/:id/holds, releasing the whole
// selection when the session ends.
func (h *HoldHandler) ReleaseAll(c echo.Context) error {
	_, sessionToken, ok := identity(c)
	if !ok {
		return nil
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	released, err := h.Holds.ReleaseAll(c.Request().Context(), showtimeID, sessionToken)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"released": released})
}

// ListMine handles GET /v1/showtimes/:id/holds, returning the session's
// live holds. An empty list means nothing is selected.
func (h *HoldHandler) ListMine(c echo.Context) error {
	_, sessionToken, ok := identity(c)
	if !ok {
		return nil
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}
	holds, err := h.Holds.ListForSession(c.Request().Context(), showtimeID, sessionToken)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": holdViews(holds)})
}
