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

// BookingHandler exposes the booking lifecycle: create from holds,
// confirm after payment, cancel, and read back.
type BookingHandler struct {
	Bookings *service.BookingOrchestrator
}

func NewBookingHandler(bookings *service.BookingOrchestrator) *BookingHandler {
	if bookings == nil {
		panic("nil booking orchestrator passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type bookingView struct {
	ID               uint64   `json:"id"`
	Reference        string   `json:"reference"`
	ShowtimeID       uint64   `json:"showtime_id"`
	SeatIDs          []uint64 `json:"seat_ids,omitempty"`
	Status           string   `json:"status"`
	TotalAmountCents uint32   `json:"total_amount_cents"`
	ConfirmedAt      *string  `json:"confirmed_at,omitempty"`
	CancelledAt      *string  `json:"cancelled_at,omitempty"`
}

func toBookingView(b *model.Booking) bookingView {
	v := bookingView{
		ID:               b.ID,
		Reference:        b.Reference,
		ShowtimeID:       b.ShowtimeID,
		SeatIDs:          b.SeatIDs,
		Status:           b.Status,
		TotalAmountCents: b.TotalAmountCents,
	}
	if b.ConfirmedAt != nil {
		s := b.ConfirmedAt.UTC().Format(time.RFC3339)
		v.ConfirmedAt = &s
	}
	if b.CancelledAt != nil {
		s := b.CancelledAt.UTC().Format(time.RFC3339)
		v.CancelledAt = &s
	}
	return v
}

// Create handles POST /v1/showtimes/:id/bookings: the session's live
// holds for the showtime become one PENDING booking. The request body is
// empty on purpose; the selection IS the set of holds.
func (h *BookingHandler) Create(c echo.Context) error {
	customerID, sessionToken, ok := identity(c)
	if !ok {
		return nil
	}
	showtimeID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid showtime id"})
	}

	booking, err := h.Bookings.CreateFromHolds(c.Request().Context(), showtimeID, customerID, sessionToken)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrShowtimeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "showtime not found"})
		case errors.Is(err, service.ErrNoActiveHolds):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "no seats are held for this showtime"})
		case errors.Is(err, service.ErrHoldExpired):
			return c.JSON(http.StatusConflict, echo.Map{"error": "your seat holds have expired, please select seats again"})
		case errors.Is(err, service.ErrTooManySeats):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "too many seats in one booking"})
		case errors.Is(err, repository.ErrSeatConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "a seat was taken by another booking, please select seats again"})
		case errors.Is(err, repository.ErrSeatNotFound):
			return c.JSON(http.StatusConflict, echo.Map{"error": "a held seat no longer exists"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingView(booking))
}

// Confirm handles POST /v1/bookings/:id/confirm. In a full deployment
// this is driven by the payment callback; the route accepts the signal
// directly.
func (h *BookingHandler) Confirm(c echo.Context) error {
	if _, err := getUserID(c); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	booking, err := h.Bookings.Confirm(c.Request().Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, service.ErrInvalidState):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is not pending"})
		case errors.Is(err, repository.ErrSeatConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat state changed concurrently, please retry"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingView(booking))
}

// Cancel handles DELETE /v1/bookings/:id. Only the owner may cancel, only
// from PENDING or CONFIRMED, and only before the pre-showtime cutoff.
func (h *BookingHandler) Cancel(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.Bind(&body) // reason is optional

	booking, err := h.Bookings.Cancel(c.Request().Context(), bookingID, customerID, body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		case errors.Is(err, service.ErrNotOwner):
			return c.JSON(http.StatusForbidden, echo.Map{"error": "booking belongs to another customer"})
		case errors.Is(err, service.ErrInvalidState):
			return c.JSON(http.StatusConflict, echo.Map{"error": "booking is already cancelled"})
		case errors.Is(err, service.ErrTooLate):
			return c.JSON(http.StatusConflict, echo.Map{"error": "too close to showtime to cancel"})
		case errors.Is(err, repository.ErrSeatConflict):
			return c.JSON(http.StatusConflict, echo.Map{"error": "seat state changed concurrently, please retry"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingView(booking))
}

// Get handles GET /v1/bookings/:id, returning the owner's detail view.
// Another customer's booking reads as not found rather than forbidden so
// ids cannot be probed.
func (h *BookingHandler) Get(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bookingID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	detail, err := h.Bookings.GetForCustomer(c.Request().Context(), bookingID, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// List handles GET /v1/my-bookings.
func (h *BookingHandler) List(c echo.Context) error {
	customerID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListForCustomer(c.Request().Context(), customerID)
	if err != nil {
		return storageError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
