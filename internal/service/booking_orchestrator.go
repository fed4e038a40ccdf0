package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/monitoring"
	"github.com/iliyamo/showtime-booking/internal/queue"
	"github.com/iliyamo/showtime-booking/internal/repository"
)

// EventPublisher is the outbound contract for booking lifecycle events.
// Publishing happens after commit and is best-effort; implementations must
// not block the request path for long.
type EventPublisher interface {
	BookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
	BookingCancelled(ctx context.Context, ev queue.BookingCancelledEvent) error
}

// BookingOrchestrator is the single state-transition boundary where a
// batch of holds becomes a durable allocation of seats. Every operation
// runs inside one coordinator-managed unit of work: all steps commit
// together or none do.
type BookingOrchestrator struct {
	runner    *database.TxRunner
	seats     *repository.SeatRepo
	holds     *repository.HoldRepo
	bookings  *repository.BookingRepo
	showtimes *repository.ShowtimeRepo
	publisher EventPublisher

	maxSeats     int
	cancelCutoff time.Duration
	now          func() time.Time
	log          *logrus.Logger
}

// NewBookingOrchestrator constructs a BookingOrchestrator. publisher may
// be nil, in which case no events are emitted.
func NewBookingOrchestrator(runner *database.TxRunner, seats *repository.SeatRepo, holds *repository.HoldRepo, bookings *repository.BookingRepo, showtimes *repository.ShowtimeRepo, publisher EventPublisher, maxSeats int, cancelCutoff time.Duration, log *logrus.Logger) *BookingOrchestrator {
	if runner == nil || seats == nil || holds == nil || bookings == nil || showtimes == nil {
		panic("nil dependency passed to NewBookingOrchestrator")
	}
	if maxSeats < 1 {
		maxSeats = 10
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &BookingOrchestrator{
		runner:       runner,
		seats:        seats,
		holds:        holds,
		bookings:     bookings,
		showtimes:    showtimes,
		publisher:    publisher,
		maxSeats:     maxSeats,
		cancelCutoff: cancelCutoff,
		now:          func() time.Time { return time.Now().UTC() },
		log:          log,
	}
}

// CreateFromHolds converts the session's live holds for a showtime into a
// PENDING booking. Within one unit of work it re-validates the holds,
// transitions every held seat AVAILABLE -> RESERVED through the ledger's
// compare-and-swap, captures the total from current seat prices, writes
// the booking and its immutable seat set, and deactivates the consumed
// holds. A compare-and-swap conflict means another path got a seat first;
// the whole operation aborts with ErrSeatConflict and no partial state
// survives. The stored total is never recomputed afterwards.
func (o *BookingOrchestrator) CreateFromHolds(ctx context.Context, showtimeID, customerID uint64, sessionToken string) (*model.Booking, error) {
	if _, err := o.showtimes.GetByID(ctx, showtimeID); err != nil {
		return nil, err
	}

	var booking *model.Booking
	err := o.runner.Run(ctx, func(tx *sql.Tx) error {
		booking = nil
		live, err := o.holds.ActiveBySessionTx(ctx, tx, showtimeID, sessionToken)
		if err != nil {
			return err
		}
		// Any stale hold means part of the selection timed out since the
		// client read it; booking only the survivors would commit a seat
		// set the customer never chose. Checked before reaping clears the
		// evidence.
		stale, err := o.holds.StaleCountBySessionTx(ctx, tx, showtimeID, sessionToken)
		if err != nil {
			return err
		}
		if stale > 0 {
			monitoring.Bookings.WithLabelValues("hold_expired").Inc()
			return ErrHoldExpired
		}
		if len(live) == 0 {
			monitoring.Bookings.WithLabelValues("no_holds").Inc()
			return ErrNoActiveHolds
		}
		if len(live) > o.maxSeats {
			return ErrTooManySeats
		}
		if reaped, err := o.holds.ReapExpiredTx(ctx, tx, showtimeID); err != nil {
			return err
		} else if reaped > 0 {
			monitoring.HoldsReaped.Add(float64(reaped))
		}

		seatIDs := make([]uint64, 0, len(live))
		for _, h := range live {
			seatIDs = append(seatIDs, h.SeatID)
		}
		seats, err := o.seats.GetByIDsTx(ctx, tx, showtimeID, seatIDs)
		if err != nil {
			return err
		}
		if len(seats) != len(seatIDs) {
			return repository.ErrSeatNotFound
		}
		prices, err := o.seats.PricesByIDsTx(ctx, tx, showtimeID, seatIDs)
		if err != nil {
			return err
		}

		var total uint32
		for _, s := range seats {
			// Holds are honoured, so a conflict here means a writer that
			// bypassed the hold check lost us the seat. Correctness
			// backstop: abort everything.
			if err := o.seats.TransitionTx(ctx, tx, s.ID, s.Version, model.SeatAvailable, model.SeatReserved); err != nil {
				if err == repository.ErrSeatConflict {
					monitoring.SeatConflicts.Inc()
					monitoring.Bookings.WithLabelValues("seat_conflict").Inc()
				}
				return err
			}
			total += prices[s.ID]
		}

		b := &model.Booking{
			Reference:        uuid.NewString(),
			CustomerID:       customerID,
			ShowtimeID:       showtimeID,
			TotalAmountCents: total,
			Status:           model.BookingPending,
		}
		if err := o.bookings.CreateTx(ctx, tx, b); err != nil {
			return err
		}
		if err := o.bookings.AddSeatsTx(ctx, tx, b.ID, seats); err != nil {
			return err
		}
		if _, err := o.holds.DeactivateBySessionTx(ctx, tx, showtimeID, sessionToken); err != nil {
			return err
		}
		for _, s := range seats {
			b.SeatIDs = append(b.SeatIDs, s.ID)
		}
		booking = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.Bookings.WithLabelValues("created").Inc()
	o.log.WithFields(logrus.Fields{
		"booking_id":  booking.ID,
		"reference":   booking.Reference,
		"showtime_id": showtimeID,
		"customer_id": customerID,
		"seats":       len(booking.SeatIDs),
		"total_cents": booking.TotalAmountCents,
	}).Info("booking created from holds")
	return booking, nil
}

// Confirm finalises a PENDING booking after the external payment-success
// signal: each seat transitions RESERVED -> BOOKED and the booking becomes
// CONFIRMED. Any other starting status yields ErrInvalidState.
func (o *BookingOrchestrator) Confirm(ctx context.Context, bookingID uint64) (*model.Booking, error) {
	now := o.now()
	var booking *model.Booking
	var showtime *model.Showtime

	err := o.runner.Run(ctx, func(tx *sql.Tx) error {
		b, err := o.bookings.GetTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.Status != model.BookingPending {
			return ErrInvalidState
		}
		seats, err := o.seats.GetByIDsTx(ctx, tx, b.ShowtimeID, b.SeatIDs)
		if err != nil {
			return err
		}
		for _, s := range seats {
			if err := o.seats.TransitionTx(ctx, tx, s.ID, s.Version, model.SeatReserved, model.SeatBooked); err != nil {
				if err == repository.ErrSeatConflict {
					monitoring.SeatConflicts.Inc()
				}
				return err
			}
		}
		ok, err := o.bookings.ConfirmTx(ctx, tx, b.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}
		st, err := o.showtimes.GetTx(ctx, tx, b.ShowtimeID)
		if err != nil {
			return err
		}
		b.Status = model.BookingConfirmed
		b.ConfirmedAt = &now
		booking, showtime = b, st
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.Bookings.WithLabelValues("confirmed").Inc()
	o.publishConfirmed(ctx, booking, showtime, now)
	return booking, nil
}

// Cancel transitions a booking to CANCELLED on behalf of its owner. Valid
// from PENDING or CONFIRMED; rejected inside the pre-showtime cutoff
// window. Every seat returns to AVAILABLE from whichever of RESERVED or
// BOOKED it was in. A second cancel fails with ErrInvalidState, never a
// silent success.
func (o *BookingOrchestrator) Cancel(ctx context.Context, bookingID, customerID uint64, reason string) (*model.Booking, error) {
	now := o.now()
	var booking *model.Booking
	var showtime *model.Showtime

	err := o.runner.Run(ctx, func(tx *sql.Tx) error {
		b, err := o.bookings.GetTx(ctx, tx, bookingID)
		if err != nil {
			return err
		}
		if b.CustomerID != customerID {
			return ErrNotOwner
		}
		if !b.Cancellable() {
			return ErrInvalidState
		}
		st, err := o.showtimes.GetTx(ctx, tx, b.ShowtimeID)
		if err != nil {
			return err
		}
		if now.After(st.StartsAt.Add(-o.cancelCutoff)) {
			return ErrTooLate
		}
		seats, err := o.seats.GetByIDsTx(ctx, tx, b.ShowtimeID, b.SeatIDs)
		if err != nil {
			return err
		}
		for _, s := range seats {
			if s.Status == model.SeatAvailable {
				continue
			}
			if err := o.seats.TransitionTx(ctx, tx, s.ID, s.Version, s.Status, model.SeatAvailable); err != nil {
				if err == repository.ErrSeatConflict {
					monitoring.SeatConflicts.Inc()
				}
				return err
			}
		}
		ok, err := o.bookings.CancelTx(ctx, tx, b.ID, reason, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}
		b.Status = model.BookingCancelled
		b.CancelledAt = &now
		b.CancellationReason = &reason
		booking, showtime = b, st
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.Bookings.WithLabelValues("cancelled").Inc()
	o.publishCancelled(ctx, booking, showtime, reason, now)
	return booking, nil
}

// GetForCustomer returns the booking detail view for its owner.
func (o *BookingOrchestrator) GetForCustomer(ctx context.Context, bookingID, customerID uint64) (*repository.BookingDetail, error) {
	return o.bookings.GetForCustomer(ctx, bookingID, customerID)
}

// ListForCustomer returns all of a customer's bookings, newest first.
func (o *BookingOrchestrator) ListForCustomer(ctx context.Context, customerID uint64) ([]repository.BookingDetail, error) {
	return o.bookings.ListForCustomer(ctx, customerID)
}

func (o *BookingOrchestrator) publishConfirmed(ctx context.Context, b *model.Booking, st *model.Showtime, at time.Time) {
	if o.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		Reference:        b.Reference,
		CustomerID:       b.CustomerID,
		ShowtimeID:       b.ShowtimeID,
		MovieTitle:       st.MovieTitle,
		HallName:         st.HallName,
		StartsAt:         st.StartsAt.UTC().Format(time.RFC3339),
		SeatLabels:       o.seatLabels(ctx, b),
		TotalAmountCents: b.TotalAmountCents,
		ConfirmedAt:      at.Format(time.RFC3339),
	}
	if err := o.publisher.BookingConfirmed(ctx, ev); err != nil {
		o.log.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish booking.confirmed")
	}
}

func (o *BookingOrchestrator) publishCancelled(ctx context.Context, b *model.Booking, st *model.Showtime, reason string, at time.Time) {
	if o.publisher == nil {
		return
	}
	ev := queue.BookingCancelledEvent{
		BookingID:   b.ID,
		Reference:   b.Reference,
		CustomerID:  b.CustomerID,
		ShowtimeID:  b.ShowtimeID,
		MovieTitle:  st.MovieTitle,
		SeatLabels:  o.seatLabels(ctx, b),
		Reason:      reason,
		CancelledAt: at.Format(time.RFC3339),
	}
	if err := o.publisher.BookingCancelled(ctx, ev); err != nil {
		o.log.WithError(err).WithField("booking_id", b.ID).Warn("failed to publish booking.cancelled")
	}
}

// seatLabels resolves the booking's seat labels for event payloads. Label
// lookup failures only degrade the event, never the booking.
func (o *BookingOrchestrator) seatLabels(ctx context.Context, b *model.Booking) []string {
	detail, err := o.bookings.GetForCustomer(ctx, b.ID, b.CustomerID)
	if err != nil {
		return nil
	}
	return detail.Seats
}
