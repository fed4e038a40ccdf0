// Package monitoring exposes Prometheus instrumentation for the booking
// core. Counters live on the default registry and are served from the
// /metrics route.
package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HoldsAcquired counts seats successfully placed on hold.
	HoldsAcquired = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_holds_acquired_total",
		Help: "Number of seats successfully placed on hold.",
	})

	// HoldsRejected counts hold requests rejected per reason
	// (unavailable, not_found).
	HoldsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_holds_rejected_total",
		Help: "Number of hold requests rejected, by reason.",
	}, []string{"reason"})

	// HoldsReleased counts seats released before expiry, explicitly or by
	// conversion into a booking.
	HoldsReleased = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_holds_released_total",
		Help: "Number of holds released before expiry.",
	})

	// HoldsReaped counts holds deactivated by expiry reaping.
	HoldsReaped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_holds_reaped_total",
		Help: "Number of expired holds reaped.",
	})

	// SeatConflicts counts compare-and-swap transitions lost to a
	// concurrent writer.
	SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_seat_conflicts_total",
		Help: "Number of seat state transitions lost to a concurrent writer.",
	})

	// Bookings counts booking lifecycle outcomes (created, confirmed,
	// cancelled, failed).
	Bookings = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_outcomes_total",
		Help: "Number of booking operations, by outcome.",
	}, []string{"outcome"})

	// TxRetries counts transaction attempts repeated after a transient
	// storage conflict.
	TxRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "booking_tx_retries_total",
		Help: "Number of transaction retries after transient storage conflicts.",
	})
)
