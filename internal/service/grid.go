package service

import (
	"context"
	"database/sql"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/repository"
)

// Standard hall layout: eight rows of ten seats. Rows A and B are VIP at
// one and a half times the base price, row H is the accessible row, the
// rest are standard.
const (
	gridRows        = 8
	gridSeatsPerRow = 10
)

// BuildSeatGrid returns the seat rows for a showtime's hall, priced from
// the showtime's base price. The grid is fixed; halls with other layouts
// are out of scope.
func BuildSeatGrid(showtimeID uint64, basePriceCents uint32) []model.Seat {
	seats := make([]model.Seat, 0, gridRows*gridSeatsPerRow)
	for r := 0; r < gridRows; r++ {
		row := string(rune('A' + r))
		category := model.CategoryStandard
		price := basePriceCents
		switch {
		case r < 2:
			category = model.CategoryVIP
			price = basePriceCents + basePriceCents/2
		case r == gridRows-1:
			category = model.CategoryAccessible
		}
		for n := 1; n <= gridSeatsPerRow; n++ {
			seats = append(seats, model.Seat{
				ShowtimeID: showtimeID,
				RowLabel:   row,
				SeatNumber: uint32(n),
				Category:   category,
				PriceCents: price,
			})
		}
	}
	return seats
}

// ProvisionSeatGrid instantiates the full grid for a showtime in one unit
// of work. The schema defaults every seat to AVAILABLE at version 0.
func ProvisionSeatGrid(ctx context.Context, runner *database.TxRunner, seats *repository.SeatRepo, showtimeID uint64, basePriceCents uint32) error {
	grid := BuildSeatGrid(showtimeID, basePriceCents)
	return runner.Run(ctx, func(tx *sql.Tx) error {
		return seats.CreateBulkTx(ctx, tx, grid)
	})
}
