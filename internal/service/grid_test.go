package service

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/repository"
)

func TestBuildSeatGrid(t *testing.T) {
	grid := BuildSeatGrid(1, 1000)
	require.Len(t, grid, 80)

	byCategory := map[string]int{}
	for _, s := range grid {
		byCategory[s.Category]++
	}
	assert.Equal(t, 20, byCategory[model.CategoryVIP])
	assert.Equal(t, 50, byCategory[model.CategoryStandard])
	assert.Equal(t, 10, byCategory[model.CategoryAccessible])

	assert.Equal(t, "A", grid[0].RowLabel)
	assert.Equal(t, uint32(1), grid[0].SeatNumber)
	assert.Equal(t, uint32(1500), grid[0].PriceCents, "VIP is one and a half times base")
	assert.Equal(t, "H", grid[79].RowLabel)
	assert.Equal(t, uint32(10), grid[79].SeatNumber)
	assert.Equal(t, uint32(1000), grid[79].PriceCents)
}

func TestProvisionSeatGrid(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO seats").WillReturnResult(sqlmock.NewResult(1, 80))
	mock.ExpectCommit()

	runner := database.NewTxRunner(db, 1, 0, nil, nil)
	err := ProvisionSeatGrid(context.Background(), runner, repository.NewSeatRepo(db), 1, 1000)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
