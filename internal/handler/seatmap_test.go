package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/middleware"
	"github.com/iliyamo/showtime-booking/internal/model"
	"github.com/iliyamo/showtime-booking/internal/repository"
	"github.com/iliyamo/showtime-booking/internal/service"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func newStack(db *sql.DB) (*repository.SeatRepo, *repository.ShowtimeRepo, *service.HoldManager) {
	runner := database.NewTxRunner(db, 1, time.Millisecond, nil, nil)
	seats := repository.NewSeatRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	holds := service.NewHoldManager(runner, seats, repository.NewHoldRepo(db), showtimes, 10*time.Minute, nil)
	return seats, showtimes, holds
}

func showtimeRows(id uint64, startsAt time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "movie_title", "hall_name", "starts_at", "ends_at", "base_price_cents", "status",
	}).AddRow(id, "Dune", "Hall 1", startsAt, startsAt.Add(2*time.Hour), 1500, "SCHEDULED")
}

func TestSeatMapStates(t *testing.T) {
	db, mock := newMock(t)
	now := time.Now().UTC()
	start := now.Add(3 * time.Hour)

	mock.ExpectQuery("SELECT (.+) FROM showtimes WHERE id = \\?").
		WithArgs(uint64(1)).WillReturnRows(showtimeRows(1, start))

	seatCols := []string{"id", "showtime_id", "row_label", "seat_number", "category",
		"price_cents", "status", "version", "created_at", "updated_at"}
	rows := sqlmock.NewRows(seatCols).
		AddRow(10, 1, "A", 1, model.CategoryStandard, 1500, model.SeatAvailable, 0, now, now).
		AddRow(11, 1, "A", 2, model.CategoryStandard, 1500, model.SeatAvailable, 0, now, now).
		AddRow(12, 1, "A", 3, model.CategoryVIP, 2500, model.SeatBooked, 2, now, now).
		AddRow(13, 1, "A", 4, model.CategoryStandard, 1500, model.SeatAvailable, 0, now, now)
	mock.ExpectQuery("SELECT (.+) FROM seats").
		WithArgs(uint64(1)).WillReturnRows(rows)

	holdCols := []string{"id", "seat_id", "showtime_id", "customer_id", "session_token",
		"hold_token", "locked_at", "expires_at", "is_active"}
	exp := now.Add(5 * time.Minute)
	mock.ExpectQuery("SELECT (.+) FROM seat_holds").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(holdCols).
			AddRow(1, 10, 1, 2, "sess-a", "tok1", now, exp, true).
			AddRow(2, 11, 1, 9, "sess-b", "tok2", now, exp, true))

	seats, showtimes, holds := newStack(db)
	h := NewSeatMapHandler(seats, showtimes, holds)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/showtimes/1/seats", nil)
	req.Header.Set(middleware.SessionHeader, "sess-a")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/showtimes/:id/seats")
	c.SetParamNames("id")
	c.SetParamValues("1")

	require.NoError(t, h.ByShowtime(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Seats []struct {
			SeatID uint64 `json:"seat_id"`
			Label  string `json:"label"`
			State  string `json:"state"`
		} `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Seats, 4)

	states := map[uint64]string{}
	for _, s := range body.Seats {
		states[s.SeatID] = s.State
	}
	assert.Equal(t, "held_by_me", states[10])
	assert.Equal(t, "held_by_others", states[11])
	assert.Equal(t, "booked", states[12])
	assert.Equal(t, "available", states[13])
	assert.Equal(t, "A1", body.Seats[0].Label)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSeatMapUnknownShowtime(t *testing.T) {
	db, mock := newMock(t)

	mock.ExpectQuery("SELECT (.+) FROM showtimes WHERE id = \\?").
		WithArgs(uint64(99)).WillReturnError(sql.ErrNoRows)

	seats, showtimes, holds := newStack(db)
	h := NewSeatMapHandler(seats, showtimes, holds)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/showtimes/99/seats", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/showtimes/:id/seats")
	c.SetParamNames("id")
	c.SetParamValues("99")

	require.NoError(t, h.ByShowtime(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPathIDRejectsGarbage(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("abc")

	_, ok := pathID(c, "id")
	assert.False(t, ok)

	c.SetParamValues("0")
	_, ok = pathID(c, "id")
	assert.False(t, ok)

	c.SetParamValues("7")
	id, ok := pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, uint64(7), id)
}
