package handler // handler defines the HTTP surface of the booking core

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/showtime-booking/internal/database"
	"github.com/iliyamo/showtime-booking/internal/middleware"
)

// getUserID extracts the customer id placed in context by the JWT
// middleware and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// identity pulls both the customer id and the session token, writing the
// appropriate error response and reporting false when either is missing.
// Hold and booking routes require both: the customer proves who is
// paying, the session scopes the selection.
func identity(c echo.Context) (customerID uint64, sessionToken string, ok bool) {
	customerID, err := getUserID(c)
	if err != nil {
		_ = c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		return 0, "", false
	}
	sessionToken = middleware.SessionToken(c)
	if sessionToken == "" {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "missing session token"})
		return 0, "", false
	}
	return customerID, sessionToken, true
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id != 0
}

// storageError is the fallback for errors no route-specific branch
// claimed. Exhausted transaction retries are transient and worth
// re-attempting by the client; anything else is a plain 500.
func storageError(c echo.Context, err error) error {
	if errors.Is(err, database.ErrTxExhausted) {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporarily unable to process the request, please try again"})
	}
	c.Logger().Errorf("internal error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
}
