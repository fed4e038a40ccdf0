package middleware

// identity.go provides helpers shared across middleware files for reading
// the caller's identity out of the Echo context: the customer id set by
// JWTAuth and the session token scoping seat holds.

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SessionHeader carries the opaque session token scoping seat holds. A
// customer may run several sessions (two browser tabs, phone and laptop)
// and holds belong to the session, not the account.
const SessionHeader = "X-Session-Token"

// SessionToken extracts the caller's session token: the X-Session-Token
// header when present, otherwise the "sid" claim of the JWT. Returns ""
// when neither exists; handlers must reject such requests on hold and
// booking routes.
func SessionToken(c echo.Context) string {
	if v := c.Request().Header.Get(SessionHeader); v != "" {
		return v
	}
	if cl, ok := c.Get("claims").(jwt.MapClaims); ok {
		if v, ok := cl["sid"].(string); ok {
			return v
		}
	}
	return ""
}

// currentUserID returns a best-effort string form of the authenticated
// user for rate-limit keys. Unlike handlers, the limiter tolerates
// anonymous callers.
func currentUserID(c echo.Context) string {
	if v := c.Get("user_id"); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "anon"
}
