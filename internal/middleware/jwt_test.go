package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func invoke(t *testing.T, header string) (echo.Context, *httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	return c, rec, reached
}

func TestJWTAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"sub": "42", "sid": "sess-a"})
	c, rec, reached := invoke(t, "Bearer "+token)

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "42", c.Get("user_id"))
}

func TestJWTAuthRejectsMissingHeader(t *testing.T) {
	_, rec, reached := invoke(t, "")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJWTAuthRejectsWrongSecret(t *testing.T) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "42"})
	s, err := tok.SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, rec, reached := invoke(t, "Bearer "+s)
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionTokenPrefersHeader(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(SessionHeader, "sess-header")
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("claims", jwt.MapClaims{"sid": "sess-claim"})

	assert.Equal(t, "sess-header", SessionToken(c))
}

func TestSessionTokenFallsBackToClaim(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set("claims", jwt.MapClaims{"sid": "sess-claim"})

	assert.Equal(t, "sess-claim", SessionToken(c))
}

func TestSessionTokenEmptyWithoutEither(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	assert.Equal(t, "", SessionToken(c))
}
