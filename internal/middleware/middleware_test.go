package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-booking/internal/config"
	"github.com/iliyamo/conference-booking/internal/session"
	"github.com/iliyamo/conference-booking/internal/utils"
)

const secret = "test-secret"

func newSessions(t *testing.T) (*session.Manager, session.Session) {
	t.Helper()
	m := session.NewManager(session.NewMemoryStore(), time.Hour)
	s, err := m.Open(context.Background(), "U1", "ana@x.io", "ATTENDEE")
	require.NoError(t, err)
	return m, s
}

func bearer(t *testing.T, s session.Session) string {
	t.Helper()
	tok, err := utils.NewAccessToken(secret, utils.Claims{SessionID: s.ID, AttendeeID: s.AttendeeID, Role: s.Role}, s.ExpiresAt)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func serve(e *echo.Echo, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	m, s := newSessions(t)
	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		got, ok := CurrentSession(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, got.AttendeeID)
	}, JWTAuth(secret, m))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, s))
	rec := serve(e, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "U1", rec.Body.String())

	// A closed session rejects a still-valid token.
	require.NoError(t, m.Close(context.Background(), s.ID))
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, s))
	assert.Equal(t, http.StatusUnauthorized, serve(e, req).Code)
}

func TestRequireRole(t *testing.T) {
	m, s := newSessions(t)
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
	e.GET("/admin", ok, JWTAuth(secret, m), RequireRole("ADMIN"))
	e.GET("/attendee", ok, JWTAuth(secret, m), RequireRole("ATTENDEE", "ADMIN"))

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", bearer(t, s))
	assert.Equal(t, http.StatusForbidden, serve(e, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/attendee", nil)
	req.Header.Set("Authorization", bearer(t, s))
	assert.Equal(t, http.StatusNoContent, serve(e, req).Code)
}

func TestNewTokenBucket_MemoryFallback(t *testing.T) {
	cfg := config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Hour,
		TTL:            time.Hour,
		KeyStrategy:    "ip",
		Prefix:         "rl",
	}
	e := echo.New()
	e.Use(NewTokenBucket(cfg, nil))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		codes = append(codes, serve(e, req).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestNewTokenBucket_Disabled(t *testing.T) {
	e := echo.New()
	e.Use(NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil))
	e.GET("/x", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, serve(e, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
	}
}

func TestSetSession_OnlySessionKey(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.Equal(t, "guest", userID(c))

	SetSession(c, session.Session{ID: "s1", AttendeeID: "U7", Role: "ADMIN"})

	got, ok := CurrentSession(c)
	require.True(t, ok)
	assert.Equal(t, "U7", got.AttendeeID)
	assert.Equal(t, "U7", userID(c))
	assert.Nil(t, c.Get("user_id"))
	assert.Nil(t, c.Get("role"))
}

func TestRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/tickets", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/tickets")

	assert.Equal(t, "rl:ip:10.0.0.9", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "ip"}, c))
	assert.Equal(t, "rl:user:guest:route:GET /v1/tickets", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "user_route"}, c))
	assert.Equal(t, "rl:ip:10.0.0.9:user:guest:route:GET /v1/tickets", rateKey(config.RateLimitConfig{Prefix: "rl", KeyStrategy: "bogus"}, c))
}

func TestNewRedisCache_PassthroughWithoutClient(t *testing.T) {
	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{Enabled: true, TTL: time.Second, Prefix: "catalog"}, nil))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"))
}

func TestTeeWriter_StopsCopyingPastLimit(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &teeWriter{ResponseWriter: rec, status: http.StatusOK, limit: 4}

	_, _ = w.Write([]byte("abc"))
	assert.False(t, w.overflow)
	_, _ = w.Write([]byte("def"))

	assert.True(t, w.overflow)
	assert.Zero(t, w.buf.Len())
	assert.Equal(t, "abcdef", rec.Body.String())
}

func TestCatalogKey_DistinguishesQuery(t *testing.T) {
	e := echo.New()
	key := func(target string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/exhibitions/:name/workshops")
		return catalogKey("catalog", c)
	}
	a := key("/v1/exhibitions/A/workshops?date=x")
	assert.Equal(t, a, key("/v1/exhibitions/A/workshops?date=x"))
	assert.NotEqual(t, a, key("/v1/exhibitions/A/workshops?date=y"))
	assert.NotEqual(t, a, key("/v1/exhibitions/B/workshops?date=x"))
	assert.Contains(t, a, "catalog:")
}
