package handler

import (
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/middleware"
	"github.com/iliyamo/conference-booking/internal/service"
	"github.com/iliyamo/conference-booking/internal/session"
)

// currentSession returns the caller's session or ErrSessionInvalid when
// the route was mounted without JWTAuth.
func currentSession(c echo.Context) (session.Session, error) {
	s, ok := middleware.CurrentSession(c)
	if !ok {
		return session.Session{}, service.ErrSessionInvalid
	}
	return s, nil
}

func idParam(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

// textParam returns a path parameter with percent-escapes decoded.
// Exhibition names and workshop IDs contain spaces and punctuation.
func textParam(c echo.Context, name string) string {
	raw := c.Param(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}
