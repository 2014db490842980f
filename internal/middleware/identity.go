package middleware

// identity.go holds the principal lookup shared by the rate limiter and
// any middleware that runs after JWTAuth.

import "github.com/labstack/echo/v4"

// userID returns the authenticated attendee ID, or "guest" when the
// request carries no session.
func userID(c echo.Context) string {
    if s, ok := CurrentSession(c); ok && s.AttendeeID != "" {
        return s.AttendeeID
    }
    return "guest"
}
