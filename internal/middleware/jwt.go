package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "context"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/conference-booking/internal/session"
    "github.com/iliyamo/conference-booking/internal/utils"
)

// SessionResolver looks up a live session by ID.  *session.Manager
// satisfies it.
type SessionResolver interface {
    Resolve(ctx context.Context, id string) (session.Session, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token,
// resolves the session it points at and stores that session in the
// request context.  A token whose session was closed (logout, account
// deletion) is rejected even before it expires.  Handlers read the
// principal with CurrentSession.
func JWTAuth(secret string, sessions SessionResolver) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // A valid header starts with "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            claims, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            sess, err := sessions.Resolve(c.Request().Context(), claims.SessionID)
            if err != nil || sess.AttendeeID != claims.AttendeeID {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session expired"})
            }

            SetSession(c, sess)
            return next(c)
        }
    }
}

const sessionKey = "session"

// SetSession stores the principal of the request. CurrentSession is the
// only reader; identity.go and role.go go through it.
func SetSession(c echo.Context, s session.Session) {
    c.Set(sessionKey, s)
}

// CurrentSession returns the session stored by JWTAuth.
func CurrentSession(c echo.Context) (session.Session, bool) {
    s, ok := c.Get(sessionKey).(session.Session)
    return s, ok
}
