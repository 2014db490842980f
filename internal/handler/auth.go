package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/middleware"
	"github.com/iliyamo/conference-booking/internal/service"
	"github.com/iliyamo/conference-booking/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Svc       service.BookingService
	JWTSecret string
}

func NewAuthHandler(svc service.BookingService, jwtSecret string) *AuthHandler {
	return &AuthHandler{Svc: svc, JWTSecret: jwtSecret}
}

// ----- DTOs -----

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type userPart struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Register creates an attendee account. The client logs in afterwards.
func (h *AuthHandler) Register(c echo.Context) error {
	var req service.RegisterInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	a, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": a})
}

// Login verifies the credential, opens a session and returns an access
// token bound to it.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email/password required")
	}

	sess, err := h.Svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	access, err := utils.NewAccessToken(h.JWTSecret, utils.Claims{
		SessionID:  sess.ID,
		AttendeeID: sess.AttendeeID,
		Role:       sess.Role,
	}, sess.ExpiresAt)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, authResp{
		User:   userPart{ID: sess.AttendeeID, Email: sess.Email, Role: sess.Role},
		Access: tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Logout closes the session the token points at.
func (h *AuthHandler) Logout(c echo.Context) error {
	sess, ok := middleware.CurrentSession(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Svc.Logout(c.Request().Context(), sess); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
