package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/service"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	Svc service.BookingService
}

func (h *ProfileHandler) Get(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	a, err := h.Svc.Profile(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Update replaces name, email and phone; an empty password keeps the
// current one.
func (h *ProfileHandler) Update(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	var req service.ProfileInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	a, err := h.Svc.UpdateProfile(c.Request().Context(), sess, req)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}

// Delete removes the account, releasing its seats.
func (h *ProfileHandler) Delete(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	if err := h.Svc.DeleteAccount(c.Request().Context(), sess); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
