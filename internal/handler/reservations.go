package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/service"
)

// ReservationHandler serves workshop seat booking for the caller.
type ReservationHandler struct {
	Svc service.BookingService
}

func (h *ReservationHandler) Reserve(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	r, err := h.Svc.ReserveWorkshop(c.Request().Context(), sess, textParam(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *ReservationHandler) Cancel(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid reservation id")
	}
	if err := h.Svc.CancelReservation(c.Request().Context(), sess, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Schedule lists the caller's active reservations with workshop details.
func (h *ReservationHandler) Schedule(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Svc.MySchedule(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
