package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/pass"
	"github.com/iliyamo/conference-booking/internal/service"
)

// AdminHandler serves the administrator dashboard. Routes are mounted
// behind RequireRole("ADMIN"); the engine checks the role again.
type AdminHandler struct {
	Svc  service.BookingService
	Pass pass.Renderer
}

type modifyTicketReq struct {
	Type  string   `json:"ticket_type"`
	Price *float64 `json:"price"`
}

func (h *AdminHandler) Orders(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	report, err := h.Svc.Orders(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}

// ModifyTicket sets a ticket's variant and price.
func (h *AdminHandler) ModifyTicket(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	var req modifyTicketReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	tt, err := model.ParseTicketType(req.Type)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if req.Price == nil {
		return badRequest(c, "price required")
	}
	t, err := h.Svc.ModifyTicket(c.Request().Context(), sess, id, tt, *req.Price)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

func (h *AdminHandler) DeleteTicket(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	if err := h.Svc.DeleteTicket(c.Request().Context(), sess, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) Analytics(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	stats, err := h.Svc.Analytics(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": stats})
}

// Capacity reports seats per workshop for ?date=. Without a date it
// returns the list of conference dates to choose from.
func (h *AdminHandler) Capacity(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	date := c.QueryParam("date")
	if date == "" {
		dates, err := h.Svc.Dates(ctx, sess)
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"dates": dates})
	}
	rows, err := h.Svc.Capacity(ctx, sess, date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"date": date, "items": rows})
}

func (h *AdminHandler) Payments(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Svc.Payments(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

type verifyPassReq struct {
	Payload string `json:"payload"`
}

// VerifyPass checks a scanned QR payload at the door. The signature must
// match and the ticket must still be held by the same attendee; the
// current ticket type is reported since it may have been upgraded.
func (h *AdminHandler) VerifyPass(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	var req verifyPassReq
	if err := c.Bind(&req); err != nil || req.Payload == "" {
		return badRequest(c, "payload required")
	}
	scan, err := h.Pass.Verify(req.Payload)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_pass", "message": "pass signature does not match"})
	}
	report, err := h.Svc.Orders(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	for _, o := range report.Orders {
		if o.TicketID == scan.TicketID && o.AttendeeID == scan.AttendeeID {
			return c.JSON(http.StatusOK, echo.Map{
				"valid":       true,
				"ticket_id":   o.TicketID,
				"attendee_id": o.AttendeeID,
				"name":        o.Name,
				"type":        o.Type,
				"exhibitions": o.Exhibitions,
			})
		}
	}
	return writeError(c, service.ErrNotFound)
}
