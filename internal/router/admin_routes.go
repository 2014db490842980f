package router

// Administrator dashboard routes.  They are kept apart from the attendee
// routes so the ADMIN role check wraps the whole group.

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/handler"
	"github.com/iliyamo/conference-booking/internal/middleware"
	"github.com/iliyamo/conference-booking/internal/model"
)

// RegisterAdmin registers /v1/admin endpoints behind a valid access token
// and the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, auth echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		auth,
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/orders", h.Orders)
	g.PATCH("/tickets/:id", h.ModifyTicket)
	g.DELETE("/tickets/:id", h.DeleteTicket)
	g.GET("/analytics", h.Analytics)
	g.GET("/capacity", h.Capacity)
	g.GET("/payments", h.Payments)
	g.POST("/passes/verify", h.VerifyPass)
}
