package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/handler"
	"github.com/iliyamo/conference-booking/internal/middleware"
	"github.com/iliyamo/conference-booking/internal/model"
)

// RegisterAttendee registers endpoints acting on the caller's own account:
// profile, tickets and workshop reservations.  All routes require a valid
// access token.  Administrators may use them too; the engine scopes every
// call to the session's own records.
func RegisterAttendee(e *echo.Echo, p *handler.ProfileHandler, t *handler.TicketHandler, r *handler.ReservationHandler, auth echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		auth,
		middleware.RequireRole(model.RoleAttendee, model.RoleAdmin),
	)

	// ---- Profile ----
	g.GET("/me", p.Get)
	g.PUT("/me", p.Update)
	g.DELETE("/me", p.Delete)

	// ---- Tickets ----
	g.POST("/tickets", t.Purchase)
	g.GET("/tickets", t.List)
	g.POST("/tickets/:id/upgrade", t.Upgrade)
	g.DELETE("/tickets/:id", t.Refund)
	g.GET("/tickets/:id/pass", t.PrintPass)

	// ---- Reservations ----
	g.POST("/workshops/:id/reservations", r.Reserve)
	g.DELETE("/reservations/:id", r.Cancel)
	g.GET("/schedule", r.Schedule)
}
