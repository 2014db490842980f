package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/handler"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Used by load balancers or monitoring systems to verify that the
	// service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Register and login live
// under /v1/auth without a session; logout needs the access token so it
// can close the session the token points at.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout, auth)
}

// RegisterPublic registers unauthenticated browse endpoints.  The cache
// middleware is applied to the catalog reads only; bundles are static.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1", cache)
	g.GET("/exhibitions", p.Exhibitions)
	g.GET("/exhibitions/:name/workshops", p.Workshops)
	g.GET("/workshops/:id", p.Workshop)

	e.GET("/v1/bundles", p.Bundles)
}
