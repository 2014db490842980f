package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/service"
)

// CatalogHandler exposes the exhibition catalog and purchase bundles to
// unauthenticated callers.
type CatalogHandler struct {
	Svc service.BookingService
}

// Exhibitions returns {"items": [...]} with one entry per exhibition.
func (h *CatalogHandler) Exhibitions(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": h.Svc.Catalog(c.Request().Context())})
}

// Workshops lists an exhibition's workshops, optionally filtered by
// ?date=April 15, 2026.
func (h *CatalogHandler) Workshops(c echo.Context) error {
	items, err := h.Svc.Workshops(c.Request().Context(), textParam(c, "name"), c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *CatalogHandler) Workshop(c echo.Context) error {
	w, err := h.Svc.Workshop(c.Request().Context(), textParam(c, "id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}

func (h *CatalogHandler) Bundles(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"items": model.Bundles})
}
