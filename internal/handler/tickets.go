package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/pass"
	"github.com/iliyamo/conference-booking/internal/service"
)

// TicketHandler serves pass purchase, upgrade, refund and printout.
// Bundle rules and upgrade pricing are applied here; the engine receives
// a concrete type, price and cost.
type TicketHandler struct {
	Svc  service.BookingService
	Pass pass.Renderer
}

type purchaseReq struct {
	Bundle      string   `json:"bundle"`
	Exhibitions []string `json:"exhibitions"`
	Method      string   `json:"payment_method"`
	CardNumber  string   `json:"card_number"`
	CVV         string   `json:"cvv"`
	WalletID    string   `json:"wallet_id"`
}

type upgradeReq struct {
	To          string   `json:"to"` // all_access | exhibitions
	Exhibitions []string `json:"exhibitions"`
}

func (h *TicketHandler) knownExhibition(c echo.Context) func(string) bool {
	names := map[string]bool{}
	for _, ex := range h.Svc.Catalog(c.Request().Context()) {
		names[ex.Name] = true
	}
	return func(n string) bool { return names[n] }
}

// Purchase buys a bundle: one_exhibition, two_exhibitions or all_access.
func (h *TicketHandler) Purchase(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	var req purchaseReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	bundle, ok := model.LookupBundle(req.Bundle)
	if !ok {
		return badRequest(c, fmt.Sprintf("unknown bundle %q", req.Bundle))
	}
	if err := bundle.CheckSelection(req.Exhibitions, h.knownExhibition(c)); err != nil {
		return badRequest(c, err.Error())
	}
	method, err := model.ParsePaymentMethod(req.Method)
	if err != nil {
		return badRequest(c, err.Error())
	}

	in := service.PurchaseRequest{
		Type:    bundle.Type,
		Price:   bundle.Price,
		Method:  method,
		Details: model.PaymentDetails{CardNumber: req.CardNumber, CVV: req.CVV, WalletID: req.WalletID},
	}
	if bundle.Type == model.ExhibitionPass {
		in.Selected = req.Exhibitions
	}
	t, err := h.Svc.PurchaseTicket(c.Request().Context(), sess, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *TicketHandler) List(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	items, err := h.Svc.MyTickets(c.Request().Context(), sess)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Upgrade quotes the upgrade from the current ticket and applies it.
func (h *TicketHandler) Upgrade(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	var req upgradeReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx := c.Request().Context()

	mine, err := h.Svc.MyTickets(ctx, sess)
	if err != nil {
		return writeError(c, err)
	}
	var cur *model.Ticket
	for i := range mine {
		if mine[i].ID == id {
			cur = &mine[i]
		}
	}
	if cur == nil {
		return writeError(c, service.ErrNotFound)
	}

	up := service.UpgradeRequest{TicketID: id}
	switch req.To {
	case "all_access":
		up.NewType = model.AllAccessPass
		up.Cost = model.UpgradeCost(*cur, true, 0)
	case "exhibitions":
		known := h.knownExhibition(c)
		seen := map[string]bool{}
		for _, name := range req.Exhibitions {
			if !known(name) {
				return badRequest(c, fmt.Sprintf("unknown exhibition %q", name))
			}
			if !cur.GrantsAccess(name) && !seen[name] {
				seen[name] = true
				up.Additional = append(up.Additional, name)
			}
		}
		up.NewType = model.ExhibitionPass
		up.Cost = model.UpgradeCost(*cur, false, len(up.Additional))
	default:
		return badRequest(c, `to must be "all_access" or "exhibitions"`)
	}

	t, err := h.Svc.UpgradeTicket(ctx, sess, up)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"ticket": t, "charged": up.Cost})
}

// Refund returns the ticket and cancels the caller's reservations.
func (h *TicketHandler) Refund(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	if err := h.Svc.RefundTicket(c.Request().Context(), sess, id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PrintPass streams the ticket's PDF pass.
func (h *TicketHandler) PrintPass(c echo.Context) error {
	sess, err := currentSession(c)
	if err != nil {
		return writeError(c, err)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return badRequest(c, "invalid ticket id")
	}
	v, err := h.Svc.Pass(c.Request().Context(), sess, id)
	if err != nil {
		return writeError(c, err)
	}
	pdf, err := h.Pass.Render(v)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=pass-%d.pdf", id))
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}
