package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-booking/internal/middleware"
	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/service"
	"github.com/iliyamo/conference-booking/internal/session"
)

// stubService implements only what each test sets; anything else panics
// through the nil embedded interface.
type stubService struct {
	service.BookingService
	catalog  func() []service.ExhibitionView
	purchase func(service.PurchaseRequest) (model.Ticket, error)
	reserve  func(workshopID string) (model.Reservation, error)
	tickets  func() ([]model.Ticket, error)
	upgrade  func(service.UpgradeRequest) (model.Ticket, error)
	dates    func() ([]string, error)
}

func (s *stubService) Catalog(context.Context) []service.ExhibitionView { return s.catalog() }

func (s *stubService) PurchaseTicket(_ context.Context, _ session.Session, r service.PurchaseRequest) (model.Ticket, error) {
	return s.purchase(r)
}

func (s *stubService) ReserveWorkshop(_ context.Context, _ session.Session, id string) (model.Reservation, error) {
	return s.reserve(id)
}

func (s *stubService) MyTickets(context.Context, session.Session) ([]model.Ticket, error) {
	return s.tickets()
}

func (s *stubService) UpgradeTicket(_ context.Context, _ session.Session, r service.UpgradeRequest) (model.Ticket, error) {
	return s.upgrade(r)
}

func (s *stubService) Dates(context.Context, session.Session) ([]string, error) { return s.dates() }

func catalogOf(names ...string) func() []service.ExhibitionView {
	return func() []service.ExhibitionView {
		out := make([]service.ExhibitionView, 0, len(names))
		for _, n := range names {
			out = append(out, service.ExhibitionView{Name: n})
		}
		return out
	}
}

var caller = session.Session{ID: "s1", AttendeeID: "U1", Role: model.RoleAttendee}

func withCaller(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		middleware.SetSession(c, caller)
		return next(c)
	}
}

func do(e *echo.Echo, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestStatusOf(t *testing.T) {
	cases := map[error]int{
		service.ErrValidation:         http.StatusBadRequest,
		service.ErrInvalidCardNumber:  http.StatusBadRequest,
		service.ErrDuplicateEmail:     http.StatusConflict,
		service.ErrWorkshopFull:       http.StatusConflict,
		service.ErrNotFound:           http.StatusNotFound,
		service.ErrInvalidReservation: http.StatusNotFound,
		service.ErrInvalidCredentials: http.StatusUnauthorized,
		service.ErrAccessDenied:       http.StatusForbidden,
		errors.New("disk full"):       http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, StatusOf(err), err.Error())
	}
}

func TestReserve_MapsErrors(t *testing.T) {
	svc := &stubService{reserve: func(id string) (model.Reservation, error) {
		switch id {
		case "Policy_Simulation_Lab_April 16, 2026":
			return model.Reservation{ID: 4, WorkshopID: id, Active: true}, nil
		case "full":
			return model.Reservation{}, service.ErrWorkshopFull
		}
		return model.Reservation{}, errors.New("boom")
	}}
	h := &ReservationHandler{Svc: svc}
	logger, hook := test.NewNullLogger()
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(logger)
	e.POST("/workshops/:id/reservations", h.Reserve, withCaller)

	rec, body := do(e, http.MethodPost, "/workshops/Policy_Simulation_Lab_April%2016%2C%202026/reservations", "")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Policy_Simulation_Lab_April 16, 2026", body["workshop_id"])

	rec, body = do(e, http.MethodPost, "/workshops/full/reservations", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "workshop_full", body["error"])

	rec, body = do(e, http.MethodPost, "/workshops/other/reservations", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", body["error"])
	assert.Equal(t, "internal server error", body["message"])
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "boom", hook.LastEntry().Data[logrus.ErrorKey].(error).Error())
	assert.Equal(t, "/workshops/other/reservations", hook.LastEntry().Data["path"])
}

func TestReserve_WithoutSession(t *testing.T) {
	h := &ReservationHandler{Svc: &stubService{}}
	e := echo.New()
	e.POST("/workshops/:id/reservations", h.Reserve)

	rec, body := do(e, http.MethodPost, "/workshops/x/reservations", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "session_invalid", body["error"])
}

func TestPurchase_AppliesBundle(t *testing.T) {
	var got service.PurchaseRequest
	svc := &stubService{
		catalog: catalogOf("A", "B"),
		purchase: func(r service.PurchaseRequest) (model.Ticket, error) {
			got = r
			return model.Ticket{ID: 1, Type: r.Type, Price: r.Price, Exhibitions: r.Selected}, nil
		},
	}
	h := &TicketHandler{Svc: svc}
	e := echo.New()
	e.POST("/tickets", h.Purchase, withCaller)

	rec, _ := do(e, http.MethodPost, "/tickets", `{"bundle":"two_exhibitions","exhibitions":["A","B"],"payment_method":"CreditCard","card_number":"4111111111111111"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.ExhibitionPass, got.Type)
	assert.Equal(t, 400.0, got.Price)
	assert.Equal(t, []string{"A", "B"}, got.Selected)

	rec, _ = do(e, http.MethodPost, "/tickets", `{"bundle":"all_access","exhibitions":["A"],"payment_method":"wallet","wallet_id":"w"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.AllAccessPass, got.Type)
	assert.Nil(t, got.Selected)

	for _, body := range []string{
		`{"bundle":"vip","payment_method":"Wallet"}`,
		`{"bundle":"one_exhibition","exhibitions":["A","B"],"payment_method":"Wallet"}`,
		`{"bundle":"one_exhibition","exhibitions":["Z"],"payment_method":"Wallet"}`,
		`{"bundle":"one_exhibition","exhibitions":["A"],"payment_method":"cash"}`,
	} {
		rec, _ = do(e, http.MethodPost, "/tickets", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestUpgrade_QuotesCost(t *testing.T) {
	var got service.UpgradeRequest
	svc := &stubService{
		catalog: catalogOf("A", "B", "C"),
		tickets: func() ([]model.Ticket, error) {
			return []model.Ticket{{ID: 5, Type: model.ExhibitionPass, Price: 200, Exhibitions: []string{"A"}}}, nil
		},
		upgrade: func(r service.UpgradeRequest) (model.Ticket, error) {
			got = r
			return model.Ticket{ID: r.TicketID}, nil
		},
	}
	h := &TicketHandler{Svc: svc}
	e := echo.New()
	e.POST("/tickets/:id/upgrade", h.Upgrade, withCaller)

	rec, body := do(e, http.MethodPost, "/tickets/5/upgrade", `{"to":"exhibitions","exhibitions":["A","B","C","C"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"B", "C"}, got.Additional)
	assert.Equal(t, 400.0, got.Cost)
	assert.Equal(t, 400.0, body["charged"])

	rec, _ = do(e, http.MethodPost, "/tickets/5/upgrade", `{"to":"all_access"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AllAccessPass, got.NewType)
	assert.Equal(t, 300.0, got.Cost)

	rec, _ = do(e, http.MethodPost, "/tickets/9/upgrade", `{"to":"all_access"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(e, http.MethodPost, "/tickets/5/upgrade", `{"to":"gold"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCapacity_WithoutDateListsDates(t *testing.T) {
	svc := &stubService{dates: func() ([]string, error) { return []string{"April 15, 2026"}, nil }}
	h := &AdminHandler{Svc: svc}
	e := echo.New()
	e.GET("/admin/capacity", h.Capacity, withCaller)

	rec, body := do(e, http.MethodGet, "/admin/capacity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"April 15, 2026"}, body["dates"])
}

func TestHealth(t *testing.T) {
	e := echo.New()
	e.GET("/healthz", Health)

	rec, _ := do(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
