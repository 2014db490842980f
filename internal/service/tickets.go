package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/queue"
	"github.com/iliyamo/conference-booking/internal/repository"
	"github.com/iliyamo/conference-booking/internal/session"
)

// PurchaseRequest describes a pass purchase. Selected is only read for
// exhibition passes.
type PurchaseRequest struct {
	Type     model.TicketType
	Price    float64
	Method   model.PaymentMethod
	Details  model.PaymentDetails
	Selected []string
}

// UpgradeRequest either adds exhibitions to an exhibition pass (NewType
// ExhibitionPass, Cost added to the price) or converts the pass to
// all-access at the fixed all-access price.
type UpgradeRequest struct {
	TicketID   uint64
	NewType    model.TicketType
	Cost       float64
	Additional []string
}

func (s *bookingService) PurchaseTicket(ctx context.Context, sess session.Session, req PurchaseRequest) (model.Ticket, error) {
	masked, err := maskPayment(req.Method, req.Details)
	if err != nil {
		return model.Ticket{}, err
	}
	if req.Price < 0 {
		return model.Ticket{}, validationf("price must not be negative")
	}
	if req.Type != model.ExhibitionPass && req.Type != model.AllAccessPass {
		return model.Ticket{}, validationf("unknown ticket type %q", req.Type)
	}

	var out model.Ticket
	err = s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		if req.Type == model.ExhibitionPass {
			if len(req.Selected) == 0 {
				return validationf("select at least one exhibition")
			}
			for _, name := range req.Selected {
				if _, ok := tx.Exhibition(name); !ok {
					return validationf("unknown exhibition %q", name)
				}
			}
		}

		now := s.now()
		id := tx.NextID(repository.CollTickets)
		tx.AddPayment(model.Payment{
			ID:         tx.NextID(repository.CollPayments),
			AttendeeID: a.ID,
			TicketID:   id,
			Amount:     req.Price,
			Method:     req.Method,
			Details:    masked,
			Timestamp:  now,
		})
		var t model.Ticket
		if req.Type == model.AllAccessPass {
			t = model.NewAllAccessPass(id, a.ID, req.Price, now)
		} else {
			t = model.NewExhibitionPass(id, a.ID, req.Price, req.Selected, now)
		}
		out = *tx.AddTicket(t)
		a.TicketIDs = append(a.TicketIDs, id)
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	s.log.WithFields(logrus.Fields{
		"attendee_id": out.AttendeeID,
		"ticket_id":   out.ID,
		"ticket_type": out.Type,
		"price":       out.Price,
	}).Info("ticket purchased")
	s.emit(ctx, queue.Event{
		Type:       queue.TypeTicketPurchased,
		AttendeeID: out.AttendeeID,
		TicketID:   out.ID,
		TicketType: string(out.Type),
		Amount:     out.Price,
	})
	return out, nil
}

// ownedTicket returns the ticket only when it belongs to the attendee.
func ownedTicket(tx *repository.Tx, a *model.Attendee, id uint64) (*model.Ticket, error) {
	t, ok := tx.Ticket(id)
	if !ok || !a.OwnsTicket(id) {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *bookingService) RefundTicket(ctx context.Context, sess session.Session, ticketID uint64) error {
	var events []queue.Event
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		t, err := ownedTicket(tx, a, ticketID)
		if err != nil {
			return err
		}
		events = s.refund(tx, a, t)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"attendee_id": sess.AttendeeID, "ticket_id": ticketID}).Info("ticket refunded")
	s.emit(ctx, events...)
	return nil
}

// refund cancels all of the owner's active reservations, removes the
// ticket and appends a reversing payment.
func (s *bookingService) refund(tx *repository.Tx, a *model.Attendee, t *model.Ticket) []queue.Event {
	events := s.releaseReservations(tx, a)

	method := model.PaymentMethod("")
	for _, p := range tx.Payments() {
		if p.TicketID == t.ID && p.Amount > 0 {
			method = p.Method
		}
	}
	tx.AddPayment(model.Payment{
		ID:         tx.NextID(repository.CollPayments),
		AttendeeID: a.ID,
		TicketID:   t.ID,
		Amount:     -t.Price,
		Method:     method,
		Details:    fmt.Sprintf("Refund of ticket #%d", t.ID),
		Timestamp:  s.now(),
	})
	a.RemoveTicket(t.ID)
	tx.RemoveTicket(t.ID)

	return append(events, queue.Event{
		Type:       queue.TypeTicketRefunded,
		AttendeeID: a.ID,
		TicketID:   t.ID,
		TicketType: string(t.Type),
		Amount:     t.Price,
	})
}

func (s *bookingService) UpgradeTicket(ctx context.Context, sess session.Session, req UpgradeRequest) (model.Ticket, error) {
	if req.NewType != model.ExhibitionPass && req.NewType != model.AllAccessPass {
		return model.Ticket{}, validationf("unknown ticket type %q", req.NewType)
	}
	if req.NewType == model.ExhibitionPass && req.Cost < 0 {
		return model.Ticket{}, validationf("cost must not be negative")
	}

	var out model.Ticket
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		cur, err := ownedTicket(tx, a, req.TicketID)
		if err != nil {
			return err
		}
		if req.NewType == model.AllAccessPass {
			up, err := tx.ReplaceTicket(cur.AsAllAccess(model.AllAccessPrice, cur.PurchasedAt))
			if err != nil {
				return err
			}
			out = *up
			return nil
		}

		if cur.Type == model.AllAccessPass {
			return ErrAlreadyAllAccess
		}
		if len(req.Additional) == 0 {
			return ErrNoExhibitionsAdded
		}
		for _, name := range req.Additional {
			if _, ok := tx.Exhibition(name); !ok {
				return validationf("unknown exhibition %q", name)
			}
		}
		next := *cur
		next.Exhibitions = append([]string(nil), cur.Exhibitions...)
		if next.AddExhibitions(req.Additional) == 0 {
			return ErrNoExhibitionsAdded
		}
		next.Price += req.Cost
		*cur = next
		out = next
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	s.log.WithFields(logrus.Fields{
		"attendee_id": out.AttendeeID,
		"ticket_id":   out.ID,
		"ticket_type": out.Type,
		"price":       out.Price,
	}).Info("ticket upgraded")
	s.emit(ctx, queue.Event{
		Type:       queue.TypeTicketUpgraded,
		AttendeeID: out.AttendeeID,
		TicketID:   out.ID,
		TicketType: string(out.Type),
		Amount:     out.Price,
	})
	return out, nil
}

func (s *bookingService) MyTickets(ctx context.Context, sess session.Session) ([]model.Ticket, error) {
	var out []model.Ticket
	err := s.store.View(func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		out = make([]model.Ticket, 0, len(a.TicketIDs))
		for _, id := range a.TicketIDs {
			if t, ok := tx.Ticket(id); ok {
				out = append(out, copyTicket(t))
			}
		}
		return nil
	})
	return out, err
}

func copyTicket(t *model.Ticket) model.Ticket {
	c := *t
	c.Exhibitions = append([]string(nil), t.Exhibitions...)
	return c
}

// Pass collects what the printable pass shows for one owned ticket.
func (s *bookingService) Pass(ctx context.Context, sess session.Session, ticketID uint64) (PassView, error) {
	var out PassView
	err := s.store.View(func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		t, err := ownedTicket(tx, a, ticketID)
		if err != nil {
			return err
		}
		out = PassView{
			Ticket:       copyTicket(t),
			TypeLabel:    t.Type.Label(),
			HolderID:     a.ID,
			HolderName:   a.Name,
			PurchaseDate: t.PurchaseDateLabel(),
		}
		for _, ex := range tx.Exhibitions() {
			if t.GrantsAccess(ex.Name) {
				out.Access = append(out.Access, ex.Name)
			}
		}
		for _, item := range schedule(tx, a.ID) {
			if t.GrantsAccess(item.Exhibition) {
				out.Workshops = append(out.Workshops, item)
			}
		}
		return nil
	})
	return out, err
}

// CanAccess reports whether any ticket the attendee holds admits them to
// the exhibition.
func (s *bookingService) CanAccess(ctx context.Context, sess session.Session, exhibition string) (bool, error) {
	var ok bool
	err := s.store.View(func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		ok = canAccess(tx, a, exhibition)
		return nil
	})
	return ok, err
}

func canAccess(tx *repository.Tx, a *model.Attendee, exhibition string) bool {
	for _, id := range a.TicketIDs {
		if t, ok := tx.Ticket(id); ok && t.GrantsAccess(exhibition) {
			return true
		}
	}
	return false
}
