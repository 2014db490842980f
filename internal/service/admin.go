package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/queue"
	"github.com/iliyamo/conference-booking/internal/repository"
	"github.com/iliyamo/conference-booking/internal/session"
)

// requireAdmin rejects sessions whose account is not an administrator.
// The stored role wins over the role recorded in the session.
func requireAdmin(tx *repository.Tx, sess session.Session) error {
	a, err := principal(tx, sess)
	if err != nil {
		return err
	}
	if !a.IsAdmin() {
		return ErrAccessDenied
	}
	return nil
}

func (s *bookingService) Orders(ctx context.Context, sess session.Session) (OrdersReport, error) {
	report := OrdersReport{Orders: []OrderView{}}
	err := s.store.View(func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		for _, t := range tx.Tickets() {
			o := OrderView{
				TicketID:    t.ID,
				AttendeeID:  t.AttendeeID,
				Type:        t.Type.Label(),
				Price:       t.Price,
				PurchasedAt: t.PurchasedAt,
				Exhibitions: append([]string(nil), t.Exhibitions...),
			}
			if a, ok := tx.AttendeeByID(t.AttendeeID); ok {
				o.Name = a.Name
				o.Email = a.Email
			}
			report.Orders = append(report.Orders, o)
			report.TotalSales += t.Price
		}
		return nil
	})
	return report, err
}

// ModifyTicket sets price and variant directly. Turning an all-access
// pass into an exhibition pass selects every exhibition.
func (s *bookingService) ModifyTicket(ctx context.Context, sess session.Session, ticketID uint64, newType model.TicketType, price float64) (model.Ticket, error) {
	if newType != model.ExhibitionPass && newType != model.AllAccessPass {
		return model.Ticket{}, validationf("unknown ticket type %q", newType)
	}
	if price < 0 {
		return model.Ticket{}, validationf("price must not be negative")
	}

	var out model.Ticket
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		cur, ok := tx.Ticket(ticketID)
		if !ok {
			return ErrNotFound
		}
		next := copyTicket(cur)
		switch {
		case newType == model.AllAccessPass:
			next = cur.AsAllAccess(price, cur.PurchasedAt)
		case cur.Type == model.AllAccessPass:
			var all []string
			for _, ex := range tx.Exhibitions() {
				all = append(all, ex.Name)
			}
			next = model.NewExhibitionPass(cur.ID, cur.AttendeeID, price, all, cur.PurchasedAt)
		default:
			next.Price = price
		}
		up, err := tx.ReplaceTicket(next)
		if err != nil {
			return err
		}
		out = copyTicket(up)
		return nil
	})
	if err != nil {
		return model.Ticket{}, err
	}
	s.log.WithFields(logrus.Fields{
		"admin_id":    sess.AttendeeID,
		"ticket_id":   out.ID,
		"ticket_type": out.Type,
		"price":       out.Price,
	}).Info("ticket modified by admin")
	return out, nil
}

// DeleteTicket refunds a ticket on behalf of its owner. A ticket whose
// owner no longer exists is removed directly.
func (s *bookingService) DeleteTicket(ctx context.Context, sess session.Session, ticketID uint64) error {
	var events []queue.Event
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		t, ok := tx.Ticket(ticketID)
		if !ok {
			return ErrNotFound
		}
		if owner, ok := tx.AttendeeByID(t.AttendeeID); ok {
			events = s.refund(tx, owner, t)
			return nil
		}
		tx.RemoveTicket(ticketID)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"admin_id": sess.AttendeeID, "ticket_id": ticketID}).Info("ticket deleted by admin")
	s.emit(ctx, events...)
	return nil
}

// Analytics reports count and revenue per ticket variant, all-access
// first.
func (s *bookingService) Analytics(ctx context.Context, sess session.Session) ([]TypeStats, error) {
	var out []TypeStats
	err := s.store.View(func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		stats := map[model.TicketType]*TypeStats{
			model.AllAccessPass:  {Type: model.AllAccessPass.Label()},
			model.ExhibitionPass: {Type: model.ExhibitionPass.Label()},
		}
		for _, t := range tx.Tickets() {
			st := stats[t.Type]
			if st == nil {
				continue
			}
			st.Count++
			st.Revenue += t.Price
		}
		out = []TypeStats{*stats[model.AllAccessPass], *stats[model.ExhibitionPass]}
		return nil
	})
	return out, err
}

func (s *bookingService) Capacity(ctx context.Context, sess session.Session, date string) ([]CapacityRow, error) {
	if date == "" {
		return nil, validationf("date is required")
	}
	out := []CapacityRow{}
	err := s.store.View(func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		for _, w := range tx.Workshops() {
			if w.Date != date {
				continue
			}
			out = append(out, CapacityRow{
				WorkshopID: w.ID,
				Topic:      w.Topic,
				Exhibition: w.ExhibitionName,
				StartTime:  w.StartTime,
				Booked:     w.Booked(),
				Capacity:   w.Capacity,
			})
		}
		return nil
	})
	return out, err
}

// Dates lists the distinct workshop dates in calendar order.
func (s *bookingService) Dates(ctx context.Context, sess session.Session) ([]string, error) {
	var out []string
	err := s.store.View(func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		seen := map[string]bool{}
		for _, w := range tx.Workshops() {
			if !seen[w.Date] {
				seen[w.Date] = true
				out = append(out, w.Date)
			}
		}
		sortDates(out)
		return nil
	})
	return out, err
}

func (s *bookingService) Payments(ctx context.Context, sess session.Session) ([]model.Payment, error) {
	var out []model.Payment
	err := s.store.View(func(tx *repository.Tx) error {
		if err := requireAdmin(tx, sess); err != nil {
			return err
		}
		out = append([]model.Payment{}, tx.Payments()...)
		return nil
	})
	return out, err
}
