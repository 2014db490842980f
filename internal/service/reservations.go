package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/queue"
	"github.com/iliyamo/conference-booking/internal/repository"
	"github.com/iliyamo/conference-booking/internal/session"
)

// ReserveWorkshop takes a seat for the attendee. The capacity check and
// the seat append happen under the store's write lock.
func (s *bookingService) ReserveWorkshop(ctx context.Context, sess session.Session, workshopID string) (model.Reservation, error) {
	var out model.Reservation
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		w, ok := tx.Workshop(workshopID)
		if !ok {
			return ErrWorkshopNotFound
		}
		if !canAccess(tx, a, w.ExhibitionName) {
			return ErrAccessDenied
		}
		if !w.AddAttendee(a.ID) {
			return ErrWorkshopFull
		}
		r := &model.Reservation{
			ID:         tx.NextID(repository.CollReservations),
			AttendeeID: a.ID,
			WorkshopID: w.ID,
			Active:     true,
			CreatedAt:  s.now(),
		}
		tx.AddReservation(r)
		a.ReservationIDs = append(a.ReservationIDs, r.ID)
		out = *r
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}
	s.log.WithFields(logrus.Fields{
		"attendee_id":    out.AttendeeID,
		"workshop_id":    out.WorkshopID,
		"reservation_id": out.ID,
	}).Info("workshop reserved")
	s.emit(ctx, queue.Event{
		Type:          queue.TypeReservationCreated,
		AttendeeID:    out.AttendeeID,
		ReservationID: out.ID,
		WorkshopID:    out.WorkshopID,
	})
	return out, nil
}

func (s *bookingService) CancelReservation(ctx context.Context, sess session.Session, reservationID uint64) error {
	var workshopID string
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		r, ok := tx.Reservation(reservationID)
		if !ok || !r.Active || r.AttendeeID != a.ID {
			return ErrInvalidReservation
		}
		r.Cancel(s.now())
		if w, ok := tx.Workshop(r.WorkshopID); ok {
			w.RemoveAttendee(a.ID)
		}
		workshopID = r.WorkshopID
		return nil
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{
		"attendee_id":    sess.AttendeeID,
		"workshop_id":    workshopID,
		"reservation_id": reservationID,
	}).Info("reservation cancelled")
	s.emit(ctx, queue.Event{
		Type:          queue.TypeReservationCancelled,
		AttendeeID:    sess.AttendeeID,
		ReservationID: reservationID,
		WorkshopID:    workshopID,
	})
	return nil
}

func (s *bookingService) MySchedule(ctx context.Context, sess session.Session) ([]ScheduleItem, error) {
	var out []ScheduleItem
	err := s.store.View(func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		out = schedule(tx, a.ID)
		return nil
	})
	return out, err
}

func schedule(tx *repository.Tx, attendeeID string) []ScheduleItem {
	out := []ScheduleItem{}
	for _, r := range tx.ActiveReservations(attendeeID) {
		w, ok := tx.Workshop(r.WorkshopID)
		if !ok {
			continue
		}
		out = append(out, ScheduleItem{
			ReservationID: r.ID,
			WorkshopID:    w.ID,
			Topic:         w.Topic,
			Exhibition:    w.ExhibitionName,
			Date:          w.Date,
			StartTime:     w.StartTime,
			EndTime:       w.EndTime,
			ReservedAt:    r.CreatedAt,
		})
	}
	return out
}
