// Package service implements the booking engine: account lifecycle, pass
// purchase, refund and upgrade, workshop reservations and the
// administrator's reports. Every operation receives the acting session
// explicitly and either returns a value or a typed *Error.
package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/model"
	"github.com/iliyamo/conference-booking/internal/queue"
	"github.com/iliyamo/conference-booking/internal/repository"
	"github.com/iliyamo/conference-booking/internal/session"
	"github.com/iliyamo/conference-booking/internal/utils"
)

// BookingService is the contract the HTTP layer depends on.
type BookingService interface {
	Register(ctx context.Context, in RegisterInput) (AttendeeView, error)
	Login(ctx context.Context, email, password string) (session.Session, error)
	Logout(ctx context.Context, sess session.Session) error
	Profile(ctx context.Context, sess session.Session) (AttendeeView, error)
	UpdateProfile(ctx context.Context, sess session.Session, in ProfileInput) (AttendeeView, error)
	DeleteAccount(ctx context.Context, sess session.Session) error

	PurchaseTicket(ctx context.Context, sess session.Session, req PurchaseRequest) (model.Ticket, error)
	RefundTicket(ctx context.Context, sess session.Session, ticketID uint64) error
	UpgradeTicket(ctx context.Context, sess session.Session, req UpgradeRequest) (model.Ticket, error)
	MyTickets(ctx context.Context, sess session.Session) ([]model.Ticket, error)
	Pass(ctx context.Context, sess session.Session, ticketID uint64) (PassView, error)
	CanAccess(ctx context.Context, sess session.Session, exhibition string) (bool, error)

	ReserveWorkshop(ctx context.Context, sess session.Session, workshopID string) (model.Reservation, error)
	CancelReservation(ctx context.Context, sess session.Session, reservationID uint64) error
	MySchedule(ctx context.Context, sess session.Session) ([]ScheduleItem, error)

	Catalog(ctx context.Context) []ExhibitionView
	Workshops(ctx context.Context, exhibition, date string) ([]WorkshopView, error)
	Workshop(ctx context.Context, id string) (WorkshopView, error)

	Orders(ctx context.Context, sess session.Session) (OrdersReport, error)
	ModifyTicket(ctx context.Context, sess session.Session, ticketID uint64, newType model.TicketType, price float64) (model.Ticket, error)
	DeleteTicket(ctx context.Context, sess session.Session, ticketID uint64) error
	Analytics(ctx context.Context, sess session.Session) ([]TypeStats, error)
	Capacity(ctx context.Context, sess session.Session, date string) ([]CapacityRow, error)
	Dates(ctx context.Context, sess session.Session) ([]string, error)
	Payments(ctx context.Context, sess session.Session) ([]model.Payment, error)
}

// Publisher receives domain events after a mutation has been saved.
type Publisher interface {
	Publish(ctx context.Context, ev queue.Event) error
}

type Options struct {
	BcryptCost int
	Publisher  Publisher // optional
	Logger     logrus.FieldLogger
	Now        func() time.Time
}

type bookingService struct {
	store    *repository.Store
	sessions *session.Manager
	pub      Publisher
	log      logrus.FieldLogger
	cost     int
	now      func() time.Time
}

// New wires the engine to its store and session manager.
func New(store *repository.Store, sessions *session.Manager, opts Options) BookingService {
	if store == nil || sessions == nil {
		panic("service.New: store and sessions are required")
	}
	s := &bookingService{
		store:    store,
		sessions: sessions,
		pub:      opts.Publisher,
		log:      opts.Logger,
		cost:     opts.BcryptCost,
		now:      opts.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

func (in *RegisterInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Password = strings.TrimSpace(in.Password)
}

// ProfileInput replaces name, email and phone. An empty Password keeps
// the current credential.
type ProfileInput RegisterInput

func (s *bookingService) Register(ctx context.Context, in RegisterInput) (AttendeeView, error) {
	in.normalize()
	if in.Name == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return AttendeeView{}, validationf("all fields are required")
	}
	for _, err := range []error{checkEmail(in.Email), checkPhone(in.Phone), checkPassword(in.Password)} {
		if err != nil {
			return AttendeeView{}, err
		}
	}
	hash, err := utils.HashPassword(in.Password, s.cost)
	if err != nil {
		return AttendeeView{}, err
	}

	var view AttendeeView
	err = s.store.Update(ctx, func(tx *repository.Tx) error {
		if _, taken := tx.Attendee(in.Email); taken {
			return ErrDuplicateEmail
		}
		a := &model.Attendee{
			ID:           attendeeID(tx.NextID(repository.CollAttendees)),
			Name:         in.Name,
			Email:        in.Email,
			Phone:        in.Phone,
			PasswordHash: hash,
			Role:         model.RoleAttendee,
		}
		if err := tx.InsertAttendee(a); err != nil {
			return ErrDuplicateEmail
		}
		view = attendeeView(a)
		return nil
	})
	if err != nil {
		return AttendeeView{}, err
	}
	s.log.WithField("attendee_id", view.ID).Info("attendee registered")
	s.emit(ctx, queue.Event{Type: queue.TypeAttendeeRegistered, AttendeeID: view.ID})
	return view, nil
}

func attendeeID(n uint64) string { return "U" + strconv.FormatUint(n, 10) }

// EnsureAdmin creates the administrator account on first start. An
// existing administrator with the same email is left untouched.
func EnsureAdmin(ctx context.Context, store *repository.Store, name, email, password string, cost int) error {
	email = strings.TrimSpace(email)
	if err := checkEmail(email); err != nil {
		return err
	}
	if err := checkPassword(password); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		name = "Administrator"
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	return store.Update(ctx, func(tx *repository.Tx) error {
		if a, ok := tx.Attendee(email); ok {
			if a.IsAdmin() {
				return nil
			}
			return ErrDuplicateEmail
		}
		return tx.InsertAttendee(&model.Attendee{
			ID:           attendeeID(tx.NextID(repository.CollAttendees)),
			Name:         name,
			Email:        email,
			PasswordHash: hash,
			Role:         model.RoleAdmin,
		})
	})
}

func (s *bookingService) Login(ctx context.Context, email, password string) (session.Session, error) {
	email = strings.TrimSpace(email)
	var a model.Attendee
	err := s.store.View(func(tx *repository.Tx) error {
		found, ok := tx.Attendee(email)
		if !ok {
			return ErrInvalidCredentials
		}
		a = *found
		return nil
	})
	if err != nil {
		return session.Session{}, err
	}
	if !utils.VerifyPassword(a.PasswordHash, strings.TrimSpace(password)) {
		return session.Session{}, ErrInvalidCredentials
	}
	sess, err := s.sessions.Open(ctx, a.ID, a.Email, a.Role)
	if err != nil {
		return session.Session{}, err
	}
	s.log.WithFields(logrus.Fields{"attendee_id": a.ID, "role": a.Role}).Info("login")
	return sess, nil
}

func (s *bookingService) Logout(ctx context.Context, sess session.Session) error {
	return s.sessions.Close(ctx, sess.ID)
}

// principal resolves the session's account. A session whose account is
// gone is rejected.
func principal(tx *repository.Tx, sess session.Session) (*model.Attendee, error) {
	a, ok := tx.AttendeeByID(sess.AttendeeID)
	if !ok {
		return nil, ErrSessionInvalid
	}
	return a, nil
}

func (s *bookingService) Profile(ctx context.Context, sess session.Session) (AttendeeView, error) {
	var view AttendeeView
	err := s.store.View(func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		view = attendeeView(a)
		return nil
	})
	return view, err
}

func (s *bookingService) UpdateProfile(ctx context.Context, sess session.Session, in ProfileInput) (AttendeeView, error) {
	r := RegisterInput(in)
	r.normalize()
	if r.Name == "" || r.Email == "" || r.Phone == "" {
		return AttendeeView{}, validationf("name, email and phone are required")
	}
	if err := checkEmail(r.Email); err != nil {
		return AttendeeView{}, err
	}
	if err := checkPhone(r.Phone); err != nil {
		return AttendeeView{}, err
	}
	var hash string
	if r.Password != "" {
		if err := checkPassword(r.Password); err != nil {
			return AttendeeView{}, err
		}
		h, err := utils.HashPassword(r.Password, s.cost)
		if err != nil {
			return AttendeeView{}, err
		}
		hash = h
	}

	var view AttendeeView
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		if other, taken := tx.Attendee(r.Email); taken && other.ID != a.ID {
			return ErrEmailTaken
		}
		if err := tx.RekeyAttendee(a.Email, r.Email); err != nil {
			return ErrEmailTaken
		}
		a.Name = r.Name
		a.Phone = r.Phone
		if hash != "" {
			a.PasswordHash = hash
		}
		view = attendeeView(a)
		return nil
	})
	if err != nil {
		return AttendeeView{}, err
	}
	s.log.WithField("attendee_id", view.ID).Info("profile updated")
	return view, nil
}

// DeleteAccount releases every seat the attendee holds, removes their
// tickets from the global collection, drops the account and ends all of
// its sessions. Payments stay in the audit log.
func (s *bookingService) DeleteAccount(ctx context.Context, sess session.Session) error {
	var events []queue.Event
	err := s.store.Update(ctx, func(tx *repository.Tx) error {
		a, err := principal(tx, sess)
		if err != nil {
			return err
		}
		if a.IsAdmin() {
			return ErrAccessDenied
		}
		events = s.releaseReservations(tx, a)
		for _, id := range a.TicketIDs {
			tx.RemoveTicket(id)
		}
		a.TicketIDs = nil
		tx.DeleteAttendee(a.Email)
		return nil
	})
	if err != nil {
		return err
	}
	if err := s.sessions.CloseAll(ctx, sess.AttendeeID); err != nil {
		s.log.WithError(err).WithField("attendee_id", sess.AttendeeID).Warn("close sessions failed")
	}
	s.log.WithField("attendee_id", sess.AttendeeID).Info("account deleted")
	events = append(events, queue.Event{Type: queue.TypeAttendeeDeleted, AttendeeID: sess.AttendeeID})
	s.emit(ctx, events...)
	return nil
}

// releaseReservations cancels every active reservation of the attendee
// and frees the seats.
func (s *bookingService) releaseReservations(tx *repository.Tx, a *model.Attendee) []queue.Event {
	now := s.now()
	var events []queue.Event
	for _, r := range tx.ActiveReservations(a.ID) {
		r.Cancel(now)
		if w, ok := tx.Workshop(r.WorkshopID); ok {
			w.RemoveAttendee(a.ID)
		}
		events = append(events, queue.Event{
			Type:          queue.TypeReservationCancelled,
			AttendeeID:    a.ID,
			ReservationID: r.ID,
			WorkshopID:    r.WorkshopID,
		})
	}
	return events
}
