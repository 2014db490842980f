package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/conference-booking/internal/model"
)

// Store owns every entity collection of the conference. All access goes
// through View (shared lock) or Update (exclusive lock followed by a save
// of the whole snapshot), so a read-modify-write such as a capacity check
// plus seat append never interleaves with another mutation.
type Store struct {
	mu        sync.RWMutex
	persister Persister
	log       logrus.FieldLogger

	attendees    map[string]*model.Attendee // keyed by email
	tickets      []*model.Ticket
	reservations []*model.Reservation
	payments     []model.Payment
	exhibitions  []*model.Exhibition
	workshops    map[string]*model.Workshop
	counters     map[string]uint64

	// committed holds the encoded state of the last successful load or
	// save. A failed Update is rolled back to it.
	committed map[string][]byte
}

// New returns an empty store bound to the persister. Call LoadAll before
// serving requests.
func New(p Persister, log logrus.FieldLogger) *Store {
	if p == nil {
		panic("nil persister passed to repository.New")
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Store{
		persister: p,
		log:       log,
		attendees: make(map[string]*model.Attendee),
		workshops: make(map[string]*model.Workshop),
		counters:  make(map[string]uint64),
	}
}

// LoadAll replaces the in-memory state with the persisted one. When the
// exhibitions blob is missing, empty or corrupt the seed catalog is
// generated and saved. Corrupt blobs of any other collection are returned
// as errors wrapping ErrCorrupt.
func (s *Store) LoadAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	attendees := make(map[string]*model.Attendee)
	var (
		tickets      []*model.Ticket
		reservations []*model.Reservation
		payments     []model.Payment
		exhibitions  []*model.Exhibition
		counters     map[string]uint64
	)
	for name, dst := range map[string]any{
		CollAttendees:    &attendees,
		CollTickets:      &tickets,
		CollReservations: &reservations,
		CollPayments:     &payments,
		CollCounters:     &counters,
	} {
		if err := s.load(ctx, name, dst); err != nil {
			return err
		}
	}

	regenerate := false
	if err := s.load(ctx, CollExhibitions, &exhibitions); err != nil {
		if !errors.Is(err, ErrCorrupt) {
			return err
		}
		s.log.WithError(err).Warn("exhibitions blob unreadable, regenerating catalog")
		regenerate = true
	}
	if len(exhibitions) == 0 {
		regenerate = true
	}
	if regenerate {
		exhibitions = SeedCatalog()
	}

	s.install(attendees, tickets, reservations, payments, exhibitions, counters)

	if regenerate {
		s.log.WithField("workshops", len(s.workshops)).Info("seed catalog generated")
		return s.saveLocked(ctx)
	}
	blobs, err := s.encodeAll()
	if err != nil {
		return err
	}
	s.committed = blobs
	return nil
}

func (s *Store) install(
	attendees map[string]*model.Attendee,
	tickets []*model.Ticket,
	reservations []*model.Reservation,
	payments []model.Payment,
	exhibitions []*model.Exhibition,
	counters map[string]uint64,
) {
	if attendees == nil {
		attendees = make(map[string]*model.Attendee)
	}
	s.attendees = attendees
	s.tickets = tickets
	s.reservations = reservations
	s.payments = payments
	s.exhibitions = exhibitions
	s.reindexWorkshops()
	s.counters = s.reconcileCounters(counters)
}

// rollback discards every in-memory change made since the last commit.
func (s *Store) rollback() error {
	var (
		attendees    map[string]*model.Attendee
		tickets      []*model.Ticket
		reservations []*model.Reservation
		payments     []model.Payment
		exhibitions  []*model.Exhibition
		counters     map[string]uint64
	)
	for name, dst := range map[string]any{
		CollAttendees:    &attendees,
		CollTickets:      &tickets,
		CollReservations: &reservations,
		CollPayments:     &payments,
		CollExhibitions:  &exhibitions,
		CollCounters:     &counters,
	} {
		b, ok := s.committed[name]
		if !ok {
			continue
		}
		if err := decode(name, b, dst); err != nil {
			return err
		}
	}
	s.install(attendees, tickets, reservations, payments, exhibitions, counters)
	return nil
}

func (s *Store) load(ctx context.Context, name string, dst any) error {
	b, err := s.persister.Load(ctx, name)
	if errors.Is(err, ErrNoBlob) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	return decode(name, b, dst)
}

func (s *Store) reindexWorkshops() {
	s.workshops = make(map[string]*model.Workshop)
	for _, ex := range s.exhibitions {
		for _, w := range ex.Workshops {
			w.ExhibitionName = ex.Name
			s.workshops[w.ID] = w
		}
	}
}

// reconcileCounters keeps every sequence at least as high as the largest
// ID present so a lost counters blob never causes reuse.
func (s *Store) reconcileCounters(loaded map[string]uint64) map[string]uint64 {
	c := make(map[string]uint64, 4)
	for k, v := range loaded {
		c[k] = v
	}
	bump := func(name string, id uint64) {
		if id > c[name] {
			c[name] = id
		}
	}
	for _, a := range s.attendees {
		if n, err := strconv.ParseUint(strings.TrimPrefix(a.ID, "U"), 10, 64); err == nil {
			bump(CollAttendees, n)
		}
	}
	for _, t := range s.tickets {
		bump(CollTickets, t.ID)
	}
	for _, r := range s.reservations {
		bump(CollReservations, r.ID)
	}
	for _, p := range s.payments {
		bump(CollPayments, p.ID)
	}
	return c
}

// SaveAll writes a snapshot of every collection.
func (s *Store) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	blobs, err := s.encodeAll()
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, blobs); err != nil {
		return fmt.Errorf("save collections: %w", err)
	}
	s.committed = blobs
	return nil
}

func (s *Store) encodeAll() (map[string][]byte, error) {
	blobs := make(map[string][]byte, 6)
	for name, v := range map[string]any{
		CollAttendees:    s.attendees,
		CollTickets:      s.tickets,
		CollReservations: s.reservations,
		CollPayments:     s.payments,
		CollExhibitions:  s.exhibitions,
		CollCounters:     s.counters,
	} {
		b, err := encode(name, v)
		if err != nil {
			return nil, err
		}
		blobs[name] = b
	}
	return blobs, nil
}

// View runs fn under the shared lock. fn must not retain pointers handed
// out by the Tx after it returns.
func (s *Store) View(fn func(tx *Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&Tx{s: s})
}

// Update runs fn under the exclusive lock and saves the snapshot when fn
// succeeds. It applies all or nothing: when fn or the save fails, the
// in-memory state is rolled back to the last committed snapshot.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fn(&Tx{s: s})
	if err == nil {
		err = s.saveLocked(ctx)
	}
	if err != nil {
		if rbErr := s.rollback(); rbErr != nil {
			s.log.WithError(rbErr).Error("rollback after failed update")
			return errors.Join(err, rbErr)
		}
		return err
	}
	return nil
}

// Tx exposes the collections to a View or Update callback.
type Tx struct{ s *Store }

// NextID advances and returns the sequence for the collection. Sequences
// are monotonic and persisted, so IDs are never reused after deletion.
func (tx *Tx) NextID(collection string) uint64 {
	tx.s.counters[collection]++
	return tx.s.counters[collection]
}

// ---- Attendees ----

func (tx *Tx) Attendee(email string) (*model.Attendee, bool) {
	a, ok := tx.s.attendees[email]
	return a, ok
}

func (tx *Tx) AttendeeByID(id string) (*model.Attendee, bool) {
	for _, a := range tx.s.attendees {
		if a.ID == id {
			return a, true
		}
	}
	return nil, false
}

// Attendees returns every account ordered by ID.
func (tx *Tx) Attendees() []*model.Attendee {
	out := make([]*model.Attendee, 0, len(tx.s.attendees))
	for _, a := range tx.s.attendees {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return attendeeSeq(out[i].ID) < attendeeSeq(out[j].ID) })
	return out
}

func attendeeSeq(id string) uint64 {
	n, _ := strconv.ParseUint(strings.TrimPrefix(id, "U"), 10, 64)
	return n
}

func (tx *Tx) InsertAttendee(a *model.Attendee) error {
	if _, ok := tx.s.attendees[a.Email]; ok {
		return ErrEmailExists
	}
	tx.s.attendees[a.Email] = a
	return nil
}

// RekeyAttendee moves the account stored under oldEmail to newEmail.
func (tx *Tx) RekeyAttendee(oldEmail, newEmail string) error {
	if oldEmail == newEmail {
		return nil
	}
	a, ok := tx.s.attendees[oldEmail]
	if !ok {
		return ErrNotFound
	}
	if _, taken := tx.s.attendees[newEmail]; taken {
		return ErrEmailExists
	}
	delete(tx.s.attendees, oldEmail)
	a.Email = newEmail
	tx.s.attendees[newEmail] = a
	return nil
}

func (tx *Tx) DeleteAttendee(email string) bool {
	if _, ok := tx.s.attendees[email]; !ok {
		return false
	}
	delete(tx.s.attendees, email)
	return true
}

// ---- Tickets ----

func (tx *Tx) Ticket(id uint64) (*model.Ticket, bool) {
	for _, t := range tx.s.tickets {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

func (tx *Tx) Tickets() []*model.Ticket { return tx.s.tickets }

func (tx *Tx) AddTicket(t model.Ticket) *model.Ticket {
	p := &t
	tx.s.tickets = append(tx.s.tickets, p)
	return p
}

// ReplaceTicket swaps the stored record with the same ID in place,
// keeping its position in the collection.
func (tx *Tx) ReplaceTicket(t model.Ticket) (*model.Ticket, error) {
	for i, cur := range tx.s.tickets {
		if cur.ID == t.ID {
			p := &t
			tx.s.tickets[i] = p
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (tx *Tx) RemoveTicket(id uint64) bool {
	for i, t := range tx.s.tickets {
		if t.ID == id {
			tx.s.tickets = append(tx.s.tickets[:i], tx.s.tickets[i+1:]...)
			return true
		}
	}
	return false
}

// ---- Reservations ----

func (tx *Tx) Reservation(id uint64) (*model.Reservation, bool) {
	for _, r := range tx.s.reservations {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (tx *Tx) Reservations() []*model.Reservation { return tx.s.reservations }

func (tx *Tx) AddReservation(r *model.Reservation) {
	tx.s.reservations = append(tx.s.reservations, r)
}

// ActiveReservations lists the attendee's non-cancelled reservations in
// booking order.
func (tx *Tx) ActiveReservations(attendeeID string) []*model.Reservation {
	var out []*model.Reservation
	for _, r := range tx.s.reservations {
		if r.AttendeeID == attendeeID && r.Active {
			out = append(out, r)
		}
	}
	return out
}

// ---- Payments ----

func (tx *Tx) Payments() []model.Payment { return tx.s.payments }

func (tx *Tx) AddPayment(p model.Payment) {
	tx.s.payments = append(tx.s.payments, p)
}

// ---- Catalog ----

func (tx *Tx) Exhibitions() []*model.Exhibition { return tx.s.exhibitions }

func (tx *Tx) Exhibition(name string) (*model.Exhibition, bool) {
	for _, e := range tx.s.exhibitions {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

func (tx *Tx) Workshop(id string) (*model.Workshop, bool) {
	w, ok := tx.s.workshops[id]
	return w, ok
}

// Workshops returns every workshop in catalog order.
func (tx *Tx) Workshops() []*model.Workshop {
	out := make([]*model.Workshop, 0, len(tx.s.workshops))
	for _, e := range tx.s.exhibitions {
		out = append(out, e.Workshops...)
	}
	return out
}
