package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-booking/internal/model"
)

func newTestStore(t *testing.T, p Persister) *Store {
	t.Helper()
	logger, _ := test.NewNullLogger()
	s := New(p, logger)
	require.NoError(t, s.LoadAll(context.Background()))
	return s
}

func TestLoadAll_SeedsCatalogOnFirstRun(t *testing.T) {
	p := NewMemoryPersister()
	s := newTestStore(t, p)

	err := s.View(func(tx *Tx) error {
		ex := tx.Exhibitions()
		require.Len(t, ex, 3)
		assert.Equal(t, "Climate Tech Innovations", ex[0].Name)
		assert.Equal(t, "Hall A", ex[0].Location)
		assert.Equal(t, "Green Policy & Governance", ex[1].Name)
		assert.Equal(t, "Community Action & Impact", ex[2].Name)
		assert.Len(t, tx.Workshops(), 36)

		w, ok := tx.Workshop("Intro_to_Climate_Data_Tools_April 15, 2026")
		require.True(t, ok)
		assert.Equal(t, "10:30 AM", w.StartTime)
		assert.Equal(t, "Climate Tech Innovations", w.ExhibitionName)
		assert.Equal(t, 30, w.Capacity)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Saves(), "seeded catalog must be persisted")

	_, err = p.Load(context.Background(), CollExhibitions)
	assert.NoError(t, err)
}

func TestLoadAll_RoundTrip(t *testing.T) {
	p := NewMemoryPersister()
	s := newTestStore(t, p)
	ctx := context.Background()
	wsID := WorkshopID("Policy Simulation Lab", "April 16, 2026")

	err := s.Update(ctx, func(tx *Tx) error {
		a := &model.Attendee{ID: "U1", Name: "Ana", Email: "ana@example.com", Role: model.RoleAttendee}
		require.NoError(t, tx.InsertAttendee(a))
		tk := tx.AddTicket(model.NewExhibitionPass(tx.NextID(CollTickets), "U1", 200, []string{"Green Policy & Governance"}, time.Now().UTC()))
		a.TicketIDs = append(a.TicketIDs, tk.ID)
		w, _ := tx.Workshop(wsID)
		require.True(t, w.AddAttendee("U1"))
		tx.AddReservation(&model.Reservation{ID: tx.NextID(CollReservations), AttendeeID: "U1", WorkshopID: wsID, Active: true})
		return nil
	})
	require.NoError(t, err)

	reloaded := newTestStore(t, p)
	err = reloaded.View(func(tx *Tx) error {
		a, ok := tx.Attendee("ana@example.com")
		require.True(t, ok)
		assert.Equal(t, []uint64{1}, a.TicketIDs)
		tk, ok := tx.Ticket(1)
		require.True(t, ok)
		assert.Equal(t, []string{"Green Policy & Governance"}, tk.Exhibitions)
		w, _ := tx.Workshop(wsID)
		assert.Equal(t, []string{"U1"}, w.AttendeeIDs)
		assert.Len(t, tx.ActiveReservations("U1"), 1)
		return nil
	})
	require.NoError(t, err)
}

func TestLoadAll_CorruptExhibitionsRegenerates(t *testing.T) {
	p := NewMemoryPersister()
	p.Put(CollExhibitions, []byte{0xff, 0x00, 0x13})

	logger, hook := test.NewNullLogger()
	s := New(p, logger)
	require.NoError(t, s.LoadAll(context.Background()))

	_ = s.View(func(tx *Tx) error {
		assert.Len(t, tx.Workshops(), 36)
		return nil
	})
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
}

func TestLoadAll_CorruptTicketsFails(t *testing.T) {
	p := NewMemoryPersister()
	p.Put(CollTickets, []byte{0xff, 0x00, 0x13})

	logger, _ := test.NewNullLogger()
	err := New(p, logger).LoadAll(context.Background())
	assert.True(t, errors.Is(err, ErrCorrupt))
}

func TestNextID_NeverReusedAfterRemoval(t *testing.T) {
	p := NewMemoryPersister()
	s := newTestStore(t, p)
	ctx := context.Background()

	var first, second uint64
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		first = tx.AddTicket(model.NewAllAccessPass(tx.NextID(CollTickets), "U1", 500, time.Now())).ID
		second = tx.AddTicket(model.NewAllAccessPass(tx.NextID(CollTickets), "U1", 500, time.Now())).ID
		assert.True(t, tx.RemoveTicket(second))
		return nil
	}))

	reloaded := newTestStore(t, p)
	require.NoError(t, reloaded.Update(ctx, func(tx *Tx) error {
		assert.Equal(t, uint64(1), first)
		assert.Equal(t, uint64(3), tx.NextID(CollTickets))
		return nil
	}))
}

func TestReconcileCounters_RebuildsFromRecords(t *testing.T) {
	p := NewMemoryPersister()
	s := newTestStore(t, p)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.InsertAttendee(&model.Attendee{ID: "U7", Email: "x@y.io"}))
		tx.AddTicket(model.NewAllAccessPass(12, "U7", 500, time.Now()))
		return nil
	}))
	// Drop the counters blob to simulate an older snapshot.
	p.Put(CollCounters, mustEncode(t, map[string]uint64{}))

	reloaded := newTestStore(t, p)
	_ = reloaded.Update(ctx, func(tx *Tx) error {
		assert.Equal(t, uint64(8), tx.NextID(CollAttendees))
		assert.Equal(t, uint64(13), tx.NextID(CollTickets))
		return nil
	})
}

func TestRekeyAttendee(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	_ = s.Update(context.Background(), func(tx *Tx) error {
		require.NoError(t, tx.InsertAttendee(&model.Attendee{ID: "U1", Email: "a@x.io"}))
		require.NoError(t, tx.InsertAttendee(&model.Attendee{ID: "U2", Email: "b@x.io"}))

		assert.ErrorIs(t, tx.RekeyAttendee("a@x.io", "b@x.io"), ErrEmailExists)
		require.NoError(t, tx.RekeyAttendee("a@x.io", "c@x.io"))

		_, ok := tx.Attendee("a@x.io")
		assert.False(t, ok)
		a, ok := tx.Attendee("c@x.io")
		require.True(t, ok)
		assert.Equal(t, "U1", a.ID)
		assert.Equal(t, "c@x.io", a.Email)
		return nil
	})
}

func TestReplaceTicketKeepsSlot(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	_ = s.Update(context.Background(), func(tx *Tx) error {
		tx.AddTicket(model.NewExhibitionPass(1, "U1", 200, []string{"A"}, time.Now()))
		tx.AddTicket(model.NewExhibitionPass(2, "U1", 200, []string{"B"}, time.Now()))
		cur, _ := tx.Ticket(1)

		_, err := tx.ReplaceTicket(cur.AsAllAccess(model.AllAccessPrice, time.Now()))
		require.NoError(t, err)

		assert.Equal(t, model.AllAccessPass, tx.Tickets()[0].Type)
		assert.Equal(t, uint64(2), tx.Tickets()[1].ID)
		_, err = tx.ReplaceTicket(model.Ticket{ID: 99})
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
}

func TestUpdate_ErrorSkipsSave(t *testing.T) {
	p := NewMemoryPersister()
	s := newTestStore(t, p)
	before := p.Saves()

	err := s.Update(context.Background(), func(tx *Tx) error { return ErrNotFound })

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, before, p.Saves())
}

type flakyPersister struct {
	*MemoryPersister
	fail bool
}

func (p *flakyPersister) Save(ctx context.Context, blobs map[string][]byte) error {
	if p.fail {
		return errors.New("disk full")
	}
	return p.MemoryPersister.Save(ctx, blobs)
}

func TestUpdate_FailedSaveRollsBack(t *testing.T) {
	p := &flakyPersister{MemoryPersister: NewMemoryPersister()}
	s := newTestStore(t, p)
	ctx := context.Background()
	wsID := WorkshopID("Policy Simulation Lab", "April 16, 2026")

	p.fail = true
	err := s.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.InsertAttendee(&model.Attendee{ID: "U1", Email: "a@x.io"}))
		tx.AddTicket(model.NewAllAccessPass(tx.NextID(CollTickets), "U1", 500, time.Now()))
		tx.AddPayment(model.Payment{ID: tx.NextID(CollPayments), AttendeeID: "U1", Amount: 500, Timestamp: time.Now()})
		w, _ := tx.Workshop(wsID)
		require.True(t, w.AddAttendee("U1"))
		return nil
	})
	require.Error(t, err)

	p.fail = false
	require.NoError(t, s.Update(ctx, func(tx *Tx) error {
		_, ok := tx.Attendee("a@x.io")
		assert.False(t, ok)
		assert.Empty(t, tx.Tickets())
		assert.Empty(t, tx.Payments())
		w, ok := tx.Workshop(wsID)
		require.True(t, ok)
		assert.Empty(t, w.AttendeeIDs)
		assert.Equal(t, 30, w.SeatsRemaining())
		assert.Equal(t, uint64(1), tx.NextID(CollTickets))
		return nil
	}))
}

func TestUpdate_CallbackErrorRollsBack(t *testing.T) {
	s := newTestStore(t, NewMemoryPersister())
	ctx := context.Background()

	err := s.Update(ctx, func(tx *Tx) error {
		require.NoError(t, tx.InsertAttendee(&model.Attendee{ID: "U1", Email: "a@x.io"}))
		return ErrNotFound
	})
	require.ErrorIs(t, err, ErrNotFound)

	_ = s.View(func(tx *Tx) error {
		_, ok := tx.Attendee("a@x.io")
		assert.False(t, ok)
		assert.Len(t, tx.Workshops(), 36)
		return nil
	})
}

func mustEncode(t *testing.T, v any) []byte {
	t.Helper()
	b, err := encode("test", v)
	require.NoError(t, err)
	return b
}
