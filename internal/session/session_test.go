package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/conference-booking/internal/model"
)

func TestManager_OpenResolveClose(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)

	s, err := m.Open(ctx, "U1", "a@x.io", model.RoleAttendee)
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, model.RoleAttendee, s.Role)

	got, err := m.Resolve(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "U1", got.AttendeeID)

	require.NoError(t, m.Close(ctx, s.ID))
	_, err = m.Resolve(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_ExpiredSessionIsRejected(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Minute)
	s, err := m.Open(ctx, "U1", "a@x.io", model.RoleAttendee)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().UTC().Add(2 * time.Minute) }

	_, err = m.Resolve(ctx, s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_CloseAll(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryStore(), time.Hour)
	a, _ := m.Open(ctx, "U1", "a@x.io", model.RoleAttendee)
	b, _ := m.Open(ctx, "U1", "a@x.io", model.RoleAttendee)
	other, _ := m.Open(ctx, "U2", "b@x.io", model.RoleAdmin)

	require.NoError(t, m.CloseAll(ctx, "U1"))

	_, err := m.Resolve(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Resolve(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	got, err := m.Resolve(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, got.Role)
}
