// Package session binds an authenticated principal (attendee or admin) to
// the operations it may invoke. A Session is an explicit value handed to
// every booking call; nothing about the current user is process-global.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a session ID is unknown or expired.
var ErrNotFound = errors.New("session not found")

// Session is the binding between a principal and its access rights.
type Session struct {
	ID         string    `json:"id"`
	AttendeeID string    `json:"attendee_id"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Store keeps live sessions. Put must expire the entry at ExpiresAt.
type Store interface {
	Put(ctx context.Context, s Session) error
	Get(ctx context.Context, id string) (Session, error)
	Delete(ctx context.Context, id string) error
	DeleteByAttendee(ctx context.Context, attendeeID string) error
}

// Manager opens, resolves and closes sessions.
type Manager struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewManager(store Store, ttl time.Duration) *Manager {
	if store == nil {
		panic("nil store passed to session.NewManager")
	}
	return &Manager{store: store, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

// Open starts a session for the attendee.
func (m *Manager) Open(ctx context.Context, attendeeID, email, role string) (Session, error) {
	now := m.now()
	s := Session{
		ID:         uuid.NewString(),
		AttendeeID: attendeeID,
		Email:      email,
		Role:       role,
		IssuedAt:   now,
		ExpiresAt:  now.Add(m.ttl),
	}
	if err := m.store.Put(ctx, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// Resolve returns the live session with the given ID.
func (m *Manager) Resolve(ctx context.Context, id string) (Session, error) {
	s, err := m.store.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if !s.ExpiresAt.After(m.now()) {
		return Session{}, ErrNotFound
	}
	return s, nil
}

// Close ends a single session (logout).
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.store.Delete(ctx, id)
}

// CloseAll ends every session of the attendee, used when the account is
// deleted.
func (m *Manager) CloseAll(ctx context.Context, attendeeID string) error {
	return m.store.DeleteByAttendee(ctx, attendeeID)
}
