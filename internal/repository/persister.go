package repository

import (
	"context"
	"sync"
)

// Collection names used as blob keys.
const (
	CollAttendees    = "attendees"
	CollTickets      = "tickets"
	CollReservations = "reservations"
	CollPayments     = "payments"
	CollExhibitions  = "exhibitions"
	CollCounters     = "counters"
)

// Persister stores and retrieves opaque collection blobs. Load returns
// ErrNoBlob when the collection was never saved. Save receives every
// collection of one snapshot and should apply them together.
type Persister interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, blobs map[string][]byte) error
}

// MemoryPersister keeps blobs in process memory. It backs tests and the
// "memory" storage driver.
type MemoryPersister struct {
	mu    sync.RWMutex
	blobs map[string][]byte
	saves int
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{blobs: make(map[string][]byte)}
}

func (p *MemoryPersister) Load(_ context.Context, name string) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	b, ok := p.blobs[name]
	if !ok {
		return nil, ErrNoBlob
	}
	return append([]byte(nil), b...), nil
}

func (p *MemoryPersister) Save(_ context.Context, blobs map[string][]byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for name, b := range blobs {
		p.blobs[name] = append([]byte(nil), b...)
	}
	p.saves++
	return nil
}

// Put overwrites a single blob, bypassing the repository.
func (p *MemoryPersister) Put(name string, b []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blobs[name] = b
}

// Saves returns how many snapshots were written.
func (p *MemoryPersister) Saves() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.saves
}
