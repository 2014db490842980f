package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/conference-booking/internal/repository"
)

const (
	createBlobTable = `CREATE TABLE IF NOT EXISTS conference_blobs (
  name VARCHAR(64) NOT NULL PRIMARY KEY,
  payload LONGBLOB NOT NULL,
  updated_at DATETIME(6) NOT NULL
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

	selectBlob = `SELECT payload FROM conference_blobs WHERE name = ?`

	upsertBlob = `INSERT INTO conference_blobs (name, payload, updated_at) VALUES (?, ?, ?) ` +
		`ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
)

// BlobStore persists repository collections as rows of conference_blobs,
// one row per collection name. It implements repository.Persister.
type BlobStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewBlobStore(db *sql.DB) *BlobStore {
	return &BlobStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// EnsureSchema creates the blob table when it does not exist.
func (s *BlobStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createBlobTable); err != nil {
		return fmt.Errorf("create conference_blobs: %w", err)
	}
	return nil
}

// Load returns the stored payload, or repository.ErrNoBlob when the
// collection has no row yet.
func (s *BlobStore) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, selectBlob, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNoBlob
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// Save upserts every blob in one transaction so a snapshot is never
// half-written.
func (s *BlobStore) Save(ctx context.Context, blobs map[string][]byte) (err error) {
	names := make([]string, 0, len(blobs))
	for n := range blobs {
		names = append(names, n)
	}
	sort.Strings(names)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := s.now()
	for _, n := range names {
		if _, err = tx.ExecContext(ctx, upsertBlob, n, blobs[n], now); err != nil {
			return fmt.Errorf("upsert %s: %w", n, err)
		}
	}
	return tx.Commit()
}
