package store

import (
	"context"
	"database/sql"
	"fmt"
)

// StateStore holds the singleton sync bookkeeping row: the fingerprint of the
// last remote index this cache was reconciled against, and a snapshot of that
// index for offline reads.
type StateStore struct {
	db *sql.DB
}

func NewStateStore(db *sql.DB) *StateStore {
	return &StateStore{db: db}
}

// Fingerprint returns the stored remote index checksum, or "" when the cache
// has never been synced.
func (s *StateStore) Fingerprint(ctx context.Context) (string, error) {
	var fingerprint sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT fingerprint FROM library_state WHERE id = 1").Scan(&fingerprint)
	if err != nil {
		return "", fmt.Errorf("failed to load fingerprint: %w", err)
	}
	return fingerprint.String, nil
}

func (s *StateStore) SaveFingerprint(ctx context.Context, fingerprint string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE library_state SET fingerprint = ? WHERE id = 1", fingerprint); err != nil {
		return fmt.Errorf("failed to save fingerprint: %w", err)
	}
	return nil
}

// Snapshot returns the serialized index captured at the last successful sync
// or remote write, or "" when none exists.
func (s *StateStore) Snapshot(ctx context.Context) (string, error) {
	var snapshot sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT snapshot FROM library_state WHERE id = 1").Scan(&snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snapshot.String, nil
}

func (s *StateStore) SaveSnapshot(ctx context.Context, snapshot string) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE library_state SET snapshot = ? WHERE id = 1", snapshot); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// Clear wipes both the fingerprint and the snapshot, forcing the next sync to
// run a full reconcile.
func (s *StateStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "UPDATE library_state SET fingerprint = '', snapshot = '' WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to clear library state: %w", err)
	}
	return nil
}
