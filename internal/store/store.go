// Package store handles persistence of the session history blob.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Default location of the history blob inside the settings table.
const (
	HistoryGroup = "afkStatsTracker"
	HistoryKey   = "sessionHistory"
)

// Store wraps SQLite access for grouped key/value settings.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			grp TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now')),
			PRIMARY KEY (grp, key)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// GetValue returns the stored value, or "" when the key is absent.
func (s *Store) GetValue(ctx context.Context, group, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE grp = ? AND key = ?`, group, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetValue inserts or replaces a value in a single statement.
func (s *Store) SetValue(ctx context.Context, group, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO settings (grp, key, value) VALUES (?, ?, ?)
		 ON CONFLICT(grp, key) DO UPDATE SET value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		group, key, value)
	return err
}

// Blob exposes one settings entry as a single-string storage port.
type Blob struct {
	store *Store
	group string
	key   string
}

// Blob returns the port for group/key.
func (s *Store) Blob(group, key string) *Blob {
	return &Blob{store: s, group: group, key: key}
}

// Load implements history.Storage.
func (b *Blob) Load() (string, error) {
	return b.store.GetValue(context.Background(), b.group, b.key)
}

// Save implements history.Storage.
func (b *Blob) Save(blob string) error {
	return b.store.SetValue(context.Background(), b.group, b.key, blob)
}
