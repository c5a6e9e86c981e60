package preferences

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// DBFileName is the preferences database inside the state directory.
const DBFileName = "preferences.db"

// Store loads and saves preferences.
type Store interface {
	Load(ctx context.Context) (Preferences, error)
	Save(ctx context.Context, p Preferences) error
	Close() error
}

// MemoryStore keeps preferences in memory only.
type MemoryStore struct {
	mu    sync.Mutex
	prefs Preferences
}

// NewMemoryStore returns a store holding the defaults.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: Defaults()}
}

// Load returns the held preferences.
func (m *MemoryStore) Load(context.Context) (Preferences, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prefs, nil
}

// Save validates and replaces the held preferences.
func (m *MemoryStore) Save(_ context.Context, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prefs = p
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

const schemaSQL = `
CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
);`

const upsertSQL = `
INSERT INTO preferences (key, value, updated_at)
VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at;`

// SQLiteStore persists preferences in a key/value table.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (and creates if needed) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("preferences store: db path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("preferences store: create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("preferences store: open db: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// OpenInStateDir opens the preferences database under stateDir.
func OpenInStateDir(stateDir string) (*SQLiteStore, error) {
	return OpenSQLite(filepath.Join(stateDir, DBFileName))
}

func (s *SQLiteStore) init() error {
	if _, err := s.db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return fmt.Errorf("preferences store: set busy timeout: %w", err)
	}
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("preferences store: create schema: %w", err)
	}
	return nil
}

// Load reads stored preferences, filling gaps with the defaults.
func (s *SQLiteStore) Load(ctx context.Context) (Preferences, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM preferences")
	if err != nil {
		return Defaults(), fmt.Errorf("preferences store: query: %w", err)
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Defaults(), fmt.Errorf("preferences store: scan: %w", err)
		}
		values[key] = value
	}
	if err := rows.Err(); err != nil {
		return Defaults(), fmt.Errorf("preferences store: iterate: %w", err)
	}
	return fromMap(values), nil
}

// Save writes every preference in one transaction.
func (s *SQLiteStore) Save(ctx context.Context, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("preferences store: begin: %w", err)
	}
	for key, value := range p.toMap() {
		if _, err := tx.ExecContext(ctx, upsertSQL, key, value); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("preferences store: save %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("preferences store: commit: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
