// Package session provides the session-scoped preference store. It is backed
// by an in-memory sqlite database, so every stored record lives exactly as
// long as the process — nothing reaches permanent storage.
package session

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/Custom-Logic/pdfsmaller-advanced-sub003/internal/dbx"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultDSN keeps the database in memory and shared across connections of
// this process.
const DefaultDSN = "file:pdfsmaller_session?mode=memory&cache=shared"

// Store is a small keyed blob store for session preferences.
type Store struct {
	db *sql.DB
}

// Open initializes the database and applies migrations. An empty dsn selects
// DefaultDSN.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	// Shared-cache in-memory sqlite is dropped when the last connection
	// closes; pinning one connection keeps the session alive.
	db.SetMaxIdleConns(1)

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("applying session migrations: %w", err)
	}
	return nil
}

// Get returns the stored value for key, or nil when the key is absent.
// Storage problems degrade to a nil read as well: a broken session store must
// never block the widget from initializing.
func (s *Store) Get(ctx context.Context, key string) []byte {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return nil
	}
	return value
}

// Put stores value under key, replacing any previous value.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("storing preference %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM preferences WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("deleting preference %q: %w", key, err)
	}
	return nil
}

// WithTx exposes transactional access for callers updating several
// preferences atomically.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) error {
	return dbx.WithTx(ctx, s.db, nil, fn)
}

// Close releases the database. The in-memory session content is gone after
// this returns.
func (s *Store) Close() error {
	return s.db.Close()
}
