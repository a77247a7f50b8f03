package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
    key         TEXT PRIMARY KEY,
    value       TEXT NOT NULL,
    updated_at  TEXT NOT NULL
);`

// SQLiteStore keeps the cart as one JSON row in a key/value table, the
// server-side counterpart of the browser's local storage.
type SQLiteStore struct {
	db  *sql.DB
	key string
}

// NewSQLiteStore applies the schema and returns a store bound to key.
func NewSQLiteStore(ctx context.Context, db *sql.DB, key string) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, kvSchema); err != nil {
		return nil, fmt.Errorf("sqlite: apply cart schema: %w", err)
	}
	return &SQLiteStore{db: db, key: key}, nil
}

func (s *SQLiteStore) Load(ctx context.Context) ([]domain.LineItem, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.LineItem{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: load cart %q: %w", s.key, err)
	}
	return decodeItems([]byte(value))
}

func (s *SQLiteStore) Save(ctx context.Context, items []domain.LineItem) error {
	data, err := encodeItems(items)
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, q, s.key, string(data), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("sqlite: save cart %q: %w", s.key, err)
	}
	return nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("sqlite: clear cart %q: %w", s.key, err)
	}
	return nil
}
