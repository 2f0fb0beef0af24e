package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// The store keeps two logical records in a single key-value table: the
// full ordered event collection and the AppState singleton. Every write
// replaces a whole record inside one transaction, so a crash mid-write
// never corrupts unrelated state. Writes are unconditional: the last
// writer wins, and callers re-read before computing a delta.
const (
	eventsKey   = "citadel:events"
	appStateKey = "citadel:app_state"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key   TEXT PRIMARY KEY,
	value BLOB NOT NULL
)`

// Migrate creates the key-value table when missing.
func Migrate(db *sqlx.DB) error {
	if _, err := db.Exec(kvSchema); err != nil {
		return fmt.Errorf("create kv_store table: %w", err)
	}
	return nil
}

func kvGet(ctx context.Context, q sqlx.QueryerContext, key string) ([]byte, error) {
	var value []byte
	err := sqlx.GetContext(ctx, q, &value, `SELECT value FROM kv_store WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read kv record %s: %w", key, err)
	}
	return value, nil
}

func kvPut(ctx context.Context, e sqlx.ExecerContext, key string, value []byte) error {
	const query = `INSERT INTO kv_store (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	if _, err := e.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("write kv record %s: %w", key, err)
	}
	return nil
}
