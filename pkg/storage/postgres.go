package storage

import (
	"context"
	"database/sql"
	"fmt"
)

const createKVTable = `
CREATE TABLE IF NOT EXISTS storefront_kv (
	namespace  TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (namespace, key)
)`

// PostgresScope is a durable scope backed by the storefront_kv table
type PostgresScope struct {
	db        *sql.DB
	namespace string
}

// EnsureSchema creates the storefront_kv table if it does not exist
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createKVTable); err != nil {
		return fmt.Errorf("failed to create storefront_kv table: %w", err)
	}
	return nil
}

// NewPostgresScope returns a scope for namespace. EnsureSchema must have run once.
func NewPostgresScope(db *sql.DB, namespace string) *PostgresScope {
	return &PostgresScope{db: db, namespace: namespace}
}

func (p *PostgresScope) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT value FROM storefront_kv WHERE namespace = $1 AND key = $2`,
		p.namespace, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: failed to query %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresScope) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO storefront_kv (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()`,
		p.namespace, key, value)
	if err != nil {
		return fmt.Errorf("storage: failed to upsert %s: %w", key, err)
	}
	return nil
}

func (p *PostgresScope) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx,
		`DELETE FROM storefront_kv WHERE namespace = $1 AND key = $2`, p.namespace, key)
	if err != nil {
		return fmt.Errorf("storage: failed to delete %s: %w", key, err)
	}
	return nil
}
