package audit

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresRepo stores events in an INSERT-only audit_events table.

type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

// EnsureSchema creates the audit_events table if it does not exist.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	const q = `
CREATE TABLE IF NOT EXISTS audit_events (
    id         TEXT PRIMARY KEY,
    call_id    TEXT NOT NULL,
    type       TEXT NOT NULL,
    message    TEXT NOT NULL DEFAULT '',
    metadata   TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	if _, err := db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("audit: ensure schema: %w", err)
	}
	return nil
}

func (r *PostgresRepo) Append(ctx context.Context, e Event) error {
	const q = `
INSERT INTO audit_events (id, call_id, type, message, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.CallID, string(e.Type), e.Message, e.Metadata, e.CreatedAt)
	return err
}
