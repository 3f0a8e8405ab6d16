package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nickalves75-netizen/ai-receptionist-sub000/pkg/utils"
)

// PostgresStore persists call sessions in a single call_sessions table.
//
// collected_data is JSONB and merged with the || operator; CollectedData
// marshals with omitempty, so absent fields never overwrite stored ones.
// The recap guard lives in an explicit sms_sent column so the claim can be
// a single conditional UPDATE instead of read-then-write.

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore { return &PostgresStore{db: db} }

// EnsureSchema creates the call_sessions table if it does not exist.
// Both statements run in one transaction so a half-applied schema cannot
// survive a crash mid-migration.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS call_sessions (
    call_id          TEXT PRIMARY KEY,
    from_number      TEXT NOT NULL DEFAULT '',
    to_number        TEXT NOT NULL DEFAULT '',
    status           TEXT NOT NULL DEFAULT 'in-progress',
    state            TEXT NOT NULL DEFAULT 'collect',
    collected_data   JSONB NOT NULL DEFAULT '{}'::jsonb,
    transcript       TEXT NOT NULL DEFAULT '',
    duration_seconds INT NOT NULL DEFAULT 0,
    sms_sent         BOOLEAN NOT NULL DEFAULT FALSE,
    sms_sid          TEXT NOT NULL DEFAULT '',
    started_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    ended_at         TIMESTAMPTZ,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
		`CREATE INDEX IF NOT EXISTS idx_call_sessions_started_at ON call_sessions (started_at)`,
	}
	err := utils.WithTx(ctx, db, nil, func(ctx context.Context, tx *sql.Tx) error {
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, callID string) (CallSession, error) {
	const q = `
SELECT call_id, from_number, to_number, status, state, collected_data, transcript,
       duration_seconds, sms_sent, sms_sid, started_at, ended_at, updated_at
FROM call_sessions
WHERE call_id = $1
`
	var (
		sess CallSession
		raw  []byte
	)
	err := s.db.QueryRowContext(ctx, q, callID).Scan(
		&sess.CallID,
		&sess.FromNumber,
		&sess.ToNumber,
		&sess.Status,
		&sess.State,
		&raw,
		&sess.Transcript,
		&sess.DurationSeconds,
		&sess.SMSSent,
		&sess.SMSSID,
		&sess.StartedAt,
		&sess.EndedAt,
		&sess.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallSession{}, ErrNotFound
		}
		return CallSession{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &sess.CollectedData); err != nil {
			return CallSession{}, fmt.Errorf("session: decode collected_data: %w", err)
		}
	}
	return sess, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, sess CallSession) error {
	data, err := json.Marshal(sess.CollectedData)
	if err != nil {
		return fmt.Errorf("session: encode collected_data: %w", err)
	}

	const q = `
INSERT INTO call_sessions (call_id, from_number, to_number, status, state, collected_data, transcript, started_at)
VALUES ($1, $2, $3, COALESCE(NULLIF($4, ''), 'in-progress'), COALESCE(NULLIF($5, ''), 'collect'), $6, $7, now())
ON CONFLICT (call_id) DO UPDATE SET
    from_number    = COALESCE(NULLIF(EXCLUDED.from_number, ''), call_sessions.from_number),
    to_number      = COALESCE(NULLIF(EXCLUDED.to_number, ''), call_sessions.to_number),
    status         = COALESCE(NULLIF($4, ''), call_sessions.status),
    state          = COALESCE(NULLIF($5, ''), call_sessions.state),
    collected_data = call_sessions.collected_data || EXCLUDED.collected_data,
    transcript     = COALESCE(NULLIF(EXCLUDED.transcript, ''), call_sessions.transcript),
    updated_at     = now()
`
	_, err = s.db.ExecContext(ctx, q,
		sess.CallID,
		sess.FromNumber,
		sess.ToNumber,
		string(sess.Status),
		string(sess.State),
		data,
		sess.Transcript,
	)
	return err
}

func (s *PostgresStore) UpdateCallStatus(ctx context.Context, callID string, status CallStatus, durationSeconds int, endedAt *time.Time) error {
	// Status callbacks can land before the first voice turn, so this is an
	// upsert too. It only owns status, duration and ended_at.
	const q = `
INSERT INTO call_sessions (call_id, status, duration_seconds, ended_at)
VALUES ($1, COALESCE(NULLIF($2, ''), 'in-progress'), $3, $4)
ON CONFLICT (call_id) DO UPDATE SET
    status           = COALESCE(NULLIF($2, ''), call_sessions.status),
    duration_seconds = GREATEST(call_sessions.duration_seconds, $3),
    ended_at         = COALESCE($4, call_sessions.ended_at),
    updated_at       = now()
`
	_, err := s.db.ExecContext(ctx, q, callID, string(status), durationSeconds, endedAt)
	return err
}

func (s *PostgresStore) ClaimRecap(ctx context.Context, callID string) (bool, error) {
	const q = `
UPDATE call_sessions
SET sms_sent = TRUE, updated_at = now()
WHERE call_id = $1 AND sms_sent = FALSE
`
	res, err := s.db.ExecContext(ctx, q, callID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *PostgresStore) ReleaseRecap(ctx context.Context, callID string) error {
	const q = `UPDATE call_sessions SET sms_sent = FALSE, updated_at = now() WHERE call_id = $1`
	_, err := s.db.ExecContext(ctx, q, callID)
	return err
}

func (s *PostgresStore) SetRecapSID(ctx context.Context, callID, sid string) error {
	const q = `UPDATE call_sessions SET sms_sid = $2, updated_at = now() WHERE call_id = $1`
	_, err := s.db.ExecContext(ctx, q, callID, sid)
	return err
}

// List returns sessions started within [from, to). Used by reporting.
func (s *PostgresStore) List(ctx context.Context, from, to time.Time) ([]CallSession, error) {
	const q = `
SELECT call_id, from_number, to_number, status, state, collected_data, transcript,
       duration_seconds, sms_sent, sms_sid, started_at, ended_at, updated_at
FROM call_sessions
WHERE started_at >= $1 AND started_at < $2
ORDER BY started_at
`
	rows, err := s.db.QueryContext(ctx, q, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CallSession
	for rows.Next() {
		var (
			sess CallSession
			raw  []byte
		)
		if err := rows.Scan(
			&sess.CallID,
			&sess.FromNumber,
			&sess.ToNumber,
			&sess.Status,
			&sess.State,
			&raw,
			&sess.Transcript,
			&sess.DurationSeconds,
			&sess.SMSSent,
			&sess.SMSSID,
			&sess.StartedAt,
			&sess.EndedAt,
			&sess.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &sess.CollectedData); err != nil {
				return nil, fmt.Errorf("session: decode collected_data: %w", err)
			}
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}
