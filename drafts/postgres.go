package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"checkout-flow/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createDraftsTable = `
CREATE TABLE IF NOT EXISTS checkout_drafts (
	session_id TEXT PRIMARY KEY,
	slot       TEXT NOT NULL,
	draft      JSONB NOT NULL,
	saved_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

const upsertDraft = `
INSERT INTO checkout_drafts (session_id, slot, draft, saved_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (session_id) DO UPDATE
SET slot = EXCLUDED.slot, draft = EXCLUDED.draft, saved_at = EXCLUDED.saved_at;
`

const selectDraft = `
SELECT draft
FROM checkout_drafts
WHERE session_id = $1 AND slot = $2;
`

const deleteDraft = `
DELETE FROM checkout_drafts
WHERE session_id = $1;
`

// PostgresStore keeps drafts in a checkout_drafts table so any worker can
// recover them after a redirect.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dsn and makes sure the table exists
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pool.Ping: %w", err)
	}
	if _, err := pool.Exec(ctx, createDraftsTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create checkout_drafts: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) Save(ctx context.Context, sessionID string, draft models.OrderDraft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if _, err := s.pool.Exec(ctx, upsertDraft, sessionID, Slot, raw); err != nil {
		return fmt.Errorf("conn.Exec: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, sessionID string) (*models.OrderDraft, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, selectDraft, sessionID, Slot).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("row.Scan: %w", err)
	}
	var d models.OrderDraft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("unmarshal draft: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.pool.Exec(ctx, deleteDraft, sessionID); err != nil {
		return fmt.Errorf("conn.Exec: %w", err)
	}
	return nil
}
