package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Purvav0511/cinefibo/internal/domain"
	"github.com/Purvav0511/cinefibo/internal/domain/shotprompt"
)

const (
	defaultRecentLimit = 20
	maxRecentLimit     = 100
)

// Store persists completed renders in PostgreSQL. Only terminal successful
// renders reach it; in-flight jobs are never stored or resumed from here.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a render history store backed by the given pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the renders table and its index when missing. The
// service owns its schema; there is no external migration step.
func (s *Store) EnsureSchema(ctx context.Context) error {
	table := `
CREATE TABLE IF NOT EXISTS renders (
    id UUID PRIMARY KEY,
    source TEXT NOT NULL,
    prompt TEXT NOT NULL DEFAULT '',
    image_url TEXT NOT NULL,
    request_id TEXT NOT NULL DEFAULT '',
    structured_prompt JSONB NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
	if _, err := s.pool.Exec(ctx, table); err != nil {
		return fmt.Errorf("history: create renders table: %w", err)
	}
	index := `CREATE INDEX IF NOT EXISTS idx_renders_created_at ON renders (created_at DESC);`
	if _, err := s.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("history: create renders index: %w", err)
	}
	return nil
}

// Record inserts one render. A missing id is assigned here so callers stay
// oblivious to storage concerns.
func (s *Store) Record(ctx context.Context, rec domain.RenderRecord) error {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}
	structured := []byte("{}")
	if len(rec.StructuredPrompt) > 0 {
		encoded, err := json.Marshal(rec.StructuredPrompt)
		if err != nil {
			return fmt.Errorf("history: encode structured prompt: %w", err)
		}
		structured = encoded
	}
	query := `
INSERT INTO renders (id, source, prompt, image_url, request_id, structured_prompt)
VALUES ($1, $2, $3, $4, $5, $6);
`
	if _, err := s.pool.Exec(ctx, query, id, string(rec.Source), rec.Prompt, rec.ImageURL, rec.RequestID, structured); err != nil {
		return fmt.Errorf("history: insert render: %w", err)
	}
	return nil
}

// Recent returns the newest renders first. Non-positive limits fall back to
// the default; oversized ones are clamped.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.RenderRecord, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}
	query := `
SELECT id, source, prompt, image_url, request_id, structured_prompt, created_at
FROM renders
ORDER BY created_at DESC
LIMIT $1;
`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query renders: %w", err)
	}
	defer rows.Close()

	var records []domain.RenderRecord
	for rows.Next() {
		var (
			rec    domain.RenderRecord
			source string
			raw    []byte
		)
		if err := rows.Scan(&rec.ID, &source, &rec.Prompt, &rec.ImageURL, &rec.RequestID, &raw, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan render: %w", err)
		}
		rec.Source = domain.RenderSource(source)
		if sp, decodeErr := shotprompt.Decode(raw); decodeErr == nil && sp != nil {
			rec.StructuredPrompt = sp
		} else {
			rec.StructuredPrompt = shotprompt.Structured{}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate renders: %w", err)
	}
	return records, nil
}
