package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/chiptable/holdem/internal/engine"
	"github.com/chiptable/holdem/internal/game"
)

// Postgres stores each game as a JSON document keyed by game ID.
type Postgres struct {
	db *sql.DB
}

// OpenPostgres connects with the given DSN and ensures the schema.
func OpenPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store: ping postgres: %w", err)
	}
	p := &Postgres{db: db}
	if err := p.migrate(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// NewPostgres wraps an existing connection without migrating.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) migrate(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS games (
  game_id    text PRIMARY KEY,
  status     text NOT NULL,
  state      jsonb NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS games_status_idx ON games (status);
`
	if _, err := p.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Load implements engine.Store.
func (p *Postgres) Load(ctx context.Context, gameID string) (*game.State, error) {
	const q = `SELECT state FROM games WHERE game_id = $1`
	var doc []byte
	err := p.db.QueryRowContext(ctx, q, gameID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", engine.ErrGameNotFound, gameID)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load game %s: %w", gameID, err)
	}
	var s game.State
	if err := json.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("store: decode game %s: %w", gameID, err)
	}
	return &s, nil
}

// Save implements engine.Store: the document is replaced atomically.
func (p *Postgres) Save(ctx context.Context, s *game.State) error {
	doc, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("store: encode game %s: %w", s.GameID, err)
	}
	const q = `
INSERT INTO games (game_id, status, state, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (game_id) DO UPDATE SET
  status = EXCLUDED.status,
  state = EXCLUDED.state,
  updated_at = now()
`
	if _, err := p.db.ExecContext(ctx, q, s.GameID, string(s.Status), doc); err != nil {
		return fmt.Errorf("store: save game %s: %w", s.GameID, err)
	}
	return nil
}

// ListInProgress implements engine.Store.
func (p *Postgres) ListInProgress(ctx context.Context) ([]string, error) {
	const q = `SELECT game_id FROM games WHERE status = $1`
	rows, err := p.db.QueryContext(ctx, q, string(game.GameInProgress))
	if err != nil {
		return nil, fmt.Errorf("store: list games: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store: scan game id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
