package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/chrisf-bit/agency-simulator-sub000/internal/game"
)

// Postgres stores each game as a JSONB document plus the few columns the
// worker's deadline sweep needs to query without unpacking documents.
type Postgres struct {
	pool *pgxpool.Pool
}

func Connect(ctx context.Context, databaseURL string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	p := &Postgres{pool: pool}
	if err := p.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			join_code TEXT NOT NULL UNIQUE,
			status TEXT NOT NULL,
			submission_deadline TIMESTAMPTZ,
			version BIGINT NOT NULL,
			doc JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate games: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS games_deadline_idx
		ON games (submission_deadline)
		WHERE status = 'running'
	`)
	if err != nil {
		return fmt.Errorf("migrate games index: %w", err)
	}
	return nil
}

func (p *Postgres) CreateGame(ctx context.Context, g *game.Game) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO games (id, join_code, status, submission_deadline, version, doc)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, g.ID, g.JoinCode, string(g.Status), deadlineOrNil(g), g.Version, doc)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (p *Postgres) GetGame(ctx context.Context, id string) (*game.Game, error) {
	return p.getWhere(ctx, `id = $1`, id)
}

func (p *Postgres) GetGameByJoinCode(ctx context.Context, code string) (*game.Game, error) {
	g, err := p.getWhere(ctx, `join_code = $1`, code)
	if errors.Is(err, game.ErrGameNotFound) {
		return nil, game.ErrBadJoinCode
	}
	return g, err
}

func (p *Postgres) getWhere(ctx context.Context, where string, arg any) (*game.Game, error) {
	var doc []byte
	err := p.pool.QueryRow(ctx, `SELECT doc FROM games WHERE `+where, arg).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, game.ErrGameNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	var g game.Game
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &g, nil
}

func (p *Postgres) UpdateGame(ctx context.Context, g *game.Game) error {
	prev := g.Version
	g.Version++
	doc, err := json.Marshal(g)
	if err != nil {
		g.Version = prev
		return err
	}
	tag, err := p.pool.Exec(ctx, `
		UPDATE games
		SET status = $1, submission_deadline = $2, version = $3, doc = $4, updated_at = now()
		WHERE id = $5 AND version = $6
	`, string(g.Status), deadlineOrNil(g), g.Version, doc, g.ID, prev)
	if err != nil {
		g.Version = prev
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		g.Version = prev
		var exists bool
		if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, g.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update game: %w", err)
		}
		if !exists {
			return game.ErrGameNotFound
		}
		return game.ErrConflict
	}
	return nil
}

func (p *Postgres) ListOverdue(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id FROM games
		WHERE status = 'running' AND submission_deadline IS NOT NULL AND submission_deadline < $1
		ORDER BY submission_deadline
	`, now)
	if err != nil {
		return nil, fmt.Errorf("list overdue: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func deadlineOrNil(g *game.Game) any {
	if g.SubmissionDeadline.IsZero() {
		return nil
	}
	return g.SubmissionDeadline
}
