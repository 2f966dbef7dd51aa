package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/drawdash/server/internal"
)

const matchesSchema = `
CREATE TABLE IF NOT EXISTS matches (
	id          BIGSERIAL PRIMARY KEY,
	room_code   TEXT        NOT NULL,
	rounds      INT         NOT NULL,
	players     INT         NOT NULL,
	leaderboard JSONB       NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL
)`

// MatchArchive is a write-only record of finished matches. Nothing in the
// game path reads it back; losing a row never affects play.
type MatchArchive struct {
	pool *pgxpool.Pool
}

// NewMatchArchive connects to Postgres and ensures the matches table exists.
func NewMatchArchive(ctx context.Context, databaseURL string) (*MatchArchive, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to archive database: %w", err)
	}
	if _, err := pool.Exec(ctx, matchesSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure matches table: %w", err)
	}
	return &MatchArchive{pool: pool}, nil
}

// SaveMatch inserts one finished match.
func (a *MatchArchive) SaveMatch(ctx context.Context, rec internal.MatchRecord) error {
	leaderboard, err := json.Marshal(rec.Leaderboard)
	if err != nil {
		return fmt.Errorf("marshal leaderboard: %w", err)
	}
	_, err = a.pool.Exec(ctx,
		`INSERT INTO matches (room_code, rounds, players, leaderboard, finished_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.RoomCode, rec.Rounds, rec.Players, leaderboard, rec.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	log.Printf("[MatchArchive] recorded match for room %s (%d players)", rec.RoomCode, rec.Players)
	return nil
}

// Close releases the connection pool.
func (a *MatchArchive) Close() {
	a.pool.Close()
}
