// Package db provides database connection helpers.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool creates and verifies a pgxpool connection pool.
func NewPostgresPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}

	return pool, nil
}

// EnsureSchema creates the match_scores table this service owns. The primary
// key doubles as the uniqueness constraint: at most one cached score per
// (seeker, job) pair, which is what makes concurrent cache-miss inserts safe
// to resolve with ON CONFLICT DO NOTHING.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS match_scores (
			seeker_id   BIGINT           NOT NULL,
			jobpost_id  BIGINT           NOT NULL,
			score       DOUBLE PRECISION NOT NULL,
			computed_at TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
			PRIMARY KEY (seeker_id, jobpost_id)
		)`)
	if err != nil {
		return fmt.Errorf("ensure match_scores: %w", err)
	}
	return nil
}
