package match

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ScoreStore is the persisted score cache: one row per (seeker, job) pair.
// Implemented by the pgx-backed store over match_scores; tests substitute an
// in-memory fake.
type ScoreStore interface {
	// Lookup returns the cached score for a pair and whether a row exists.
	Lookup(ctx context.Context, jobID, seekerID int64) (float64, bool, error)
	// PutIfAbsent caches a score unless the pair already has one. Scores are
	// deterministic, so losing the race to another writer is not an error.
	PutIfAbsent(ctx context.Context, jobID, seekerID int64, score float64) error
	// Put caches a score, overwriting any previous value for the pair.
	Put(ctx context.Context, jobID, seekerID int64, score float64) error
}

// NewScoreStore returns the ScoreStore backed by the match_scores table.
func NewScoreStore(pool *pgxpool.Pool) ScoreStore {
	return &pgScoreStore{pool: pool}
}

type pgScoreStore struct {
	pool *pgxpool.Pool
}

func (s *pgScoreStore) Lookup(ctx context.Context, jobID, seekerID int64) (float64, bool, error) {
	var score float64
	err := s.pool.QueryRow(ctx,
		`SELECT score FROM match_scores WHERE jobpost_id = $1 AND seeker_id = $2`,
		jobID, seekerID,
	).Scan(&score)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("score cache lookup: %w", err)
	}
	return score, true, nil
}

func (s *pgScoreStore) PutIfAbsent(ctx context.Context, jobID, seekerID int64, score float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_scores (seeker_id, jobpost_id, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (seeker_id, jobpost_id) DO NOTHING`,
		seekerID, jobID, score,
	)
	return err
}

func (s *pgScoreStore) Put(ctx context.Context, jobID, seekerID int64, score float64) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO match_scores (seeker_id, jobpost_id, score)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (seeker_id, jobpost_id)
		 DO UPDATE SET score = EXCLUDED.score, computed_at = NOW()`,
		seekerID, jobID, score,
	)
	return err
}
