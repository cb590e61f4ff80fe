package match

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"handshake/match-service/internal/catalog"
	"handshake/match-service/internal/geo"
	"handshake/match-service/internal/query"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// DistanceOracle is the external geocoding-backed distance lookup.
// Implemented by geo.Geocoder.
type DistanceOracle interface {
	Distance(ctx context.Context, a, b geo.Location) (float64, error)
	Within(ctx context.Context, miles float64, a, b geo.Location) bool
}

// Service encapsulates scoring, ranked search and the persisted score cache.
// It is the only writer of the score store; everything else reads scores
// through it.
type Service struct {
	store   ScoreStore
	snaps   SnapshotSource
	rdb     *redis.Client
	oracle  DistanceOracle
	cat     *catalog.Catalog
	weights Weights
}

// NewService returns a configured Service. Production wiring passes
// NewScoreStore and NewSnapshotSource over the shared pool.
func NewService(store ScoreStore, snaps SnapshotSource, rdb *redis.Client, oracle DistanceOracle, cat *catalog.Catalog, w Weights) *Service {
	return &Service{store: store, snaps: snaps, rdb: rdb, oracle: oracle, cat: cat, weights: w}
}

// UniverseSizes returns the current attribute-universe sizes for decoding
// filter parameters.
func (s *Service) UniverseSizes() query.UniverseSizes {
	return query.UniverseSizes{
		Skills:    s.cat.Skills().Size(),
		Attitudes: s.cat.Attitudes().Size(),
	}
}

// distanceFunc adapts the oracle to the pure scorer's callback shape.
func (s *Service) distanceFunc(ctx context.Context) DistanceFunc {
	return func(cityA, stateA, cityB, stateB string) (float64, error) {
		return s.oracle.Distance(ctx,
			geo.Location{City: cityA, State: stateA},
			geo.Location{City: cityB, State: stateB})
	}
}

// loadSeeker materializes one seeker snapshot, active or not.
func (s *Service) loadSeeker(ctx context.Context, id int64) (*SeekerSnapshot, error) {
	seekers, err := s.snaps.Seekers(ctx, &id, false)
	if err != nil {
		return nil, err
	}
	if len(seekers) == 0 {
		return nil, fmt.Errorf("seeker %d: %w", id, ErrNotFound)
	}
	return &seekers[0], nil
}

// loadJob materializes one job snapshot, active or not.
func (s *Service) loadJob(ctx context.Context, id int64) (*JobSnapshot, error) {
	jobs, err := s.snaps.Jobs(ctx, &id, false)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, fmt.Errorf("job post %d: %w", id, ErrNotFound)
	}
	return &jobs[0], nil
}

// ─── Score cache ─────────────────────────────────────────────────────────────

// GetScore returns the match score for a (job, seeker) pair. With useCache it
// checks the store first; on a miss it computes, caches and returns the score.
// Without useCache it always recomputes (and does not overwrite the cached
// row — use RefreshScores for that).
func (s *Service) GetScore(ctx context.Context, jobID, seekerID int64, useCache bool) (float64, error) {
	if useCache {
		score, ok, err := s.store.Lookup(ctx, jobID, seekerID)
		if err != nil {
			return 0, err
		}
		if ok {
			return score, nil
		}
	}

	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	seeker, err := s.loadSeeker(ctx, seekerID)
	if err != nil {
		return 0, err
	}

	score := Score(seeker, job, s.distanceFunc(ctx), s.weights)

	// Insert-if-absent: a concurrent request may have cached the same pair
	// already. The value is deterministic, so the redundant write is simply
	// discarded rather than treated as an error.
	if err := s.store.PutIfAbsent(ctx, jobID, seekerID, score); err != nil {
		slog.Warn("score cache insert failed", "jobpostId", jobID, "seekerId", seekerID, "err", err)
	}

	return score, nil
}

// RefreshScores recomputes and overwrites cached scores for the cross product
// of the given job(s) × seeker(s); a nil id means all. The owning CRUD layer
// calls this after any mutation to a seeker's skills/attitudes or a job's
// requirements; the cron scheduler calls it with (nil, nil).
//
// The batch gives no ordering guarantee between pairs, and a failed pair is
// skipped rather than aborting the batch. Returns the refreshed and skipped
// counts.
func (s *Service) RefreshScores(ctx context.Context, jobID, seekerID *int64) (refreshed, skipped int, err error) {
	jobs, err := s.snaps.Jobs(ctx, jobID, false)
	if err != nil {
		return 0, 0, err
	}
	if jobID != nil && len(jobs) == 0 {
		return 0, 0, fmt.Errorf("job post %d: %w", *jobID, ErrNotFound)
	}
	seekers, err := s.snaps.Seekers(ctx, seekerID, false)
	if err != nil {
		return 0, 0, err
	}
	if seekerID != nil && len(seekers) == 0 {
		return 0, 0, fmt.Errorf("seeker %d: %w", *seekerID, ErrNotFound)
	}

	dist := s.distanceFunc(ctx)
	for i := range seekers {
		for j := range jobs {
			score := Score(&seekers[i], &jobs[j], dist, s.weights)
			if err := s.store.Put(ctx, jobs[j].ID, seekers[i].ID, score); err != nil {
				slog.Warn("score refresh failed, skipping pair",
					"jobpostId", jobs[j].ID, "seekerId", seekers[i].ID, "err", err)
				skipped++
				continue
			}
			refreshed++
		}
	}

	s.publishRefreshed(ctx, refreshed, skipped)
	return refreshed, skipped, nil
}

// publishRefreshed notifies the gateway that cached scores changed (non-fatal).
func (s *Service) publishRefreshed(ctx context.Context, refreshed, skipped int) {
	if s.rdb == nil {
		return
	}
	event, _ := json.Marshal(map[string]int{
		"refreshed": refreshed,
		"skipped":   skipped,
	})
	if err := s.rdb.Publish(ctx, "EVENT_SCORES_REFRESHED", event).Err(); err != nil {
		slog.Warn("publish EVENT_SCORES_REFRESHED failed", "err", err)
	}
}

// ─── Ranked search ───────────────────────────────────────────────────────────

// RankJobsForSeeker returns the best-matching active job posts for a seeker,
// narrowed by the given filters: positive scores only, score descending,
// ties by job recency then id (see TopMatches), capped at limit.
func (s *Service) RankJobsForSeeker(ctx context.Context, seekerID int64, f query.Filters, limit int) ([]Ranked, error) {
	if _, err := s.loadSeeker(ctx, seekerID); err != nil {
		return nil, err
	}
	jobs, err := s.snaps.Jobs(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	skillSize := s.cat.Skills().Size()
	attSize := s.cat.Attitudes().Size()

	entries := make([]Ranked, 0, len(jobs))
	for i := range jobs {
		job := &jobs[i]
		if !s.jobMatchesFilters(ctx, &f, job, skillSize, attSize) {
			continue
		}
		score, err := s.GetScore(ctx, job.ID, seekerID, true)
		if err != nil {
			slog.Warn("scoring candidate failed, skipping", "jobpostId", job.ID, "seekerId", seekerID, "err", err)
			continue
		}
		entries = append(entries, Ranked{ID: job.ID, Score: score, CreatedAt: job.CreatedAt})
	}
	return TopMatches(entries, limit), nil
}

// RankSeekersForJob is the symmetric operation: best-matching active seekers
// for a job post.
func (s *Service) RankSeekersForJob(ctx context.Context, jobID int64, f query.Filters, limit int) ([]Ranked, error) {
	if _, err := s.loadJob(ctx, jobID); err != nil {
		return nil, err
	}
	seekers, err := s.snaps.Seekers(ctx, nil, true)
	if err != nil {
		return nil, err
	}

	skillSize := s.cat.Skills().Size()
	attSize := s.cat.Attitudes().Size()

	entries := make([]Ranked, 0, len(seekers))
	for i := range seekers {
		seeker := &seekers[i]
		if !s.seekerMatchesFilters(ctx, &f, seeker, skillSize, attSize) {
			continue
		}
		score, err := s.GetScore(ctx, jobID, seeker.ID, true)
		if err != nil {
			slog.Warn("scoring candidate failed, skipping", "jobpostId", jobID, "seekerId", seeker.ID, "err", err)
			continue
		}
		entries = append(entries, Ranked{ID: seeker.ID, Score: score, CreatedAt: seeker.CreatedAt})
	}
	return TopMatches(entries, limit), nil
}

// jobMatchesFilters applies the decoded search filters to one job snapshot.
func (s *Service) jobMatchesFilters(ctx context.Context, f *query.Filters, job *JobSnapshot, skillSize, attSize int) bool {
	if !f.MatchesWorkType(job.WorkType, job.Remote) {
		return false
	}
	if !f.MatchesSalary(job.SalaryMin, job.SalaryMax) {
		return false
	}
	skillMask := job.SkillMask(skillSize)
	if !f.MatchesTech(skillMask) || !f.MatchesBiz(skillMask) {
		return false
	}
	if !f.MatchesAttitudes(job.AttitudeMask(attSize)) {
		return false
	}
	if f.Distance != nil {
		from := geo.Location{City: f.Distance.City, State: f.Distance.State}
		to := geo.Location{City: job.City, State: job.State}
		if !s.oracle.Within(ctx, float64(f.Distance.Miles), from, to) {
			return false
		}
	}
	return true
}

// seekerMatchesFilters applies the decoded search filters to one seeker
// snapshot.
func (s *Service) seekerMatchesFilters(ctx context.Context, f *query.Filters, seeker *SeekerSnapshot, skillSize, attSize int) bool {
	if !f.MatchesWorkType(seeker.WorkWanted, seeker.RemoteWanted) {
		return false
	}
	if !f.MatchesEducation(seeker.MinEducationLevel) {
		return false
	}
	if !f.MatchesExperience(seeker.YearsExperience) {
		return false
	}
	if !f.MatchesTech(seeker.TechMask(skillSize)) || !f.MatchesBiz(seeker.BizMask(skillSize)) {
		return false
	}
	if !f.MatchesAttitudes(seeker.AttitudeMask(attSize)) {
		return false
	}
	if f.Distance != nil {
		from := geo.Location{City: f.Distance.City, State: f.Distance.State}
		to := geo.Location{City: seeker.City, State: seeker.State}
		if !s.oracle.Within(ctx, float64(f.Distance.Miles), from, to) {
			return false
		}
	}
	return true
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrNotFound is returned when a seeker or job post id does not resolve to a
// record. Missing attributes on an existing record are scored as non-matches,
// never as errors.
var ErrNotFound = fmt.Errorf("record not found")
