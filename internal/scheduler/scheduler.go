// Package scheduler wires up the cron job that periodically recomputes the
// full match-score cache, so drifting geocode data and missed refresh calls
// from the CRUD layer eventually converge.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"

	"handshake/match-service/internal/match"
)

// Scheduler wraps robfig/cron and manages the bulk refresh loop.
type Scheduler struct {
	cron *cron.Cron
	svc  *match.Service
	spec string // cron spec, e.g. "@every 12h"
}

// New creates a Scheduler that fires every intervalHours hours.
func New(svc *match.Service, intervalHours int) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithLogger(cron.DefaultLogger)),
		svc:  svc,
		spec: fmt.Sprintf("@every %dh", intervalHours),
	}
}

// Start registers the job and starts the scheduler. Also runs one refresh
// immediately so a fresh deployment serves scores without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRefresh(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	// Run immediately on startup (non-blocking)
	go s.runRefresh(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runRefresh recomputes scores for every (seeker, job) pair.
func (s *Scheduler) runRefresh(ctx context.Context) {
	log.Println("[scheduler] Score refresh cycle started")

	refreshed, skipped, err := s.svc.RefreshScores(ctx, nil, nil)
	if err != nil {
		log.Printf("[scheduler] RefreshScores error: %v", err)
		return
	}

	log.Printf("[scheduler] Score refresh complete — refreshed=%d skipped=%d", refreshed, skipped)
}
