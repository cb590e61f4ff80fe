// handshake-match-service
//
// Match scoring backend for the job board. Exposes a REST API used by the
// Gateway to implement:
//   - bestJobs(seekerId, filters)    — ranked job posts for a seeker
//   - bestSeekers(jobId, filters)    — ranked seekers for a job post
//   - matchScore(jobId, seekerId)    — single pair score (cached)
//   - refreshScores(jobId?, seekerId?) — cache refresh after profile/post edits
//
// Owns the match_scores table. Publishes EVENT_SCORES_REFRESHED to Redis
// after bulk refreshes; geocode lookups are cached in Redis as well.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"handshake/match-service/internal/catalog"
	"handshake/match-service/internal/config"
	"handshake/match-service/internal/db"
	"handshake/match-service/internal/geo"
	"handshake/match-service/internal/match"
	"handshake/match-service/internal/scheduler"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[match-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[match-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[match-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	if err := db.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("[match-service] Schema: %v", err)
	}
	log.Println("[match-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[match-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[match-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[match-service] Redis connected ✓")

	// ── Attribute universes ──────────────────────────────────────────────────
	cat, err := catalog.New(ctx, pool)
	if err != nil {
		log.Fatalf("[match-service] Catalog: %v", err)
	}
	log.Printf("[match-service] Universes loaded — skills=%d attitudes=%d",
		cat.Skills().Size(), cat.Attitudes().Size())

	// ── Service ──────────────────────────────────────────────────────────────
	geocoder := geo.NewGeocoder(cfg.GeocoderURL, rdb)
	weights := match.Weights{
		Within50Miles:  cfg.Within50Miles,
		Within100Miles: cfg.Within100Miles,
		SkillHigh:      cfg.SkillHigh,
		SkillLow:       cfg.SkillLow,
		SameAttitude:   cfg.SameAttitude,
	}
	svc := match.NewService(match.NewScoreStore(pool), match.NewSnapshotSource(pool), rdb, geocoder, cat, weights)

	// ── Bulk refresh cron ────────────────────────────────────────────────────
	sched := scheduler.New(svc, cfg.RefreshIntervalHours)
	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[match-service] Scheduler: %v", err)
	}
	defer sched.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := match.NewHandler(svc)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[match-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[match-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[match-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[match-service] Shutdown error: %v", err)
	}
	log.Println("[match-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "match-service",
		"version": version,
	})
}
