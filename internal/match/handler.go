// HTTP handlers for the match service.
//
// Routes:
//
//	GET  /matches/jobs     → ranked job posts for a seeker (filters in query string)
//	GET  /matches/seekers  → ranked seekers for a job post (filters in query string)
//	GET  /matches/score    → single (job, seeker) score; ?cache=0 forces recompute
//	POST /matches/refresh  → recompute cached scores (CRUD layer calls after mutations)
//	POST /catalog/reload   → re-read attribute universes after new skills/attitudes
package match

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"handshake/match-service/internal/query"
)

// Handler exposes the match Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all match-service routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /matches/jobs", h.rankJobs)
	mux.HandleFunc("GET /matches/seekers", h.rankSeekers)
	mux.HandleFunc("GET /matches/score", h.getScore)
	mux.HandleFunc("POST /matches/refresh", h.refresh)
	mux.HandleFunc("POST /catalog/reload", h.reloadCatalog)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) rankJobs(w http.ResponseWriter, r *http.Request) {
	seekerID, err := idParam(r, "seeker_id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filters := query.Parse(r.URL.Query(), h.svc.UniverseSizes())
	ranked, err := h.svc.RankJobsForSeeker(r.Context(), seekerID, filters, limitParam(r))
	if err != nil {
		h.rankError(w, err)
		return
	}
	jsonOK(w, ranked)
}

func (h *Handler) rankSeekers(w http.ResponseWriter, r *http.Request) {
	jobID, err := idParam(r, "job_id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	filters := query.Parse(r.URL.Query(), h.svc.UniverseSizes())
	ranked, err := h.svc.RankSeekersForJob(r.Context(), jobID, filters, limitParam(r))
	if err != nil {
		h.rankError(w, err)
		return
	}
	jsonOK(w, ranked)
}

func (h *Handler) getScore(w http.ResponseWriter, r *http.Request) {
	jobID, err := idParam(r, "job_id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	seekerID, err := idParam(r, "seeker_id")
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	useCache := r.URL.Query().Get("cache") != "0"

	score, err := h.svc.GetScore(r.Context(), jobID, seekerID, useCache)
	if err != nil {
		h.rankError(w, err)
		return
	}
	jsonOK(w, map[string]any{
		"jobpostId": jobID,
		"seekerId":  seekerID,
		"score":     score,
	})
}

func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		JobpostID *int64 `json:"jobpostId"`
		SeekerID  *int64 `json:"seekerId"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
	}

	refreshed, skipped, err := h.svc.RefreshScores(r.Context(), body.JobpostID, body.SeekerID)
	if err != nil {
		h.rankError(w, err)
		return
	}
	jsonOK(w, map[string]int{"refreshed": refreshed, "skipped": skipped})
}

func (h *Handler) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.cat.Reload(r.Context()); err != nil {
		log.Printf("[match] catalog reload error: %v", err)
		jsonError(w, "catalog reload failed", http.StatusInternalServerError)
		return
	}
	sizes := h.svc.UniverseSizes()
	jsonOK(w, map[string]int{"skills": sizes.Skills, "attitudes": sizes.Attitudes})
}

// rankError maps service errors to HTTP statuses.
func (h *Handler) rankError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("[match] service error: %v", err)
	jsonError(w, "internal error", http.StatusInternalServerError)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func idParam(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, &paramError{name}
	}
	return id, nil
}

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit < 1 {
		return DefaultRankLimit
	}
	return limit
}

type paramError struct{ name string }

func (e *paramError) Error() string { return e.name + " must be a positive integer" }

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[match] response encode error: %v", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
