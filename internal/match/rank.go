package match

import (
	"sort"
	"time"
)

// DefaultRankLimit caps ranked result lists when the caller passes no limit.
const DefaultRankLimit = 50

// Ranked is one entry of a ranked result list: a job or seeker id with its
// match score. CreatedAt carries the entity's creation time for tie-breaking.
type Ranked struct {
	ID        int64     `json:"id"`
	Score     float64   `json:"score"`
	CreatedAt time.Time `json:"-"`
}

// TopMatches returns the best-matches view: entries with a positive score,
// sorted by score descending, capped at limit (DefaultRankLimit when
// limit <= 0).
//
// Equal scores order by CreatedAt descending (newest first) and then by id
// ascending, so rankings are a total order independent of input order.
func TopMatches(entries []Ranked, limit int) []Ranked {
	kept := make([]Ranked, 0, len(entries))
	for _, e := range entries {
		if e.Score > 0 {
			kept = append(kept, e)
		}
	}
	return AllMatches(kept, limit)
}

// AllMatches is the zero-retaining variant of TopMatches: same ordering and
// cap, but entries with a zero score stay in the list.
func AllMatches(entries []Ranked, limit int) []Ranked {
	if limit <= 0 {
		limit = DefaultRankLimit
	}
	sorted := make([]Ranked, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
