package match_test

import (
	"testing"
	"time"

	"handshake/match-service/internal/match"
)

func at(day int) time.Time {
	return time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
}

func TestTopMatches_SortsByScoreDescending(t *testing.T) {
	in := []match.Ranked{
		{ID: 1, Score: 3.5, CreatedAt: at(1)},
		{ID: 2, Score: 44.5, CreatedAt: at(1)},
		{ID: 3, Score: 12, CreatedAt: at(1)},
	}

	got := match.TopMatches(in, 0)
	wantOrder := []int64{2, 3, 1}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: id = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestTopMatches_DropsNonPositiveScores(t *testing.T) {
	in := []match.Ranked{
		{ID: 1, Score: 0, CreatedAt: at(1)},
		{ID: 2, Score: 7.5, CreatedAt: at(1)},
		{ID: 3, Score: 0, CreatedAt: at(2)},
	}

	got := match.TopMatches(in, 0)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("TopMatches = %+v, want only id 2", got)
	}
}

func TestTopMatches_TieBreaks(t *testing.T) {
	// Equal scores: newest CreatedAt first, then lowest id.
	in := []match.Ranked{
		{ID: 9, Score: 10, CreatedAt: at(1)},
		{ID: 4, Score: 10, CreatedAt: at(5)},
		{ID: 2, Score: 10, CreatedAt: at(5)},
		{ID: 7, Score: 10, CreatedAt: at(3)},
	}

	got := match.TopMatches(in, 0)
	wantOrder := []int64{2, 4, 7, 9}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: id = %d, want %d", i, got[i].ID, id)
		}
	}
}

func TestTopMatches_OrderIndependentOfInput(t *testing.T) {
	a := []match.Ranked{
		{ID: 1, Score: 5, CreatedAt: at(1)},
		{ID: 2, Score: 5, CreatedAt: at(1)},
		{ID: 3, Score: 9, CreatedAt: at(2)},
	}
	b := []match.Ranked{a[2], a[0], a[1]}

	gotA := match.TopMatches(a, 0)
	gotB := match.TopMatches(b, 0)
	if len(gotA) != len(gotB) {
		t.Fatalf("lengths differ: %d vs %d", len(gotA), len(gotB))
	}
	for i := range gotA {
		if gotA[i] != gotB[i] {
			t.Errorf("position %d: %+v vs %+v", i, gotA[i], gotB[i])
		}
	}
}

func TestTopMatches_DefaultLimit(t *testing.T) {
	in := make([]match.Ranked, 0, 60)
	for i := 1; i <= 60; i++ {
		in = append(in, match.Ranked{ID: int64(i), Score: float64(i), CreatedAt: at(1)})
	}

	got := match.TopMatches(in, 0)
	if len(got) != match.DefaultRankLimit {
		t.Fatalf("len = %d, want %d", len(got), match.DefaultRankLimit)
	}
	if got[0].ID != 60 {
		t.Errorf("top id = %d, want 60", got[0].ID)
	}
	// The cut drops the lowest scores, not arbitrary entries.
	if got[len(got)-1].ID != 11 {
		t.Errorf("last id = %d, want 11", got[len(got)-1].ID)
	}
}

func TestTopMatches_ExplicitLimit(t *testing.T) {
	in := []match.Ranked{
		{ID: 1, Score: 1, CreatedAt: at(1)},
		{ID: 2, Score: 2, CreatedAt: at(1)},
		{ID: 3, Score: 3, CreatedAt: at(1)},
	}

	got := match.TopMatches(in, 2)
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 2 {
		t.Errorf("TopMatches = %+v, want ids [3 2]", got)
	}
}

func TestTopMatches_DoesNotMutateInput(t *testing.T) {
	in := []match.Ranked{
		{ID: 1, Score: 1, CreatedAt: at(1)},
		{ID: 2, Score: 9, CreatedAt: at(1)},
	}
	match.TopMatches(in, 0)
	if in[0].ID != 1 || in[1].ID != 2 {
		t.Errorf("input reordered: %+v", in)
	}
}

func TestAllMatches_RetainsZeroScores(t *testing.T) {
	in := []match.Ranked{
		{ID: 1, Score: 0, CreatedAt: at(2)},
		{ID: 2, Score: 4, CreatedAt: at(1)},
		{ID: 3, Score: 0, CreatedAt: at(1)},
	}

	got := match.AllMatches(in, 0)
	wantOrder := []int64{2, 1, 3}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ID != id {
			t.Errorf("position %d: id = %d, want %d", i, got[i].ID, id)
		}
	}
}
