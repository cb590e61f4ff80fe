package geo_test

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"handshake/match-service/internal/geo"
)

var (
	albany      = geo.Location{City: "Albany", State: "NY"}
	losAngeles  = geo.Location{City: "Los Angeles", State: "CA"}
	albanyCoord = geo.Coordinates{Lat: 42.6526, Lon: -73.7562}
	laCoord     = geo.Coordinates{Lat: 34.0522, Lon: -118.2437}
)

// fakeNominatim serves canned coordinates keyed by city, or a state-level
// answer when no city parameter is present.
func fakeNominatim(t *testing.T, byCity map[string]geo.Coordinates, byState map[string]geo.Coordinates) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var c geo.Coordinates
		var ok bool
		if city := q.Get("city"); city != "" {
			c, ok = byCity[city]
		} else {
			c, ok = byState[q.Get("state")]
		}
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			fmt.Fprint(w, "[]")
			return
		}
		fmt.Fprintf(w, `[{"lat":"%f","lon":"%f"}]`, c.Lat, c.Lon)
	}))
}

func TestMiles_KnownDistance(t *testing.T) {
	// Albany, NY to Los Angeles, CA is roughly 2,470 miles great-circle.
	got := geo.Miles(albanyCoord, laCoord)
	if got < 2400 || got > 2550 {
		t.Errorf("Miles = %v, want ~2470", got)
	}
}

func TestMiles_Properties(t *testing.T) {
	if got := geo.Miles(albanyCoord, albanyCoord); got != 0 {
		t.Errorf("distance to self = %v, want 0", got)
	}
	ab := geo.Miles(albanyCoord, laCoord)
	ba := geo.Miles(laCoord, albanyCoord)
	if math.Abs(ab-ba) > 1e-9 {
		t.Errorf("asymmetric distance: %v vs %v", ab, ba)
	}
}

func TestDistance_UsesCityCoordinates(t *testing.T) {
	srv := fakeNominatim(t,
		map[string]geo.Coordinates{"Albany": albanyCoord, "Los Angeles": laCoord},
		nil)
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, nil)
	got, err := g.Distance(context.Background(), albany, losAngeles)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	want := geo.Miles(albanyCoord, laCoord)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("Distance = %v, want %v", got, want)
	}
}

func TestDistance_UnsetLocationFails(t *testing.T) {
	g := geo.NewGeocoder("http://unused.invalid", nil)
	if _, err := g.Distance(context.Background(), geo.Location{}, losAngeles); err == nil {
		t.Error("expected error for unset location")
	}
}

func TestDistance_FallsBackToStateLookup(t *testing.T) {
	// "Smallville" is unknown; the state answer should be used instead.
	srv := fakeNominatim(t,
		map[string]geo.Coordinates{"Albany": albanyCoord},
		map[string]geo.Coordinates{"KS": {Lat: 38.5, Lon: -98.0}})
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, nil)
	got, err := g.Distance(context.Background(),
		geo.Location{City: "Smallville", State: "KS"}, albany)
	if err != nil {
		t.Fatalf("Distance: %v", err)
	}
	want := geo.Miles(geo.Coordinates{Lat: 38.5, Lon: -98.0}, albanyCoord)
	if math.Abs(got-want) > 0.01 {
		t.Errorf("Distance = %v, want %v (state-level coordinates)", got, want)
	}
}

func TestLocate_UnresolvableLocationUsesFallback(t *testing.T) {
	srv := fakeNominatim(t, nil, nil)
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, nil)
	got, err := g.Locate(context.Background(), geo.Location{City: "Nowhere", State: "ZZ"})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got.Lat == 0 && got.Lon == 0 {
		t.Errorf("Locate = %+v, want the continental fallback coordinate", got)
	}
}

func TestWithin(t *testing.T) {
	srv := fakeNominatim(t,
		map[string]geo.Coordinates{"Albany": albanyCoord, "Los Angeles": laCoord},
		nil)
	defer srv.Close()
	g := geo.NewGeocoder(srv.URL, nil)
	ctx := context.Background()

	if g.Within(ctx, 100, albany, losAngeles) {
		t.Error("coasts reported within 100 miles")
	}
	if !g.Within(ctx, 3000, albany, losAngeles) {
		t.Error("coasts reported outside 3000 miles")
	}
	if !g.Within(ctx, 1, geo.Location{}, losAngeles) {
		t.Error("unset location must pass distance filters")
	}
}

func TestWithin_OracleFailureIsOutOfRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := geo.NewGeocoder(srv.URL, nil)
	if g.Within(context.Background(), 100, albany, losAngeles) {
		t.Error("lookup failure must not pass the distance filter")
	}
}
