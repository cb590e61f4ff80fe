// Package geo implements the distance oracle: geocoding of "city, state"
// pairs with a Redis-backed lookup cache, and great-circle distance in miles.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultBaseURL = "https://nominatim.openstreetmap.org/search"
	httpTimeout    = 15 * time.Second
	cacheTTL       = 30 * 24 * time.Hour
	userAgent      = "handshake-match-service/1.0"
)

// Somewhere in the continental US — the last-resort coordinate when a location
// cannot be geocoded even by state.
var fallbackCoords = Coordinates{Lat: 39.8283, Lon: -98.5795}

// Location is a city/state pair. Either field may be empty, which marks the
// location as unset (unknown, not a mismatch).
type Location struct {
	City  string
	State string
}

// IsZero reports whether the location is unset.
func (l Location) IsZero() bool { return l.City == "" || l.State == "" }

func (l Location) key() string {
	return strings.ToLower(l.City) + ", " + strings.ToLower(l.State)
}

// Coordinates is a latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Geocoder resolves city/state pairs to coordinates via a Nominatim-style
// lookup service, caching results in Redis keyed by "city, state".
// rdb may be nil; lookups then go straight to the service every time.
type Geocoder struct {
	baseURL string
	client  *http.Client
	rdb     *redis.Client
}

// NewGeocoder constructs a Geocoder. baseURL may be empty to use the public
// Nominatim endpoint.
func NewGeocoder(baseURL string, rdb *redis.Client) *Geocoder {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Geocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: httpTimeout},
		rdb:     rdb,
	}
}

// Distance returns the great-circle distance in miles between two locations.
// Fails when either location is unset or cannot be resolved at all.
func (g *Geocoder) Distance(ctx context.Context, a, b Location) (float64, error) {
	if a.IsZero() || b.IsZero() {
		return 0, fmt.Errorf("geo: distance undefined for unset location")
	}
	ca, err := g.Locate(ctx, a)
	if err != nil {
		return 0, err
	}
	cb, err := g.Locate(ctx, b)
	if err != nil {
		return 0, err
	}
	return Miles(ca, cb), nil
}

// Within reports whether two locations are at most miles apart.
// An unset location on either side passes (unknown is not a mismatch);
// an oracle failure does not (cannot determine distance means out of range).
func (g *Geocoder) Within(ctx context.Context, miles float64, a, b Location) bool {
	if a.IsZero() || b.IsZero() {
		return true
	}
	d, err := g.Distance(ctx, a, b)
	if err != nil {
		slog.Warn("distance lookup failed, treating as out of range",
			"from", a.key(), "to", b.key(), "err", err)
		return false
	}
	return d <= miles
}

// Locate resolves a location to coordinates: cache, then city+state lookup,
// then state-only lookup, then the continental fallback coordinate.
func (g *Geocoder) Locate(ctx context.Context, loc Location) (Coordinates, error) {
	if g.rdb != nil {
		if raw, err := g.rdb.Get(ctx, "geo:"+loc.key()).Bytes(); err == nil {
			var c Coordinates
			if json.Unmarshal(raw, &c) == nil {
				return c, nil
			}
		}
	}

	c, err := g.lookup(ctx, loc.City, loc.State)
	if err != nil {
		return Coordinates{}, err
	}

	if g.rdb != nil {
		raw, _ := json.Marshal(c)
		if err := g.rdb.Set(ctx, "geo:"+loc.key(), raw, cacheTTL).Err(); err != nil {
			slog.Warn("geocode cache write failed", "key", loc.key(), "err", err)
		}
	}
	return c, nil
}

// nominatimResult mirrors one entry of the lookup response. Coordinates come
// back as strings.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Geocoder) lookup(ctx context.Context, city, state string) (Coordinates, error) {
	if c, ok, err := g.query(ctx, city, state); err != nil {
		return Coordinates{}, err
	} else if ok {
		return c, nil
	}
	// City unknown to the geocoder — fall back to the state alone.
	if c, ok, err := g.query(ctx, "", state); err != nil {
		return Coordinates{}, err
	} else if ok {
		return c, nil
	}
	return fallbackCoords, nil
}

// query performs one lookup request. ok is false when the service resolved
// nothing for the given parameters.
func (g *Geocoder) query(ctx context.Context, city, state string) (c Coordinates, ok bool, err error) {
	params := url.Values{}
	if city != "" {
		params.Set("city", city)
	}
	params.Set("state", state)
	params.Set("country", "USA")
	params.Set("format", "json")
	params.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Coordinates{}, false, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("geocode read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, false, fmt.Errorf("geocode returned %d: %s", resp.StatusCode, string(body))
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return Coordinates{}, false, fmt.Errorf("geocode unmarshal: %w", err)
	}
	if len(results) == 0 {
		return Coordinates{}, false, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("geocode lat %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return Coordinates{}, false, fmt.Errorf("geocode lon %q: %w", results[0].Lon, err)
	}
	return Coordinates{Lat: lat, Lon: lon}, true, nil
}

// earthRadiusMiles is the mean Earth radius.
const earthRadiusMiles = 3958.8

// Miles computes the haversine great-circle distance between two coordinates.
func Miles(a, b Coordinates) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMiles * math.Asin(math.Sqrt(h))
}
