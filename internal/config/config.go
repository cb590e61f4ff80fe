// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits with an error.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the match service.
type Config struct {
	Port                 string
	DatabaseURL          string
	RedisURL             string
	GeocoderURL          string // empty = public Nominatim endpoint
	RefreshIntervalHours int    // how often the bulk score refresh fires

	// Scoring weights. Defaults are the reference point values; override
	// individually via SCORE_* variables.
	Within50Miles  float64
	Within100Miles float64
	SkillHigh      float64
	SkillLow       float64
	SameAttitude   float64
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	port := os.Getenv("MATCH_PORT")
	if port == "" {
		port = "8083"
	}

	interval := 12
	if s := os.Getenv("REFRESH_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("REFRESH_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	cfg := &Config{
		Port:                 port,
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		GeocoderURL:          os.Getenv("GEOCODER_URL"),
		RefreshIntervalHours: interval,
		Within50Miles:        25,
		Within100Miles:       15,
		SkillHigh:            6,
		SkillLow:             4,
		SameAttitude:         6,
	}

	overrides := []struct {
		env string
		dst *float64
	}{
		{"SCORE_WITHIN_50_MILES", &cfg.Within50Miles},
		{"SCORE_WITHIN_100_MILES", &cfg.Within100Miles},
		{"SCORE_SKILL_HIGH_IMPORTANCE", &cfg.SkillHigh},
		{"SCORE_SKILL_LOW_IMPORTANCE", &cfg.SkillLow},
		{"SCORE_SAME_ATTITUDE", &cfg.SameAttitude},
	}
	for _, o := range overrides {
		s := os.Getenv(o.env)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 {
			return nil, fmt.Errorf("%s must be a non-negative number, got %q", o.env, s)
		}
		*o.dst = v
	}

	return cfg, nil
}
