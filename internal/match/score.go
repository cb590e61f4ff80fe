package match

// Weights are the tunable point values of the scoring formula. The reference
// behavior shipped with 25/15/6/4/6; they are configuration, not invariants,
// and can be overridden through the environment (see internal/config).
type Weights struct {
	Within50Miles  float64 // location tier 1 (≤ 50 miles)
	Within100Miles float64 // location tier 2 (≤ 100 miles), smaller than tier 1
	SkillHigh      float64 // base points for a met high-importance skill (4-5)
	SkillLow       float64 // base points for a met low-importance skill (0-3)
	SameAttitude   float64 // per-match attitude weight, scaled by importance/2
}

// DefaultWeights returns the reference point values.
func DefaultWeights() Weights {
	return Weights{
		Within50Miles:  25,
		Within100Miles: 15,
		SkillHigh:      6,
		SkillLow:       4,
		SameAttitude:   6,
	}
}

// highImportanceBonus multiplies the level surplus for high-importance skills.
const highImportanceBonus = 1.5

// DistanceFunc is the external distance oracle: miles between two city/state
// pairs. An error means the distance cannot be determined; the scorer then
// awards no location points for the pair.
type DistanceFunc func(cityA, stateA, cityB, stateB string) (float64, error)

// Score computes the non-negative match score between a seeker and a job post
// as a pure sum of three independent contributions. It is deterministic for a
// given pair of snapshots: no contribution depends on evaluation order, and
// none can push the total negative.
//
// Location: only for on-site jobs, and only when both sides have a location on
// file (an unset location is unknown, neither match nor mismatch).
//
// Skills: exact title match. A met minimum earns the importance-tier base plus
// a surplus bonus (×1.5 for high importance). Low-importance requirements also
// give partial credit one or two levels below the minimum; high-importance
// ones have no below-minimum path.
//
// Attitudes: each shared attitude earns SameAttitude × importance/2.
func Score(seeker *SeekerSnapshot, job *JobSnapshot, dist DistanceFunc, w Weights) float64 {
	points := 0.0

	if !job.Remote && seeker.HasLocation() && job.HasLocation() {
		if miles, err := dist(seeker.City, seeker.State, job.City, job.State); err == nil {
			switch {
			case miles <= 50:
				points += w.Within50Miles
			case miles <= 100:
				points += w.Within100Miles
			}
		}
	}

	levels := seeker.SkillLevels()
	for _, req := range job.Skills {
		level, ok := levels[req.Title]
		if !ok {
			continue
		}
		if req.Importance > 3 {
			if level >= req.MinLevel {
				points += w.SkillHigh
				points += highImportanceBonus * float64(level-req.MinLevel)
			}
			continue
		}
		if level >= req.MinLevel {
			points += w.SkillLow
			points += float64(level - req.MinLevel)
		}
		if level == req.MinLevel-1 {
			points += w.SkillLow / 2
		}
		if level == req.MinLevel-2 {
			points += w.SkillLow / 3
		}
	}

	have := make(map[string]bool, len(seeker.Attitudes))
	for _, a := range seeker.Attitudes {
		have[a.Title] = true
	}
	for _, req := range job.Attitudes {
		if have[req.Title] {
			points += w.SameAttitude * float64(req.Importance) / 2
		}
	}

	return points
}
