// Package match contains the match-scoring business logic for the platform:
// the deterministic seeker-vs-job scoring function, ranked search, and the
// persisted score cache. It is transport-agnostic — the HTTP handler and the
// cron scheduler both drive it through Service.
//
// The scorer operates on plain denormalized snapshots, never on live database
// handles; Service materializes them with one set of queries per entity so the
// scoring code (and its tests) stay database-free.
package match

import (
	"time"

	"handshake/match-service/internal/codec"
)

// SeekerSkill is one self-reported skill with a 1-5 proficiency level.
type SeekerSkill struct {
	ID    int
	Title string
	Level int
}

// JobSkill is one skill requirement on a job post: a minimum 1-5 level and a
// 0-5 importance the company assigned to it.
type JobSkill struct {
	ID         int
	Title      string
	MinLevel   int
	Importance int
}

// Attitude is one workplace-attitude tag on a seeker profile.
type Attitude struct {
	ID    int
	Title string
}

// JobAttitude is an attitude requirement on a job post with its importance.
type JobAttitude struct {
	ID         int
	Title      string
	Importance int
}

// SeekerSnapshot is the denormalized view of a seeker profile that scoring
// and filtering need. YearsExperience is the sum over job-history entries;
// MinEducationLevel is 1 + the highest education level on file, or 0 when the
// seeker has no education history.
type SeekerSnapshot struct {
	ID                int64
	TechSkills        []SeekerSkill
	BizSkills         []SeekerSkill
	Attitudes         []Attitude
	City              string
	State             string
	WorkWanted        int // 3-bit full-time/part-time/contract mask
	RemoteWanted      bool
	YearsExperience   int
	MinEducationLevel int
	CreatedAt         time.Time // account join date, used for ranking tie-breaks
}

// HasLocation reports whether the seeker has a usable city/state on file.
func (s *SeekerSnapshot) HasLocation() bool { return s.City != "" && s.State != "" }

// SkillLevels merges tech and biz skills into a title → level lookup.
// Skill titles are unique across both categories (one shared skill table).
func (s *SeekerSnapshot) SkillLevels() map[string]int {
	levels := make(map[string]int, len(s.TechSkills)+len(s.BizSkills))
	for _, sk := range s.TechSkills {
		levels[sk.Title] = sk.Level
	}
	for _, sk := range s.BizSkills {
		levels[sk.Title] = sk.Level
	}
	return levels
}

// TechMask returns the seeker's tech skills as a bitmask over the skill
// universe, matching the convention of decoded filter parameters.
func (s *SeekerSnapshot) TechMask(universeSize int) uint64 {
	return codec.MaskOf(skillIDs(s.TechSkills), universeSize)
}

// BizMask is TechMask for the business-skill category.
func (s *SeekerSnapshot) BizMask(universeSize int) uint64 {
	return codec.MaskOf(skillIDs(s.BizSkills), universeSize)
}

// AttitudeMask returns the seeker's attitudes as a bitmask over the attitude
// universe.
func (s *SeekerSnapshot) AttitudeMask(universeSize int) uint64 {
	return codec.MaskOf(attitudeIDs(s.Attitudes), universeSize)
}

// JobSnapshot is the denormalized view of a job post that scoring and
// filtering need.
type JobSnapshot struct {
	ID        int64
	Skills    []JobSkill
	Attitudes []JobAttitude
	City      string
	State     string
	Remote    bool
	WorkType  int // 3-bit full-time/part-time/contract mask
	SalaryMin *int
	SalaryMax *int
	Active    bool
	CreatedAt time.Time
}

// HasLocation reports whether the job post has a usable city/state.
func (j *JobSnapshot) HasLocation() bool { return j.City != "" && j.State != "" }

// SkillMask returns the job's required skills as a bitmask. Both skill
// categories share one universe, and a job post does not split requirements
// by category, so a single mask covers tech and biz filters alike.
func (j *JobSnapshot) SkillMask(universeSize int) uint64 {
	ids := make([]int, 0, len(j.Skills))
	for _, sk := range j.Skills {
		ids = append(ids, sk.ID)
	}
	return codec.MaskOf(ids, universeSize)
}

// AttitudeMask returns the job's required attitudes as a bitmask.
func (j *JobSnapshot) AttitudeMask(universeSize int) uint64 {
	ids := make([]int, 0, len(j.Attitudes))
	for _, a := range j.Attitudes {
		ids = append(ids, a.ID)
	}
	return codec.MaskOf(ids, universeSize)
}

func skillIDs(skills []SeekerSkill) []int {
	ids := make([]int, 0, len(skills))
	for _, s := range skills {
		ids = append(ids, s.ID)
	}
	return ids
}

func attitudeIDs(atts []Attitude) []int {
	ids := make([]int, 0, len(atts))
	for _, a := range atts {
		ids = append(ids, a.ID)
	}
	return ids
}
