// Package query translates search URL parameters into filter predicates.
//
// The parameter formats are a compatibility contract with previously shared
// URLs and are preserved bit-exactly:
//
//	tech, biz, att — run-length compressed selection sets (internal/codec)
//	worktype       — four '0'/'1' flags: full-time, part-time, contract, remote
//	salary         — "<lower>-<upper>" in thousands; upper 201 means "and above"
//	dist           — "<miles>-<city>-<state>"
//	workexp        — two hex digits, years of experience bounds; upper b (11) means "11+"
//	eduexp         — two decimal digits, education level bounds 0-5
//
// A malformed parameter never fails the whole search: it falls back to the
// default "no filter" state for that field.
package query

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"handshake/match-service/internal/codec"
)

// Sentinel upper bounds: a salary upper of 201 (thousands) means "200k and
// above"; a workexp upper of 11 means "11+ years".
const (
	salaryOpenEnd  = 201
	workexpOpenEnd = 11
)

// UniverseSizes carries the current attribute-universe sizes the compressed
// parameters were encoded against. Both skill categories share one universe.
type UniverseSizes struct {
	Skills    int
	Attitudes int
}

// DistanceFilter restricts results to within Miles of the given city/state.
type DistanceFilter struct {
	Miles int
	City  string
	State string
}

// Filters is the decoded search-filter state. Nil pointers and zero masks mean
// "no filter" for that field; predicates then pass everything.
type Filters struct {
	WorkType    *[4]bool    // full-time, part-time, contract, remote
	SalaryRange *[2]float64 // dollars, open upper bound already widened
	EduRange    *[2]int
	WorkRange   *[2]int // years, open upper bound already widened
	Distance    *DistanceFilter
	TechMask    uint64
	BizMask     uint64
	AttMask     uint64
}

var (
	salaryRe  = regexp.MustCompile(`^\d{1,3}-\d{1,3}$`)
	workexpRe = regexp.MustCompile(`^[0-9a-fA-F]{2}$`)
	eduexpRe  = regexp.MustCompile(`^[0-5][0-5]$`)
)

// Parse decodes URL query parameters into Filters against the given universe
// sizes. Unknown parameters are ignored; malformed ones are logged and treated
// as absent.
func Parse(values url.Values, u UniverseSizes) Filters {
	var f Filters

	if wt := values.Get("worktype"); len(wt) == 4 && strings.Trim(wt, "01") == "" {
		var flags [4]bool
		any := false
		for i := 0; i < 4; i++ {
			flags[i] = wt[i] == '1'
			any = any || flags[i]
		}
		if any {
			f.WorkType = &flags
		}
	}

	if s := values.Get("salary"); salaryRe.MatchString(s) {
		parts := strings.SplitN(s, "-", 2)
		lo, _ := strconv.Atoi(parts[0])
		hi, _ := strconv.Atoi(parts[1])
		rng := [2]float64{float64(lo) * 1e3, float64(hi) * 1e3}
		if hi == salaryOpenEnd {
			rng[1] = 1e9
		}
		f.SalaryRange = &rng
	}

	if e := values.Get("eduexp"); eduexpRe.MatchString(e) {
		rng := [2]int{int(e[0] - '0'), int(e[1] - '0')}
		f.EduRange = &rng
	}

	if w := values.Get("workexp"); workexpRe.MatchString(w) {
		lo, _ := strconv.ParseUint(w[:1], 16, 8)
		hi, _ := strconv.ParseUint(w[1:], 16, 8)
		rng := [2]int{int(lo), int(hi)}
		if rng[1] == workexpOpenEnd {
			rng[1] = 9999
		}
		f.WorkRange = &rng
	}

	if d := values.Get("dist"); d != "" && strings.Count(d, "-") == 2 {
		parts := strings.SplitN(d, "-", 3)
		if miles, err := strconv.Atoi(parts[0]); err == nil && parts[1] != "" && parts[2] != "" {
			f.Distance = &DistanceFilter{Miles: miles, City: parts[1], State: parts[2]}
		}
	}

	f.TechMask = decodeMask(values.Get("tech"), "tech", u.Skills)
	f.BizMask = decodeMask(values.Get("biz"), "biz", u.Skills)
	f.AttMask = decodeMask(values.Get("att"), "att", u.Attitudes)

	return f
}

// decodeMask decompresses one selection parameter to its filter bitmask,
// falling back to "no filter" on decode failure.
func decodeMask(code, name string, size int) uint64 {
	if code == "" || size == 0 {
		return 0
	}
	mask, err := codec.DecompressInt(code, size)
	if err != nil {
		slog.Warn("ignoring malformed filter parameter", "param", name, "err", err)
		return 0
	}
	return mask
}

// ─── Predicates ──────────────────────────────────────────────────────────────

// MatchesWorkType checks a 3-bit full-time/part-time/contract mask plus a
// remote flag against the worktype filter. The remote bit is folded in below
// the 3-bit mask before comparing, mirroring the parameter layout.
func (f *Filters) MatchesWorkType(workMask int, remote bool) bool {
	if f.WorkType == nil {
		return true
	}
	want := 0
	for i, set := range f.WorkType {
		if set {
			want |= 1 << (3 - i)
		}
	}
	have := workMask << 1
	if remote {
		have |= 1
	}
	return have&want > 0
}

// MatchesSalary accepts any job whose salary band overlaps the filter range.
// A missing lower bound defaults to 0, a missing upper bound to effectively
// unlimited, so partially specified salaries are never filtered out by the
// unspecified side.
func (f *Filters) MatchesSalary(salaryMin, salaryMax *int) bool {
	if f.SalaryRange == nil {
		return true
	}
	lo := 0.0
	if salaryMin != nil {
		lo = float64(*salaryMin)
	}
	hi := 1e9
	if salaryMax != nil {
		hi = float64(*salaryMax)
	}
	return lo <= f.SalaryRange[1] && hi >= f.SalaryRange[0]
}

// MatchesEducation checks a seeker's derived minimum education level.
func (f *Filters) MatchesEducation(level int) bool {
	if f.EduRange == nil {
		return true
	}
	return f.EduRange[0] <= level && level <= f.EduRange[1]
}

// MatchesExperience checks a seeker's summed years of job experience.
func (f *Filters) MatchesExperience(years int) bool {
	if f.WorkRange == nil {
		return true
	}
	return f.WorkRange[0] <= years && years <= f.WorkRange[1]
}

// MatchesTech checks an entity's tech-skill bitmask against the tech filter.
// Any overlap passes; a zero filter mask passes everything.
func (f *Filters) MatchesTech(mask uint64) bool {
	return f.TechMask == 0 || f.TechMask&mask > 0
}

// MatchesBiz is MatchesTech for the business-skill category.
func (f *Filters) MatchesBiz(mask uint64) bool {
	return f.BizMask == 0 || f.BizMask&mask > 0
}

// MatchesAttitudes checks an entity's attitude bitmask against the filter.
func (f *Filters) MatchesAttitudes(mask uint64) bool {
	return f.AttMask == 0 || f.AttMask&mask > 0
}

// ─── Encoding (filter panel state → URL parameters) ──────────────────────────

// Selections is the raw filter-panel state posted by the search form.
// Selection lists hold 1-based attribute IDs.
type Selections struct {
	FullTime, PartTime, Contract, Remote bool

	SalaryLower, SalaryUpper int // thousands; upper 201 = "and above"
	EduLower, EduUpper       int
	WorkLower, WorkUpper     int // years; upper 11 = "11+"

	DistAny   bool
	DistMiles int
	DistCity  string
	DistState string

	Techs []int
	Bizs  []int
	Atts  []int
}

// Values encodes the panel state to the canonical URL parameters. Empty
// selection lists produce no parameter, keeping URLs short. This is the
// encode leg of the contract for the gateway/UI that builds shareable search
// URLs; the service itself only decodes.
func (s Selections) Values(u UniverseSizes) url.Values {
	v := url.Values{}

	v.Set("worktype", flag(s.FullTime)+flag(s.PartTime)+flag(s.Contract)+flag(s.Remote))
	v.Set("salary", fmt.Sprintf("%d-%d", s.SalaryLower, s.SalaryUpper))
	v.Set("eduexp", fmt.Sprintf("%d%d", s.EduLower, s.EduUpper))
	v.Set("workexp", fmt.Sprintf("%x%x", s.WorkLower, s.WorkUpper))

	if !s.DistAny {
		v.Set("dist", fmt.Sprintf("%d-%s-%s", s.DistMiles, s.DistCity, s.DistState))
	}
	if len(s.Techs) > 0 {
		v.Set("tech", codec.Compress(s.Techs, u.Skills))
	}
	if len(s.Bizs) > 0 {
		v.Set("biz", codec.Compress(s.Bizs, u.Skills))
	}
	if len(s.Atts) > 0 {
		v.Set("att", codec.Compress(s.Atts, u.Attitudes))
	}
	return v
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
