package match

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotSource materializes denormalized seeker/job attribute views.
// Implemented by the pgx-backed source over the shared platform schema; tests
// substitute an in-memory fake.
type SnapshotSource interface {
	// Seekers returns seeker snapshots. id narrows to one seeker (nil = all);
	// activeOnly keeps only seekers whose account is active.
	Seekers(ctx context.Context, id *int64, activeOnly bool) ([]SeekerSnapshot, error)
	// Jobs returns job snapshots. id narrows to one post (nil = all);
	// activeOnly keeps only active posts of companies with active accounts.
	Jobs(ctx context.Context, id *int64, activeOnly bool) ([]JobSnapshot, error)
}

// NewSnapshotSource returns the SnapshotSource backed by the shared schema.
func NewSnapshotSource(pool *pgxpool.Pool) SnapshotSource {
	return &pgSnapshotSource{pool: pool}
}

// pgSnapshotSource loads snapshots from PostgreSQL. Level and importance enums
// are mapped to their numeric scales in SQL so the snapshots carry plain ints.
//
// skilllevels:     novice=1 familiar=2 competent=3 proficient=4 expert=5
// importancelevel: none=0 vlow=1 low=2 mid=3 high=4 vhigh=5
// educationlevel:  certification=0 associate=1 bachelor=2 master=3 doctoral=4
type pgSnapshotSource struct {
	pool *pgxpool.Pool
}

const skillLevelSQL = `CASE %s
	WHEN 'novice' THEN 1 WHEN 'familiar' THEN 2 WHEN 'competent' THEN 3
	WHEN 'proficient' THEN 4 WHEN 'expert' THEN 5 ELSE 0 END`

const importanceSQL = `CASE %s
	WHEN 'none' THEN 0 WHEN 'vlow' THEN 1 WHEN 'low' THEN 2
	WHEN 'mid' THEN 3 WHEN 'high' THEN 4 WHEN 'vhigh' THEN 5 ELSE 0 END`

func (s *pgSnapshotSource) Seekers(ctx context.Context, id *int64, activeOnly bool) ([]SeekerSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT s.id, COALESCE(s.city, ''), COALESCE(s.state, ''),
		       COALESCE(s.work_wanted, 0), COALESCE(s.remote_wanted, false),
		       COALESCE((SELECT SUM(h.years_employed)
		                 FROM seeker_history_job h WHERE h.seeker_id = s.id), 0),
		       COALESCE((SELECT MAX(CASE e.education_lvl
		                              WHEN 'certification' THEN 0 WHEN 'associate' THEN 1
		                              WHEN 'bachelor' THEN 2 WHEN 'master' THEN 3
		                              WHEN 'doctoral' THEN 4 END) + 1
		                 FROM seeker_history_education e WHERE e.seeker_id = s.id), 0),
		       u.join_date
		FROM seekerprofile s
		JOIN useraccount u ON u.id = s.seeker_id
		WHERE ($1::bigint IS NULL OR s.id = $1)
		  AND (NOT $2::boolean OR u.is_active)`,
		id, activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("query seekers: %w", err)
	}
	defer rows.Close()

	var seekers []SeekerSnapshot
	index := make(map[int64]int)
	for rows.Next() {
		var sn SeekerSnapshot
		if err := rows.Scan(&sn.ID, &sn.City, &sn.State, &sn.WorkWanted, &sn.RemoteWanted,
			&sn.YearsExperience, &sn.MinEducationLevel, &sn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan seeker: %w", err)
		}
		index[sn.ID] = len(seekers)
		seekers = append(seekers, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(seekers) == 0 {
		return seekers, nil
	}

	ids := make([]int64, 0, len(seekers))
	for _, sn := range seekers {
		ids = append(ids, sn.ID)
	}

	err = s.forEachRow(ctx, fmt.Sprintf(`
		SELECT ss.seeker_id, sk.id, sk.title, sk.type, `+skillLevelSQL+`
		FROM seeker_skill ss
		JOIN skill sk ON sk.id = ss.skill_id
		WHERE ss.seeker_id = ANY($1)`, "ss.skill_level"),
		ids, func(rows pgx.Rows) error {
			var owner int64
			var skill SeekerSkill
			var skillType string
			if err := rows.Scan(&owner, &skill.ID, &skill.Title, &skillType, &skill.Level); err != nil {
				return err
			}
			sn := &seekers[index[owner]]
			if skillType == "biz" {
				sn.BizSkills = append(sn.BizSkills, skill)
			} else {
				sn.TechSkills = append(sn.TechSkills, skill)
			}
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query seeker skills: %w", err)
	}

	err = s.forEachRow(ctx, `
		SELECT sa.seeker_id, a.id, a.title
		FROM seeker_attitude sa
		JOIN attitude a ON a.id = sa.attitude_id
		WHERE sa.seeker_id = ANY($1)`,
		ids, func(rows pgx.Rows) error {
			var owner int64
			var att Attitude
			if err := rows.Scan(&owner, &att.ID, &att.Title); err != nil {
				return err
			}
			sn := &seekers[index[owner]]
			sn.Attitudes = append(sn.Attitudes, att)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query seeker attitudes: %w", err)
	}

	return seekers, nil
}

func (s *pgSnapshotSource) Jobs(ctx context.Context, id *int64, activeOnly bool) ([]JobSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT j.id, COALESCE(j.city, ''), COALESCE(j.state, ''),
		       COALESCE(j.is_remote, false), COALESCE(j.work_type, 0),
		       j.salary_min, j.salary_max, COALESCE(j.active, true), j.created_timestamp
		FROM jobpost j
		WHERE ($1::bigint IS NULL OR j.id = $1)
		  AND (NOT $2::boolean OR (COALESCE(j.active, true) AND EXISTS (
		        SELECT 1 FROM companyprofile c
		        JOIN useraccount u ON u.id = c.company_id
		        WHERE c.company_id = j.company_id AND u.is_active)))`,
		id, activeOnly,
	)
	if err != nil {
		return nil, fmt.Errorf("query job posts: %w", err)
	}
	defer rows.Close()

	var jobs []JobSnapshot
	index := make(map[int64]int)
	for rows.Next() {
		var jn JobSnapshot
		if err := rows.Scan(&jn.ID, &jn.City, &jn.State, &jn.Remote, &jn.WorkType,
			&jn.SalaryMin, &jn.SalaryMax, &jn.Active, &jn.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan job post: %w", err)
		}
		index[jn.ID] = len(jobs)
		jobs = append(jobs, jn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return jobs, nil
	}

	ids := make([]int64, 0, len(jobs))
	for _, jn := range jobs {
		ids = append(ids, jn.ID)
	}

	err = s.forEachRow(ctx, fmt.Sprintf(`
		SELECT js.jobpost_id, sk.id, sk.title, `+skillLevelSQL+`, `+importanceSQL+`
		FROM jobpost_skill js
		JOIN skill sk ON sk.id = js.skill_id
		WHERE js.jobpost_id = ANY($1)`, "js.skill_level_min", "js.importance_level"),
		ids, func(rows pgx.Rows) error {
			var owner int64
			var skill JobSkill
			if err := rows.Scan(&owner, &skill.ID, &skill.Title, &skill.MinLevel, &skill.Importance); err != nil {
				return err
			}
			jn := &jobs[index[owner]]
			jn.Skills = append(jn.Skills, skill)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query job skills: %w", err)
	}

	err = s.forEachRow(ctx, fmt.Sprintf(`
		SELECT ja.jobpost_id, a.id, a.title, `+importanceSQL+`
		FROM jobpost_attitude ja
		JOIN attitude a ON a.id = ja.attitude_id
		WHERE ja.jobpost_id = ANY($1)`, "ja.importance_level"),
		ids, func(rows pgx.Rows) error {
			var owner int64
			var att JobAttitude
			if err := rows.Scan(&owner, &att.ID, &att.Title, &att.Importance); err != nil {
				return err
			}
			jn := &jobs[index[owner]]
			jn.Attitudes = append(jn.Attitudes, att)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("query job attitudes: %w", err)
	}

	return jobs, nil
}

// forEachRow runs a query bound to an id list and feeds each row to scan.
func (s *pgSnapshotSource) forEachRow(ctx context.Context, sql string, ids []int64, scan func(pgx.Rows) error) error {
	rows, err := s.pool.Query(ctx, sql, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
