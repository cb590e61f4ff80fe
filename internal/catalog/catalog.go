// Package catalog holds snapshots of the attribute universes (skills and
// attitudes) that selection sets are encoded against.
//
// A compressed filter parameter is only valid against the universe size it was
// produced with, so the snapshot is explicit state with an explicit Reload —
// never an implicit process-wide cache. Reload must be called after new skills
// or attitudes are added to the shared tables.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Universe is an ordered, 1-indexed enumeration of selectable options in one
// category. Index i of titles holds the title of ID i+1; IDs are stable
// integers in [1, Size].
type Universe struct {
	titles []string
	byName map[string]int
}

// NewUniverse builds a Universe from titles ordered by ID (ID 1 first).
func NewUniverse(titles []string) Universe {
	byName := make(map[string]int, len(titles))
	for i, t := range titles {
		if t != "" {
			byName[t] = i + 1
		}
	}
	return Universe{titles: titles, byName: byName}
}

// Size returns the number of options in the universe.
func (u Universe) Size() int { return len(u.titles) }

// Title returns the title for a 1-based ID. Together with ID it is the
// title↔id mapping the gateway/UI uses to label decoded selections.
func (u Universe) Title(id int) (string, bool) {
	if id < 1 || id > len(u.titles) || u.titles[id-1] == "" {
		return "", false
	}
	return u.titles[id-1], true
}

// ID returns the 1-based ID for a title, the reverse of Title.
func (u Universe) ID(title string) (int, bool) {
	id, ok := u.byName[title]
	return id, ok
}

// Catalog is the set of universe snapshots the service works against.
// Both skill categories live in one shared skill table, so tech and biz
// selections are encoded against the same universe.
type Catalog struct {
	pool *pgxpool.Pool

	mu        sync.RWMutex
	skills    Universe
	attitudes Universe
}

// New constructs a Catalog and performs the initial load.
func New(ctx context.Context, pool *pgxpool.Pool) (*Catalog, error) {
	c := &Catalog{pool: pool}
	if err := c.Reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads both universes from the database. Encoded URLs produced
// before a reload stay valid as long as IDs only ever grow (they do — rows
// are never renumbered).
func (c *Catalog) Reload(ctx context.Context) error {
	skills, err := c.loadUniverse(ctx, `SELECT id, title FROM skill ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load skill universe: %w", err)
	}
	attitudes, err := c.loadUniverse(ctx, `SELECT id, title FROM attitude ORDER BY id`)
	if err != nil {
		return fmt.Errorf("load attitude universe: %w", err)
	}

	c.mu.Lock()
	c.skills = skills
	c.attitudes = attitudes
	c.mu.Unlock()
	return nil
}

// Skills returns the current skill universe snapshot.
func (c *Catalog) Skills() Universe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skills
}

// Attitudes returns the current attitude universe snapshot.
func (c *Catalog) Attitudes() Universe {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attitudes
}

// loadUniverse reads (id, title) rows ordered by id into a Universe. Gaps in
// the ID sequence keep their slot so bit positions stay aligned with IDs.
func (c *Catalog) loadUniverse(ctx context.Context, sql string) (Universe, error) {
	rows, err := c.pool.Query(ctx, sql)
	if err != nil {
		return Universe{}, err
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var id int
		var title string
		if err := rows.Scan(&id, &title); err != nil {
			return Universe{}, fmt.Errorf("scan: %w", err)
		}
		for len(titles) < id {
			titles = append(titles, "")
		}
		titles[id-1] = title
	}
	if err := rows.Err(); err != nil {
		return Universe{}, err
	}
	return NewUniverse(titles), nil
}
