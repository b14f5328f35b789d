// Package affiliations maintains time-bounded memberships of politicians in
// groups. The reconciler folds confirmed mention matches into affiliation
// intervals while preserving temporal non-overlap: for a given
// (politician, group) pair at most one row is active (nil end date) at any
// instant.
package affiliations

import (
	"time"
)

// Affiliation is a time-bounded membership of a politician in a group.
// A nil EndDate means currently active.
type Affiliation struct {
	ID           int64      `json:"id"`
	PoliticianID int64      `json:"politician_id"`
	GroupID      int64      `json:"group_id"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	Role         *string    `json:"role,omitempty"`
}

// Active reports whether the affiliation is currently open.
func (a Affiliation) Active() bool {
	return a.EndDate == nil
}

// UpsertInput identifies the target row by its natural key
// (politician_id, group_id, start_date). If that exact key exists the row's
// end date and role are updated in place; otherwise a new row is inserted.
type UpsertInput struct {
	PoliticianID int64
	GroupID      int64
	StartDate    time.Time
	EndDate      *time.Time
	Role         *string
}

// ReconcileResult accumulates outcomes of one reconciliation run.
type ReconcileResult struct {
	RunID   string `json:"run_id"`
	Total   int    `json:"total"`
	Created int    `json:"created"`
	Failed  int    `json:"failed"`
}

// DateOnly truncates a timestamp to midnight UTC. Affiliation intervals are
// day-granular.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
