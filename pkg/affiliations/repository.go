package affiliations

import (
	"context"
	"time"
)

// Repository defines the data access interface for affiliations. The engine
// only inserts rows or end-dates them; deletion is a separate, manually
// invoked operation outside this engine.
type Repository interface {
	// ListActive returns the affiliations with a nil end date for the given
	// (politician, group) pair.
	ListActive(ctx context.Context, politicianID, groupID int64) ([]Affiliation, error)

	// Close sets the end date of an affiliation. Closing an already-closed
	// affiliation is a no-op.
	Close(ctx context.Context, id int64, endDate time.Time) error

	// Upsert inserts or updates the affiliation identified by
	// (politician_id, group_id, start_date). It reports whether a new row
	// was created.
	Upsert(ctx context.Context, in UpsertInput) (created bool, err error)
}
