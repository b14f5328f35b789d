package mentions

import (
	"context"
)

// Repository defines the data access interface for extracted mentions.
// The engine never creates or deletes mentions; those operations belong to
// the extractor.
type Repository interface {
	// ListPending returns mentions at status pending, optionally filtered by
	// group context, ordered by id.
	ListPending(ctx context.Context, groupID *int64) ([]ExtractedMention, error)

	// ListMatched returns mentions at status matched, optionally filtered by
	// group context, ordered by id.
	ListMatched(ctx context.Context, groupID *int64) ([]ExtractedMention, error)

	// UpdateClassification persists one mention's classification outcome as
	// a single atomic row update. Rewriting the same outcome is idempotent.
	UpdateClassification(ctx context.Context, id int64, in ClassificationInput) error

	// StatusCounts returns mention counts by status, optionally filtered by
	// group context.
	StatusCounts(ctx context.Context, groupID *int64) (SummaryCounts, error)
}
