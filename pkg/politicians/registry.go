package politicians

import (
	"context"
)

// Registry defines the lookup interface over the canonical politician store.
type Registry interface {
	// SearchByName finds politicians whose name exactly equals the given
	// (normalized) name. Ordering is stable across calls.
	SearchByName(ctx context.Context, name string) ([]Politician, error)

	// SearchByPartialName finds politicians whose name contains the given
	// string, capped at limit results. Ordering is stable across calls.
	SearchByPartialName(ctx context.Context, name string, limit int) ([]Politician, error)
}
