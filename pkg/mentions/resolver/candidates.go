package resolver

import (
	"context"
	"fmt"

	sherrors "github.com/seihyo/seihyo-cli/pkg/errors"
	"github.com/seihyo/seihyo-cli/pkg/politicians"
)

// CandidateFinder turns a mention's name and optional party hint into a
// bounded candidate list. It is read-only; ordering is stable across
// repeated calls for the same input (the registry orders by id), which
// keeps classification reproducible.
type CandidateFinder struct {
	registry politicians.Registry
	config   Config
}

// NewCandidateFinder creates a new candidate finder.
func NewCandidateFinder(registry politicians.Registry, config Config) *CandidateFinder {
	return &CandidateFinder{
		registry: registry,
		config:   config,
	}
}

// Find looks up candidates for a mention. Exact name matches win; when a
// party hint is given and narrowing by it leaves at least one candidate,
// only the narrowed set is returned. With no exact match, partial matches
// are returned capped at MaxPartialCandidates.
func (f *CandidateFinder) Find(ctx context.Context, name, partyName string) ([]politicians.Politician, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: extracted name is empty", sherrors.ErrValidation)
	}

	normalized := NormalizeName(name)

	exact, err := f.registry.SearchByName(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("exact name lookup for %q: %w", normalized, err)
	}

	if len(exact) > 0 {
		if partyName != "" {
			narrowed := filterByParty(exact, NormalizeParty(partyName))
			if len(narrowed) > 0 {
				return narrowed, nil
			}
		}
		return exact, nil
	}

	partial, err := f.registry.SearchByPartialName(ctx, normalized, f.config.MaxPartialCandidates)
	if err != nil {
		return nil, fmt.Errorf("partial name lookup for %q: %w", normalized, err)
	}

	return partial, nil
}

// filterByParty keeps candidates whose party equals the normalized hint.
func filterByParty(candidates []politicians.Politician, party string) []politicians.Politician {
	var narrowed []politicians.Politician
	for _, c := range candidates {
		if c.PartyName != nil && NormalizeParty(*c.PartyName) == party {
			narrowed = append(narrowed, c)
		}
	}
	return narrowed
}
