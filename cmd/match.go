package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seihyo/seihyo-cli/config"
	"github.com/seihyo/seihyo-cli/pkg/mentions"
	"github.com/seihyo/seihyo-cli/pkg/mentions/resolver"
)

// Match command flags
var (
	matchOutput string
	matchGroup  int64
)

// MatchCommandDeps holds the dependencies for match commands.
type MatchCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)

	// Mock function overrides for testing
	ProcessPendingFn func(ctx context.Context, cfg *config.CLIConfig, groupID *int64) (resolver.BatchResult, error)
	StatusCountsFn   func(ctx context.Context, cfg *config.CLIConfig, groupID *int64) (mentions.SummaryCounts, error)
}

// DefaultMatchDeps returns the default dependencies for production use.
func DefaultMatchDeps() *MatchCommandDeps {
	return &MatchCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewMatchCommand creates the root match command with all subcommands.
func NewMatchCommand(deps *MatchCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultMatchDeps()
	}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Resolve extracted mentions against the politician registry",
		Long: `Resolve extracted person mentions against the canonical politician registry.

Each pending mention goes through candidate lookup (exact name, party
narrowing, then partial fallback), arbitration (deterministic for zero or one
candidate, LLM-assisted for several), and confidence-based classification:
  - matched:       confidence >= 0.7, linked to a politician
  - needs_review:  confidence in [0.5, 0.7), linked but queued for a human
  - no_match:      everything else

Classification mutates each mention exactly once; re-running skips
already-classified rows.`,
		Example: `  # Classify all pending mentions
  seihyo match run

  # Classify only mentions from one group context
  seihyo match run --group 12

  # Show the classification breakdown
  seihyo match summary

  # Output as JSON
  seihyo match summary --output json`,
	}

	cmd.AddCommand(newMatchRunCommand(deps))
	cmd.AddCommand(newMatchSummaryCommand(deps))

	return cmd
}

// newMatchRunCommand creates the 'match run' subcommand.
func newMatchRunCommand(deps *MatchCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify all pending mentions",
		Long: `Classify all pending mentions against the politician registry.

A mention that cannot be classified (oracle outage, persistence failure) is
counted and the batch continues. Only a registry outage aborts the run, since
nothing can be resolved without candidate lookup.

Examples:
  # Classify everything pending
  seihyo match run

  # Restrict to one group context
  seihyo match run --group 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(cmd.Context(), deps)
		},
	}

	cmd.Flags().Int64Var(&matchGroup, "group", 0, "Group context ID (0 = all groups)")
	cmd.Flags().StringVarP(&matchOutput, "output", "o", "", "Output format: text, json")

	return cmd
}

// newMatchSummaryCommand creates the 'match summary' subcommand.
func newMatchSummaryCommand(deps *MatchCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show mention counts by classification status",
		Long: `Show the extraction summary: mention counts by classification status.

The summary is derived from the mention store at call time; it is never
persisted separately.

Examples:
  # Summary across all groups
  seihyo match summary

  # Summary for one group context
  seihyo match summary --group 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatchSummary(cmd.Context(), deps)
		},
	}

	cmd.Flags().Int64Var(&matchGroup, "group", 0, "Group context ID (0 = all groups)")
	cmd.Flags().StringVarP(&matchOutput, "output", "o", "", "Output format: text, json")

	return cmd
}

func runMatch(ctx context.Context, deps *MatchCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	format, err := resolveFormat(cfg, matchOutput)
	if err != nil {
		return err
	}

	groupID := groupFilter(matchGroup)

	var result resolver.BatchResult
	if deps.ProcessPendingFn != nil {
		result, err = deps.ProcessPendingFn(ctx, cfg, groupID)
	} else {
		var eng *engine
		eng, err = buildEngine(ctx, cfg, "match")
		if err != nil {
			return err
		}
		defer eng.close()
		result, err = eng.classifier.ProcessPending(ctx, groupID)
	}
	if err != nil {
		return fmt.Errorf("classifying mentions: %w", err)
	}

	if format == config.OutputFormatJSON {
		return printJSON(result)
	}

	fmt.Printf("Run %s: %d mentions processed\n", result.RunID, result.Total)
	fmt.Printf("  matched:      %d\n", result.Matched)
	fmt.Printf("  needs_review: %d\n", result.NeedsReview)
	fmt.Printf("  no_match:     %d\n", result.NoMatch)
	if result.Errors > 0 {
		fmt.Printf("  errors:       %d\n", result.Errors)
	}
	return nil
}

func runMatchSummary(ctx context.Context, deps *MatchCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	format, err := resolveFormat(cfg, matchOutput)
	if err != nil {
		return err
	}

	groupID := groupFilter(matchGroup)

	var counts mentions.SummaryCounts
	if deps.StatusCountsFn != nil {
		counts, err = deps.StatusCountsFn(ctx, cfg, groupID)
	} else {
		var eng *engine
		eng, err = buildEngine(ctx, cfg, "match")
		if err != nil {
			return err
		}
		defer eng.close()
		counts, err = eng.mentionRepo.StatusCounts(ctx, groupID)
	}
	if err != nil {
		return fmt.Errorf("fetching status counts: %w", err)
	}

	if format == config.OutputFormatJSON {
		return printJSON(counts)
	}

	scope := "all groups"
	if groupID != nil {
		scope = fmt.Sprintf("group %d", *groupID)
	}
	fmt.Printf("Mention summary (%s):\n", scope)
	fmt.Printf("  pending:      %d\n", counts.Pending)
	fmt.Printf("  matched:      %d\n", counts.Matched)
	fmt.Printf("  needs_review: %d\n", counts.NeedsReview)
	fmt.Printf("  no_match:     %d\n", counts.NoMatch)
	fmt.Printf("  total:        %d\n", counts.Total)
	return nil
}
