package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seihyo/seihyo-cli/config"
	"github.com/seihyo/seihyo-cli/pkg/affiliations"
)

// Affiliation command flags
var (
	affiliationOutput string
	affiliationGroup  int64
	affiliationAsOf   string
)

// AffiliationCommandDeps holds the dependencies for affiliation commands.
type AffiliationCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)

	// Mock function overrides for testing
	ReconcileFn func(ctx context.Context, cfg *config.CLIConfig, groupID *int64, asOf *time.Time) (affiliations.ReconcileResult, error)
}

// DefaultAffiliationDeps returns the default dependencies for production use.
func DefaultAffiliationDeps() *AffiliationCommandDeps {
	return &AffiliationCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewAffiliationCommand creates the root affiliation command with all subcommands.
func NewAffiliationCommand(deps *AffiliationCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultAffiliationDeps()
	}

	cmd := &cobra.Command{
		Use:   "affiliation",
		Short: "Maintain time-bounded group memberships",
		Long: `Maintain time-bounded memberships of politicians in groups.

Reconciliation folds confirmed mention matches into affiliation intervals
while keeping them temporally consistent: for a given (politician, group)
pair at most one interval is active at any instant. Prior overlapping
intervals are end-dated the day before the new one begins; nothing is ever
deleted.`,
		Example: `  # Reconcile all matched mentions as of today
  seihyo affiliation reconcile

  # Reconcile one group context as of a specific date
  seihyo affiliation reconcile --group 12 --as-of 2024-06-01`,
	}

	cmd.AddCommand(newAffiliationReconcileCommand(deps))

	return cmd
}

// newAffiliationReconcileCommand creates the 'affiliation reconcile' subcommand.
func newAffiliationReconcileCommand(deps *AffiliationCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fold matched mentions into affiliation intervals",
		Long: `Fold every matched mention into an affiliation interval.

For each matched mention an affiliation starting at the as-of date is
upserted, keyed by (politician, group, start date); a prior active interval
is closed the day before. Re-running with identical inputs yields no
changes. A persistence failure for one mention is counted and the batch
continues.

Examples:
  # Reconcile as of today
  seihyo affiliation reconcile

  # Reconcile a historical snapshot
  seihyo affiliation reconcile --as-of 2024-06-01

  # Restrict to one group context
  seihyo affiliation reconcile --group 12`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAffiliationReconcile(cmd.Context(), deps)
		},
	}

	cmd.Flags().Int64Var(&affiliationGroup, "group", 0, "Group context ID (0 = all groups)")
	cmd.Flags().StringVar(&affiliationAsOf, "as-of", "", "Effective date YYYY-MM-DD (defaults to today)")
	cmd.Flags().StringVarP(&affiliationOutput, "output", "o", "", "Output format: text, json")

	return cmd
}

func runAffiliationReconcile(ctx context.Context, deps *AffiliationCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	format, err := resolveFormat(cfg, affiliationOutput)
	if err != nil {
		return err
	}

	groupID := groupFilter(affiliationGroup)

	var asOf *time.Time
	if affiliationAsOf != "" {
		parsed, err := parseDate(affiliationAsOf)
		if err != nil {
			return err
		}
		asOf = &parsed
	}

	var result affiliations.ReconcileResult
	if deps.ReconcileFn != nil {
		result, err = deps.ReconcileFn(ctx, cfg, groupID, asOf)
	} else {
		var eng *engine
		eng, err = buildEngine(ctx, cfg, "reconcile")
		if err != nil {
			return err
		}
		defer eng.close()
		result, err = eng.reconciler.Reconcile(ctx, groupID, asOf)
	}
	if err != nil {
		return fmt.Errorf("reconciling affiliations: %w", err)
	}

	if format == config.OutputFormatJSON {
		return printJSON(result)
	}

	fmt.Printf("Run %s: %d matched mentions reconciled\n", result.RunID, result.Total)
	fmt.Printf("  created: %d\n", result.Created)
	if result.Failed > 0 {
		fmt.Printf("  failed:  %d\n", result.Failed)
	}
	return nil
}
