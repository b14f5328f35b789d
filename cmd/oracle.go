package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seihyo/seihyo-cli/config"
	"github.com/seihyo/seihyo-cli/pkg/mentions/resolver"
)

// Oracle command flags
var oracleOutput string

// OracleStatus describes one arbitration endpoint probe.
type OracleStatus struct {
	BaseURL   string        `json:"base_url"`
	Model     string        `json:"model"`
	Available bool          `json:"available"`
	Latency   time.Duration `json:"latency_ms"`
}

// OracleCommandDeps holds the dependencies for oracle commands.
type OracleCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)

	// Mock function overrides for testing
	CheckFn func(ctx context.Context, cfg *config.CLIConfig) (OracleStatus, error)
}

// DefaultOracleDeps returns the default dependencies for production use.
func DefaultOracleDeps() *OracleCommandDeps {
	return &OracleCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewOracleCommand creates the root oracle command with all subcommands.
func NewOracleCommand(deps *OracleCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultOracleDeps()
	}

	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Manage the LLM arbitration endpoint",
		Long: `Manage the LLM endpoint used to arbitrate between candidate politicians.

The oracle is only consulted when candidate lookup returns two or more
politicians for a mention. An unreachable oracle never fails a match run;
affected mentions are recorded as no_match and can be reprocessed later.`,
		Example: `  # Probe the configured endpoint
  seihyo oracle check

  # Output as JSON
  seihyo oracle check --output json`,
	}

	cmd.AddCommand(newOracleCheckCommand(deps))

	return cmd
}

// newOracleCheckCommand creates the 'oracle check' subcommand.
func newOracleCheckCommand(deps *OracleCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the arbitration endpoint",
		Long: `Probe the configured arbitration endpoint and report reachability.

Examples:
  # Probe the endpoint
  seihyo oracle check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOracleCheck(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&oracleOutput, "output", "o", "", "Output format: text, json")

	return cmd
}

func runOracleCheck(ctx context.Context, deps *OracleCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	format, err := resolveFormat(cfg, oracleOutput)
	if err != nil {
		return err
	}

	var status OracleStatus
	if deps.CheckFn != nil {
		status, err = deps.CheckFn(ctx, cfg)
		if err != nil {
			return err
		}
	} else {
		resolverCfg := cfg.ResolverConfig()
		oracle := resolver.NewLLMOracle(resolverCfg.Oracle)

		start := time.Now()
		available := oracle.IsAvailable(ctx)
		status = OracleStatus{
			BaseURL:   resolverCfg.Oracle.BaseURL,
			Model:     resolverCfg.Oracle.Model,
			Available: available,
			Latency:   time.Since(start),
		}
	}

	if format == config.OutputFormatJSON {
		return printJSON(status)
	}

	state := "unreachable"
	if status.Available {
		state = "ok"
	}
	fmt.Printf("Oracle %s (%s): %s (%.0fms)\n",
		status.BaseURL, status.Model, state, float64(status.Latency.Milliseconds()))
	if !status.Available {
		return fmt.Errorf("oracle endpoint is unreachable")
	}
	return nil
}
