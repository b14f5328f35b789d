package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seihyo/seihyo-cli/config"
	"github.com/seihyo/seihyo-cli/pkg/db"
)

// DB command flags
var (
	dbOutput        string
	dbMigrationsDir string
)

// DBHealthResult is the machine-readable health probe output.
type DBHealthResult struct {
	Healthy       bool   `json:"healthy"`
	LatencyMS     int64  `json:"latency_ms"`
	TotalConns    int32  `json:"total_conns"`
	IdleConns     int32  `json:"idle_conns"`
	AcquiredConns int32  `json:"acquired_conns"`
	Error         string `json:"error,omitempty"`
}

// DBCommandDeps holds the dependencies for db commands.
type DBCommandDeps struct {
	LoadConfig func() (*config.CLIConfig, error)

	// Mock function overrides for testing
	MigrateFn func(ctx context.Context, cfg *config.CLIConfig, dir string) (*db.MigrationResult, error)
	HealthFn  func(ctx context.Context, cfg *config.CLIConfig) (DBHealthResult, error)
}

// DefaultDBDeps returns the default dependencies for production use.
func DefaultDBDeps() *DBCommandDeps {
	return &DBCommandDeps{
		LoadConfig: config.LoadConfig,
	}
}

// NewDBCommand creates the root db command with all subcommands.
func NewDBCommand(deps *DBCommandDeps) *cobra.Command {
	if deps == nil {
		deps = DefaultDBDeps()
	}

	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the PostgreSQL backend",
		Long: `Manage the PostgreSQL backend holding the politician registry, extracted
mentions, and affiliations.`,
		Example: `  # Apply pending schema migrations
  seihyo db migrate

  # Probe connectivity and pool health
  seihyo db health`,
	}

	cmd.AddCommand(newDBMigrateCommand(deps))
	cmd.AddCommand(newDBHealthCommand(deps))

	return cmd
}

// newDBMigrateCommand creates the 'db migrate' subcommand.
func newDBMigrateCommand(deps *DBCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		Long: `Apply pending schema migrations from the migrations directory.

Migrations run in alphabetical order and are tracked in a schema_migrations
table, so already-applied files are skipped.

Examples:
  # Apply migrations from the default directory
  seihyo db migrate

  # Apply from an explicit directory
  seihyo db migrate --dir ./migrations`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBMigrate(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVar(&dbMigrationsDir, "dir", "migrations", "Directory containing .sql migration files")
	cmd.Flags().StringVarP(&dbOutput, "output", "o", "", "Output format: text, json")

	return cmd
}

// newDBHealthCommand creates the 'db health' subcommand.
func newDBHealthCommand(deps *DBCommandDeps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Probe database connectivity and pool health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBHealth(cmd.Context(), deps)
		},
	}

	cmd.Flags().StringVarP(&dbOutput, "output", "o", "", "Output format: text, json")

	return cmd
}

func runDBMigrate(ctx context.Context, deps *DBCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	format, err := resolveFormat(cfg, dbOutput)
	if err != nil {
		return err
	}

	var result *db.MigrationResult
	if deps.MigrateFn != nil {
		result, err = deps.MigrateFn(ctx, cfg, dbMigrationsDir)
	} else {
		pool, cerr := db.Connect(ctx, cfg.DBConfig())
		if cerr != nil {
			return fmt.Errorf("connecting to database: %w", cerr)
		}
		defer pool.Close()
		result, err = db.RunMigrations(ctx, pool, dbMigrationsDir)
	}
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if format == config.OutputFormatJSON {
		return printJSON(result)
	}

	fmt.Printf("Migrations: %d applied, %d skipped\n", len(result.Applied), len(result.Skipped))
	for _, v := range result.Applied {
		fmt.Printf("  applied %s\n", v)
	}
	return nil
}

func runDBHealth(ctx context.Context, deps *DBCommandDeps) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	format, err := resolveFormat(cfg, dbOutput)
	if err != nil {
		return err
	}

	var result DBHealthResult
	if deps.HealthFn != nil {
		result, err = deps.HealthFn(ctx, cfg)
		if err != nil {
			return err
		}
	} else {
		probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		pool, cerr := db.Connect(probeCtx, cfg.DBConfig())
		if cerr != nil {
			result = DBHealthResult{Error: cerr.Error()}
		} else {
			defer pool.Close()
			status := db.Check(probeCtx, pool)
			result = DBHealthResult{
				Healthy:       status.Healthy,
				LatencyMS:     status.Latency.Milliseconds(),
				TotalConns:    status.TotalConns,
				IdleConns:     status.IdleConns,
				AcquiredConns: status.AcquiredConns,
			}
			if status.Error != nil {
				result.Error = status.Error.Error()
			}
		}
	}

	if format == config.OutputFormatJSON {
		return printJSON(result)
	}

	if result.Healthy {
		fmt.Printf("Database: ok (%dms, %d/%d conns in use)\n",
			result.LatencyMS, result.AcquiredConns, result.TotalConns)
		return nil
	}
	fmt.Printf("Database: unhealthy (%s)\n", result.Error)
	return fmt.Errorf("database is unhealthy")
}
