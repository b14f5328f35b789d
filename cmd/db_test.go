package cmd

import (
	"context"
	"testing"

	"github.com/seihyo/seihyo-cli/config"
	"github.com/seihyo/seihyo-cli/pkg/db"
)

// TestDBCommand tests the db command structure.
func TestDBCommand(t *testing.T) {
	cmd := NewDBCommand(nil)

	if cmd == nil {
		t.Fatal("NewDBCommand returned nil")
	}
	if cmd.Use != "db" {
		t.Errorf("Use = %q, want %q", cmd.Use, "db")
	}
	for _, expected := range []string{"migrate", "health"} {
		if findSubcommand(cmd, expected) == nil {
			t.Errorf("Missing subcommand %q", expected)
		}
	}
}

// TestDBMigrateExecute tests 'db migrate' with a mocked runner.
func TestDBMigrateExecute(t *testing.T) {
	var gotDir string

	deps := &DBCommandDeps{
		LoadConfig: testLoadConfig,
		MigrateFn: func(ctx context.Context, cfg *config.CLIConfig, dir string) (*db.MigrationResult, error) {
			gotDir = dir
			return &db.MigrationResult{Applied: []string{"001_schema"}}, nil
		},
	}

	cmd := NewDBCommand(deps)
	cmd.SetArgs([]string{"migrate", "--dir", "testdata/migrations"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if gotDir != "testdata/migrations" {
		t.Errorf("dir = %q, want testdata/migrations", gotDir)
	}
}

// TestDBHealthExecute tests 'db health' with a mocked probe.
func TestDBHealthExecute(t *testing.T) {
	deps := &DBCommandDeps{
		LoadConfig: testLoadConfig,
		HealthFn: func(ctx context.Context, cfg *config.CLIConfig) (DBHealthResult, error) {
			return DBHealthResult{Healthy: true, LatencyMS: 3, TotalConns: 10, IdleConns: 8}, nil
		},
	}

	cmd := NewDBCommand(deps)
	cmd.SetArgs([]string{"health"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

// TestDBHealthUnhealthyFails tests that an unhealthy database errors.
func TestDBHealthUnhealthyFails(t *testing.T) {
	deps := &DBCommandDeps{
		LoadConfig: testLoadConfig,
		HealthFn: func(ctx context.Context, cfg *config.CLIConfig) (DBHealthResult, error) {
			return DBHealthResult{Healthy: false, Error: "connection refused"}, nil
		},
	}

	cmd := NewDBCommand(deps)
	cmd.SetArgs([]string{"health"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() should fail when the database is unhealthy")
	}
}
