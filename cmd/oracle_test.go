package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/seihyo/seihyo-cli/config"
)

// TestOracleCommand tests the oracle command structure.
func TestOracleCommand(t *testing.T) {
	cmd := NewOracleCommand(nil)

	if cmd == nil {
		t.Fatal("NewOracleCommand returned nil")
	}
	if cmd.Use != "oracle" {
		t.Errorf("Use = %q, want %q", cmd.Use, "oracle")
	}
	if findSubcommand(cmd, "check") == nil {
		t.Error("Missing subcommand check")
	}
}

// TestOracleCheckExecute tests 'oracle check' with a mocked probe.
func TestOracleCheckExecute(t *testing.T) {
	deps := &OracleCommandDeps{
		LoadConfig: testLoadConfig,
		CheckFn: func(ctx context.Context, cfg *config.CLIConfig) (OracleStatus, error) {
			return OracleStatus{
				BaseURL:   "http://localhost:11434",
				Model:     "gemini-2.0-flash",
				Available: true,
				Latency:   12 * time.Millisecond,
			}, nil
		},
	}

	cmd := NewOracleCommand(deps)
	cmd.SetArgs([]string{"check"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
}

// TestOracleCheckUnavailableFails tests that an unreachable oracle errors.
func TestOracleCheckUnavailableFails(t *testing.T) {
	deps := &OracleCommandDeps{
		LoadConfig: testLoadConfig,
		CheckFn: func(ctx context.Context, cfg *config.CLIConfig) (OracleStatus, error) {
			return OracleStatus{BaseURL: "http://localhost:11434", Available: false}, nil
		},
	}

	cmd := NewOracleCommand(deps)
	cmd.SetArgs([]string{"check"})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	if err := cmd.Execute(); err == nil {
		t.Error("Execute() should fail when the oracle is unreachable")
	}
}
