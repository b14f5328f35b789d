// Package main provides the seihyo CLI entry point.
// seihyo is the command-line interface for the political-records
// entity-resolution engine: it links extracted person mentions to canonical
// politicians and maintains their time-bounded group memberships.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/seihyo/seihyo-cli/cmd"
	"github.com/seihyo/seihyo-cli/pkg/buildinfo"
)

// Global flags.
var (
	outputFormat string
	debug        bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "seihyo",
	Short: "Seihyo CLI - political records entity resolution",
	Long: `seihyo links person mentions extracted from political source pages
(rosters, member lists, vote tallies) to canonical politician records, and
maintains time-bounded group memberships derived from confirmed matches.

COMMON WORKFLOWS:
  Classify mentions:   seihyo match run  →  seihyo match summary
  Update memberships:  seihyo affiliation reconcile
  Check backends:      seihyo db health  →  seihyo oracle check
  Prepare a database:  seihyo db migrate

DISCOVERY:
  seihyo <command> --help   Subcommands, flags, and examples for any command

Commands support --output json for structured data.`,
	PersistentPreRunE: func(c *cobra.Command, args []string) error {
		if outputFormat != "" {
			os.Setenv("SEIHYO_OUTPUT_FORMAT", outputFormat)
		}
		if debug {
			os.Setenv("SEIHYO_DEBUG", "1")
		}
		return nil
	},
}

// versionCmd prints build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(c *cobra.Command, args []string) error {
		if outputFormat == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(buildinfo.Get())
		}
		fmt.Printf("seihyo %s\n", buildinfo.String())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "", "default output format: text, json")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cmd.NewMatchCommand(nil))
	rootCmd.AddCommand(cmd.NewAffiliationCommand(nil))
	rootCmd.AddCommand(cmd.NewOracleCommand(nil))
	rootCmd.AddCommand(cmd.NewDBCommand(nil))
}

func main() {
	// Set up signal handling for graceful shutdown. Classification mutates
	// one mention at a time, so cancelling between mentions is safe and a
	// later run picks up the remainder.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
