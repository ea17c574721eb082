package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "brewlake",
	Short: "brewlake - medallion pipeline over Open Brewery DB",
	Long: `brewlake Unified CLI

Bronze / Silver / Gold data pipeline for Open Brewery DB records:
raw ingestion, cleaning and deduplication, quality gating, and
analytical aggregation.

Usage:
  go run ./cmd/brewlake [command]

Examples:
  go run ./cmd/brewlake pipeline run
  go run ./cmd/brewlake check
  go run ./cmd/brewlake api
  go run ./cmd/brewlake scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
