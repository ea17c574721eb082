package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/pipeline"
	"github.com/dmoraes/brewlake/internal/silver"
)

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the latest bronze snapshot",
	Long: `Run the cleaning engine over the latest bronze snapshot and
print the cleaning report. By default the result replaces the stored
silver set; use --dry-run to only report.

Example:
  go run ./cmd/brewlake clean
  go run ./cmd/brewlake clean --dry-run`,
	RunE: runClean,
}

var cleanDryRun bool

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "report only, do not replace the silver set")
}

func runClean(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake clean ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	raws, err := d.bronzeRepo.GetLatestSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("load latest snapshot: %w", err)
	}
	if len(raws) == 0 {
		return fmt.Errorf("no bronze snapshot available, run ingest first")
	}

	cleaned, report := d.cleaner.Clean(raws)

	fmt.Printf("\nInput:      %d\n", report.InputCount)
	fmt.Printf("Output:     %d\n", report.OutputCount)
	fmt.Printf("Rejected:   %d\n", report.RejectedCount)
	fmt.Printf("Duplicates: %d\n", report.DuplicateCount)
	fmt.Printf("Warnings:   %d\n", len(report.Warnings))
	for _, w := range report.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}

	partitions := silver.PartitionByType(cleaned)
	fmt.Printf("\nPartitions by type:\n")
	for _, t := range sortedPartitionKeys(partitions) {
		fmt.Printf("  %-12s %d\n", t, len(partitions[t]))
	}

	if cleanDryRun {
		fmt.Println("\nDry run: silver set unchanged")
		return nil
	}

	runID := pipeline.GenerateRunID()
	if err := d.silverRepo.ReplaceAll(ctx, runID, cleaned); err != nil {
		return fmt.Errorf("replace silver set: %w", err)
	}

	fmt.Printf("\n✅ Silver set replaced (%d records)\n", len(cleaned))
	return nil
}
