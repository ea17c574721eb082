package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/pipeline"
)

// aggregateCmd represents the aggregate command
var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Compute gold metrics from the stored silver set",
	Long: `Run the aggregation engine over the stored silver set. The
quality gate is checked first; aggregation on a failing set requires
--force.

Example:
  go run ./cmd/brewlake aggregate
  go run ./cmd/brewlake aggregate --dry-run
  go run ./cmd/brewlake aggregate --force`,
	RunE: runAggregate,
}

var (
	aggregateDryRun bool
	aggregateForce  bool
)

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().BoolVar(&aggregateDryRun, "dry-run", false, "report only, do not persist results")
	aggregateCmd.Flags().BoolVar(&aggregateForce, "force", false, "aggregate even when the quality gate fails hard")
}

func runAggregate(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake aggregate ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	records, err := d.silverRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load silver set: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("silver set is empty, run clean first")
	}

	report := d.gate.Check(records)
	if !report.Passed && !aggregateForce {
		printQualityReport(report)
		return fmt.Errorf("quality gate failed, use --force to aggregate anyway")
	}

	results, metricErrs := d.engine.Aggregate(records)

	// Per-metric row counts
	counts := make(map[string]int)
	for _, res := range results {
		counts[res.Metric]++
	}
	fmt.Printf("\nResults: %d rows\n", len(results))
	for _, metric := range sortedMetricNames(counts) {
		fmt.Printf("  %-32s %d\n", metric, counts[metric])
	}
	for _, me := range metricErrs {
		fmt.Printf("  metric error: %s\n", me.Error())
	}

	if aggregateDryRun {
		fmt.Println("\nDry run: results not persisted")
		return nil
	}

	runID := pipeline.GenerateRunID()
	if err := d.goldRepo.SaveResults(ctx, runID, results); err != nil {
		return fmt.Errorf("save metric results: %w", err)
	}

	fmt.Printf("\n✅ Results saved as %s\n", runID)
	return nil
}
