package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/pipeline"
)

// pipelineCmd represents the pipeline command
var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run and inspect the medallion pipeline",
	Long: `Run the full Bronze → Silver → Quality → Gold pipeline, or
inspect the most recent run.

Example:
  go run ./cmd/brewlake pipeline run
  go run ./cmd/brewlake pipeline run --skip-ingest --dry-run
  go run ./cmd/brewlake pipeline status`,
}

var (
	pipelineRunCmd = &cobra.Command{
		Use:   "run",
		Short: "Execute one full pipeline run",
		RunE:  runPipeline,
	}

	pipelineStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show the latest pipeline run",
		RunE:  showPipelineStatus,
	}

	// Flags
	pipelineSkipIngest     bool
	pipelineDryRun         bool
	pipelineForceAggregate bool
)

func init() {
	rootCmd.AddCommand(pipelineCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)
	pipelineCmd.AddCommand(pipelineStatusCmd)

	pipelineRunCmd.Flags().BoolVar(&pipelineSkipIngest, "skip-ingest", false, "reuse the latest bronze snapshot instead of fetching")
	pipelineRunCmd.Flags().BoolVar(&pipelineDryRun, "dry-run", false, "compute everything, persist nothing")
	pipelineRunCmd.Flags().BoolVar(&pipelineForceAggregate, "force-aggregate", false, "aggregate even when the quality gate fails hard")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake pipeline ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	runID := pipeline.GenerateRunID()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	result, err := d.orchestrator.Run(ctx, pipeline.RunConfig{
		RunID:          runID,
		SkipIngest:     pipelineSkipIngest,
		DryRun:         pipelineDryRun,
		ForceAggregate: pipelineForceAggregate,
	})
	if result != nil {
		printRunResult(result)
	}
	if err != nil {
		return fmt.Errorf("pipeline run failed: %w", err)
	}

	fmt.Println("\n✅ Pipeline completed")
	return nil
}

func printRunResult(result *pipeline.RunResult) {
	fmt.Printf("\nRun ID:    %s\n", result.RunID)
	fmt.Printf("Stages:    %s\n", strings.Join(stageNames(result.CompletedStages), " → "))
	fmt.Printf("Duration:  %s\n", result.Duration.Round(time.Millisecond))
	fmt.Printf("Raw:       %d\n", result.RawCount)
	fmt.Printf("Cleaned:   %d\n", result.CleanedCount)
	if result.CleaningReport != nil {
		fmt.Printf("Rejected:  %d (duplicates: %d)\n",
			result.CleaningReport.RejectedCount, result.CleaningReport.DuplicateCount)
	}
	if result.QualityReport != nil {
		fmt.Printf("Quality:   passed=%v violations=%d\n",
			result.QualityReport.Passed, len(result.QualityReport.Violations))
	}
	fmt.Printf("Metrics:   %d rows\n", result.MetricCount)
	for _, me := range result.MetricErrors {
		fmt.Printf("  metric error: %s\n", me.Error())
	}
}

func showPipelineStatus(cmd *cobra.Command, args []string) error {
	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	run, err := d.runRepo.GetLatest(ctx)
	if err != nil {
		return fmt.Errorf("get latest run: %w", err)
	}

	fmt.Printf("Run ID:     %s\n", run.RunID)
	fmt.Printf("Started:    %s\n", run.StartedAt.Format(time.RFC3339))
	fmt.Printf("Duration:   %dms\n", run.Duration)
	fmt.Printf("Success:    %v\n", run.Success)
	fmt.Printf("Stages:     %s\n", strings.Join(stageNames(run.CompletedStages), " → "))
	fmt.Printf("Raw:        %d\n", run.RawCount)
	fmt.Printf("Cleaned:    %d (rejected %d)\n", run.CleanedCount, run.RejectedCount)
	fmt.Printf("Metrics:    %d\n", run.MetricCount)
	fmt.Printf("Quality:    passed=%v\n", run.QualityPassed)
	if run.Error != "" {
		fmt.Printf("Error:      %s\n", run.Error)
	}
	return nil
}
