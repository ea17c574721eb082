package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/pipeline"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the quality gate over the stored silver set",
	Long: `Run the quality gate checks (schema conformance, duplicate
absence, per-country null rates, type domain) over the stored silver
set and print the report.

Example:
  go run ./cmd/brewlake check
  go run ./cmd/brewlake check --save`,
	RunE: runCheck,
}

var checkSave bool

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkSave, "save", false, "persist the report")
}

func runCheck(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake check ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	records, err := d.silverRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load silver set: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("silver set is empty, run clean first")
	}

	report := d.gate.Check(records)
	printQualityReport(report)

	if checkSave {
		runID := pipeline.GenerateRunID()
		if err := d.qualityRepo.SaveReport(ctx, runID, report); err != nil {
			return fmt.Errorf("save quality report: %w", err)
		}
		fmt.Printf("\nReport saved as %s\n", runID)
	}

	if !report.Passed {
		return fmt.Errorf("quality gate failed: %d hard violations", len(report.HardViolations()))
	}

	fmt.Println("\n✅ Quality gate passed")
	return nil
}
