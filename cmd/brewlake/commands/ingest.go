package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmoraes/brewlake/internal/pipeline"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch and store one bronze snapshot",
	Long: `Fetch the full Open Brewery DB listing and persist it as an
immutable bronze snapshot, without running the downstream stages.

Example:
  go run ./cmd/brewlake ingest`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake ingest ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	runID := pipeline.GenerateRunID()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	records, err := d.ingestor.Ingest(ctx, runID)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	fmt.Printf("\n✅ Snapshot %s stored (%d records)\n", runID, len(records))
	return nil
}
