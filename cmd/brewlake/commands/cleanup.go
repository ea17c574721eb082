package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// cleanupCmd represents the cleanup command
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Purge bronze snapshots and gold runs past retention",
	Long: `Delete bronze snapshots and gold result sets older than the
retention window (RETENTION_DAYS, default 30).

Example:
  go run ./cmd/brewlake cleanup
  go run ./cmd/brewlake cleanup --days 7`,
	RunE: runCleanup,
}

var cleanupDays int

func init() {
	rootCmd.AddCommand(cleanupCmd)
	cleanupCmd.Flags().IntVar(&cleanupDays, "days", 0, "retention window in days (overrides config)")
}

func runCleanup(cmd *cobra.Command, args []string) error {
	fmt.Println("=== brewlake cleanup ===")

	d, err := bootstrap()
	if err != nil {
		return err
	}
	defer d.close()

	days := d.cfg.Pipeline.RetentionDays
	if cleanupDays > 0 {
		days = cleanupDays
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	bronzeDeleted, err := d.bronzeRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("bronze cleanup: %w", err)
	}

	goldDeleted, err := d.goldRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("gold cleanup: %w", err)
	}

	fmt.Printf("\nCutoff: %s\n", cutoff.Format("2006-01-02"))
	fmt.Printf("Bronze rows deleted: %d\n", bronzeDeleted)
	fmt.Printf("Gold rows deleted:   %d\n", goldDeleted)
	fmt.Println("\n✅ Cleanup completed")
	return nil
}
