package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// RetentionCleanupJob purges bronze snapshots and gold result sets
// older than the retention window. Silver is exempt: it always holds
// exactly the latest cleaned set.
type RetentionCleanupJob struct {
	bronzeRepo    contracts.BronzeRepository
	goldRepo      contracts.GoldRepository
	retentionDays int
	logger        *logger.Logger
}

// NewRetentionCleanupJob creates a new retention cleanup job
func NewRetentionCleanupJob(bronzeRepo contracts.BronzeRepository, goldRepo contracts.GoldRepository, retentionDays int, log *logger.Logger) *RetentionCleanupJob {
	if retentionDays <= 0 {
		retentionDays = 30
	}
	return &RetentionCleanupJob{
		bronzeRepo:    bronzeRepo,
		goldRepo:      goldRepo,
		retentionDays: retentionDays,
		logger:        log,
	}
}

// Name returns the job name
func (j *RetentionCleanupJob) Name() string {
	return "retention_cleanup"
}

// Schedule returns the cron schedule (daily at 3 AM, before the run)
func (j *RetentionCleanupJob) Schedule() string {
	return "0 0 3 * * *"
}

// Run purges data older than the retention cutoff
func (j *RetentionCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -j.retentionDays)

	bronzeDeleted, err := j.bronzeRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("bronze cleanup failed: %w", err)
	}

	goldDeleted, err := j.goldRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("gold cleanup failed: %w", err)
	}

	j.logger.WithFields(map[string]interface{}{
		"cutoff":         cutoff.Format("2006-01-02"),
		"bronze_deleted": bronzeDeleted,
		"gold_deleted":   goldDeleted,
	}).Info("Retention cleanup completed")

	return nil
}
