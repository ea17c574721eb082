package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// RunRepository implements contracts.RunRepository.
// Run history is the externally-owned pipeline state; nothing else in
// the system remembers previous executions.
type RunRepository struct {
	pool *pgxpool.Pool
}

// NewRunRepository creates a new run history repository
func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

// SaveRun stores one pipeline execution record
func (r *RunRepository) SaveRun(ctx context.Context, run *contracts.PipelineRun) error {
	query := `
		INSERT INTO ops.pipeline_runs (
			run_id, started_at, duration_ms, success, completed_stages,
			raw_count, cleaned_count, rejected_count, metric_count,
			quality_passed, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (run_id) DO UPDATE SET
			duration_ms = EXCLUDED.duration_ms,
			success = EXCLUDED.success,
			completed_stages = EXCLUDED.completed_stages,
			raw_count = EXCLUDED.raw_count,
			cleaned_count = EXCLUDED.cleaned_count,
			rejected_count = EXCLUDED.rejected_count,
			metric_count = EXCLUDED.metric_count,
			quality_passed = EXCLUDED.quality_passed,
			error = EXCLUDED.error
	`
	_, err := r.pool.Exec(ctx, query,
		run.RunID, run.StartedAt, run.Duration, run.Success, run.CompletedStages,
		run.RawCount, run.CleanedCount, run.RejectedCount, run.MetricCount,
		run.QualityPassed, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save pipeline run: %w", err)
	}
	return nil
}

// GetLatest returns the most recent pipeline run
func (r *RunRepository) GetLatest(ctx context.Context) (*contracts.PipelineRun, error) {
	query := `
		SELECT run_id, started_at, duration_ms, success, completed_stages,
		       raw_count, cleaned_count, rejected_count, metric_count,
		       quality_passed, error
		FROM ops.pipeline_runs
		ORDER BY started_at DESC
		LIMIT 1
	`

	var run contracts.PipelineRun
	err := r.pool.QueryRow(ctx, query).Scan(
		&run.RunID, &run.StartedAt, &run.Duration, &run.Success, &run.CompletedStages,
		&run.RawCount, &run.CleanedCount, &run.RejectedCount, &run.MetricCount,
		&run.QualityPassed, &run.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest pipeline run: %w", err)
	}
	return &run, nil
}
