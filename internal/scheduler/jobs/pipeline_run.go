package jobs

import (
	"context"
	"fmt"

	"github.com/dmoraes/brewlake/internal/pipeline"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// PipelineRunJob executes the full medallion pipeline on schedule
type PipelineRunJob struct {
	orchestrator *pipeline.Orchestrator
	logger       *logger.Logger
}

// NewPipelineRunJob creates a new pipeline run job
func NewPipelineRunJob(orchestrator *pipeline.Orchestrator, log *logger.Logger) *PipelineRunJob {
	return &PipelineRunJob{
		orchestrator: orchestrator,
		logger:       log,
	}
}

// Name returns the job name
func (j *PipelineRunJob) Name() string {
	return "pipeline_run"
}

// Schedule returns the cron schedule (daily at 6 AM)
func (j *PipelineRunJob) Schedule() string {
	return "0 0 6 * * *"
}

// Run executes one full pipeline run
func (j *PipelineRunJob) Run(ctx context.Context) error {
	runID := pipeline.GenerateRunID()
	j.logger.WithField("run_id", runID).Info("Starting scheduled pipeline run")

	result, err := j.orchestrator.Run(ctx, pipeline.RunConfig{RunID: runID})
	if err != nil {
		return fmt.Errorf("pipeline run %s failed: %w", runID, err)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"raw":     result.RawCount,
		"cleaned": result.CleanedCount,
		"metrics": result.MetricCount,
	}).Info("Scheduled pipeline run completed")

	return nil
}
