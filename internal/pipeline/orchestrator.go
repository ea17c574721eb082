package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// Ingestor pulls and persists one raw snapshot
type Ingestor interface {
	Ingest(ctx context.Context, runID string) ([]contracts.RawBrewery, error)
}

// CleaningEngine turns raw records into the canonical silver set
type CleaningEngine interface {
	Clean(raws []contracts.RawBrewery) ([]contracts.CleanedBrewery, *contracts.CleaningReport)
}

// QualityChecker runs integrity checks over a cleaned set
type QualityChecker interface {
	Check(records []contracts.CleanedBrewery) *contracts.QualityReport
}

// Aggregator computes metric results from a cleaned set
type Aggregator interface {
	Aggregate(records []contracts.CleanedBrewery) ([]contracts.MetricResult, []contracts.MetricError)
}

// Orchestrator coordinates the full medallion pipeline:
// bronze ingest → silver clean → quality gate → gold aggregate.
// It owns the single gating invariant: aggregation never runs on a
// failed quality report unless the caller forces it.
type Orchestrator struct {
	ingestor   Ingestor
	cleaner    CleaningEngine
	gate       QualityChecker
	aggregator Aggregator

	bronzeRepo  contracts.BronzeRepository
	silverRepo  contracts.SilverRepository
	goldRepo    contracts.GoldRepository
	qualityRepo contracts.QualityRepository
	runRepo     contracts.RunRepository

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID          string
	SkipIngest     bool // reuse the latest bronze snapshot instead of fetching
	DryRun         bool // compute everything, persist nothing
	ForceAggregate bool // run gold even when the quality gate fails hard
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           string
	StartedAt       time.Time
	Success         bool
	Error           error
	CompletedStages []contracts.Stage
	CleaningReport  *contracts.CleaningReport
	QualityReport   *contracts.QualityReport
	MetricErrors    []contracts.MetricError
	RawCount        int
	CleanedCount    int
	MetricCount     int
	Duration        time.Duration
}

// NewOrchestrator creates a new pipeline orchestrator
func NewOrchestrator(
	ingestor Ingestor,
	cleaner CleaningEngine,
	gate QualityChecker,
	aggregator Aggregator,
	bronzeRepo contracts.BronzeRepository,
	silverRepo contracts.SilverRepository,
	goldRepo contracts.GoldRepository,
	qualityRepo contracts.QualityRepository,
	runRepo contracts.RunRepository,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		ingestor:    ingestor,
		cleaner:     cleaner,
		gate:        gate,
		aggregator:  aggregator,
		bronzeRepo:  bronzeRepo,
		silverRepo:  silverRepo,
		goldRepo:    goldRepo,
		qualityRepo: qualityRepo,
		runRepo:     runRepo,
		logger:      log.WithField("module", "pipeline"),
	}
}

// Run executes the complete pipeline.
// Per-record and per-metric failures stay inside the reports; the
// returned error covers infrastructure failures and a hard quality
// gate block only.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	result := &RunResult{
		RunID:           config.RunID,
		StartedAt:       startTime,
		Success:         false,
		CompletedStages: make([]contracts.Stage, 0),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":          config.RunID,
		"skip_ingest":     config.SkipIngest,
		"dry_run":         config.DryRun,
		"force_aggregate": config.ForceAggregate,
	}).Info("Starting pipeline run")

	// Bronze: raw snapshot
	raws, err := o.runBronze(ctx, config)
	if err != nil {
		return o.finish(ctx, config, result, fmt.Errorf("bronze failed: %w", err))
	}
	result.RawCount = len(raws)
	result.CompletedStages = append(result.CompletedStages, contracts.StageBronze)

	// Silver: clean and persist the canonical set
	cleaned, err := o.runSilver(ctx, config, raws, result)
	if err != nil {
		return o.finish(ctx, config, result, fmt.Errorf("silver failed: %w", err))
	}
	result.CleanedCount = len(cleaned)
	result.CompletedStages = append(result.CompletedStages, contracts.StageSilver)

	// Quality gate
	report, err := o.runQuality(ctx, config, cleaned)
	if err != nil {
		return o.finish(ctx, config, result, fmt.Errorf("quality failed: %w", err))
	}
	result.QualityReport = report
	result.CompletedStages = append(result.CompletedStages, contracts.StageQuality)

	// Gating invariant: no aggregation on a failed report
	if !report.Passed && !config.ForceAggregate {
		err := fmt.Errorf("quality gate blocked aggregation: %d hard violations", len(report.HardViolations()))
		return o.finish(ctx, config, result, err)
	}

	// Gold: aggregate and persist metric results
	metricCount, metricErrs, err := o.runGold(ctx, config, cleaned)
	if err != nil {
		return o.finish(ctx, config, result, fmt.Errorf("gold failed: %w", err))
	}
	result.MetricCount = metricCount
	result.MetricErrors = metricErrs
	result.CompletedStages = append(result.CompletedStages, contracts.StageGold)

	result.Success = true
	return o.finish(ctx, config, result, nil)
}

// runBronze fetches a fresh snapshot or reloads the latest one
func (o *Orchestrator) runBronze(ctx context.Context, config RunConfig) ([]contracts.RawBrewery, error) {
	if config.SkipIngest {
		o.logger.Info("Running bronze: reusing latest snapshot")
		raws, err := o.bronzeRepo.GetLatestSnapshot(ctx)
		if err != nil {
			return nil, fmt.Errorf("load latest snapshot: %w", err)
		}
		if len(raws) == 0 {
			return nil, fmt.Errorf("no bronze snapshot available")
		}
		return raws, nil
	}

	o.logger.Info("Running bronze: ingesting snapshot")
	raws, err := o.ingestor.Ingest(ctx, config.RunID)
	if err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}
	return raws, nil
}

// runSilver cleans the raw set and replaces the stored silver set
func (o *Orchestrator) runSilver(ctx context.Context, config RunConfig, raws []contracts.RawBrewery, result *RunResult) ([]contracts.CleanedBrewery, error) {
	o.logger.Info("Running silver: cleaning")

	cleaned, report := o.cleaner.Clean(raws)
	result.CleaningReport = report

	if !config.DryRun {
		if err := o.silverRepo.ReplaceAll(ctx, config.RunID, cleaned); err != nil {
			return nil, fmt.Errorf("replace silver set: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"input":    report.InputCount,
		"output":   report.OutputCount,
		"rejected": report.RejectedCount,
	}).Info("Silver completed")

	return cleaned, nil
}

// runQuality checks the cleaned set and persists the report
func (o *Orchestrator) runQuality(ctx context.Context, config RunConfig, cleaned []contracts.CleanedBrewery) (*contracts.QualityReport, error) {
	o.logger.Info("Running quality gate")

	report := o.gate.Check(cleaned)

	if !config.DryRun {
		if err := o.qualityRepo.SaveReport(ctx, config.RunID, report); err != nil {
			return nil, fmt.Errorf("save quality report: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"passed":     report.Passed,
		"violations": len(report.Violations),
	}).Info("Quality gate completed")

	return report, nil
}

// runGold aggregates metrics and persists the result set
func (o *Orchestrator) runGold(ctx context.Context, config RunConfig, cleaned []contracts.CleanedBrewery) (int, []contracts.MetricError, error) {
	o.logger.Info("Running gold: aggregation")

	results, metricErrs := o.aggregator.Aggregate(cleaned)

	if !config.DryRun {
		if err := o.goldRepo.SaveResults(ctx, config.RunID, results); err != nil {
			return 0, nil, fmt.Errorf("save metric results: %w", err)
		}
	}

	o.logger.WithFields(map[string]interface{}{
		"results": len(results),
		"errors":  len(metricErrs),
	}).Info("Gold completed")

	return len(results), metricErrs, nil
}

// finish records the run outcome and returns the final result.
// Failed runs get a row too; dry runs write nothing.
func (o *Orchestrator) finish(ctx context.Context, config RunConfig, result *RunResult, runErr error) (*RunResult, error) {
	result.Error = runErr
	result.Duration = time.Since(result.StartedAt)

	if !config.DryRun {
		run := &contracts.PipelineRun{
			RunID:           result.RunID,
			StartedAt:       result.StartedAt.UTC(),
			Duration:        result.Duration.Milliseconds(),
			Success:         result.Success,
			CompletedStages: result.CompletedStages,
			RawCount:        result.RawCount,
			CleanedCount:    result.CleanedCount,
			MetricCount:     result.MetricCount,
		}
		if result.CleaningReport != nil {
			run.RejectedCount = result.CleaningReport.RejectedCount
		}
		if result.QualityReport != nil {
			run.QualityPassed = result.QualityReport.Passed
		}
		if runErr != nil {
			run.Error = runErr.Error()
		}
		if err := o.runRepo.SaveRun(ctx, run); err != nil {
			o.logger.WithError(err).Error("Failed to save run record")
		}
	}

	if runErr != nil {
		o.logger.WithFields(map[string]interface{}{
			"run_id": result.RunID,
			"stages": len(result.CompletedStages),
		}).WithError(runErr).Error("Pipeline run failed")
		return result, runErr
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":   result.RunID,
		"duration": result.Duration.Seconds(),
		"stages":   len(result.CompletedStages),
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// GenerateRunID generates a unique run ID
func GenerateRunID() string {
	return fmt.Sprintf("run_%s", time.Now().Format("20060102_150405"))
}
