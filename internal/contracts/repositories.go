package contracts

import (
	"context"
	"time"
)

// Repository interfaces shared across stages. The postgres
// implementations live in internal/store; the orchestrator and API
// depend only on these.

// RawSource yields raw brewery records for the cleaning engine.
// The REST client is the production implementation; tests use slices.
type RawSource interface {
	FetchAll(ctx context.Context) ([]RawBrewery, error)
}

// BronzeRepository persists raw ingestion snapshots
type BronzeRepository interface {
	SaveSnapshot(ctx context.Context, runID string, records []RawBrewery) error
	GetLatestSnapshot(ctx context.Context) ([]RawBrewery, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// SilverRepository persists cleaned records, partitioned by type
type SilverRepository interface {
	ReplaceAll(ctx context.Context, runID string, records []CleanedBrewery) error
	GetAll(ctx context.Context) ([]CleanedBrewery, error)
	GetByType(ctx context.Context, breweryType BreweryType) ([]CleanedBrewery, error)
}

// GoldRepository persists metric results per run
type GoldRepository interface {
	SaveResults(ctx context.Context, runID string, results []MetricResult) error
	GetByMetric(ctx context.Context, metric string) ([]MetricResult, error)
	GetLatestRunID(ctx context.Context) (string, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// QualityRepository persists quality gate reports
type QualityRepository interface {
	SaveReport(ctx context.Context, runID string, report *QualityReport) error
	GetLatest(ctx context.Context) (*QualityReport, error)
}

// RunRepository persists pipeline run history.
// This is the externally-owned run state: no process-wide singletons.
type RunRepository interface {
	SaveRun(ctx context.Context, run *PipelineRun) error
	GetLatest(ctx context.Context) (*PipelineRun, error)
}

// PipelineRun is one full pipeline execution record
type PipelineRun struct {
	RunID           string    `json:"run_id"`
	StartedAt       time.Time `json:"started_at"`
	Duration        int64     `json:"duration_ms"`
	Success         bool      `json:"success"`
	CompletedStages []Stage   `json:"completed_stages"`
	RawCount        int       `json:"raw_count"`
	CleanedCount    int       `json:"cleaned_count"`
	RejectedCount   int       `json:"rejected_count"`
	MetricCount     int       `json:"metric_count"`
	QualityPassed   bool      `json:"quality_passed"`
	Error           string    `json:"error,omitempty"`
}
