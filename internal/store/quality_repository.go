package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// QualityRepository implements contracts.QualityRepository
type QualityRepository struct {
	pool *pgxpool.Pool
}

// NewQualityRepository creates a new quality report repository
func NewQualityRepository(pool *pgxpool.Pool) *QualityRepository {
	return &QualityRepository{pool: pool}
}

// SaveReport stores one quality gate report
func (r *QualityRepository) SaveReport(ctx context.Context, runID string, report *contracts.QualityReport) error {
	query := `
		INSERT INTO ops.quality_reports (run_id, record_count, passed, violations, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			record_count = EXCLUDED.record_count,
			passed = EXCLUDED.passed,
			violations = EXCLUDED.violations,
			created_at = NOW()
	`
	_, err := r.pool.Exec(ctx, query,
		runID, report.RecordCount, report.Passed, report.Violations,
	)
	if err != nil {
		return fmt.Errorf("failed to save quality report: %w", err)
	}
	return nil
}

// GetLatest returns the most recent quality report
func (r *QualityRepository) GetLatest(ctx context.Context) (*contracts.QualityReport, error) {
	query := `
		SELECT record_count, passed, violations
		FROM ops.quality_reports
		ORDER BY created_at DESC
		LIMIT 1
	`

	var report contracts.QualityReport
	err := r.pool.QueryRow(ctx, query).Scan(
		&report.RecordCount, &report.Passed, &report.Violations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest quality report: %w", err)
	}
	return &report, nil
}
