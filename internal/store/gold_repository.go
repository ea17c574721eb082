package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// GoldRepository implements contracts.GoldRepository.
// Metric results are regenerated wholesale each run; rows are keyed by
// (run_id, metric, group_key) so one run never overwrites another.
type GoldRepository struct {
	pool *pgxpool.Pool
}

// NewGoldRepository creates a new gold repository
func NewGoldRepository(pool *pgxpool.Pool) *GoldRepository {
	return &GoldRepository{pool: pool}
}

// SaveResults stores the full result set of one run
func (r *GoldRepository) SaveResults(ctx context.Context, runID string, results []contracts.MetricResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO gold.metric_results (run_id, metric, group_key, dimensions, metric_values, computed_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (run_id, metric, group_key) DO UPDATE SET
			dimensions = EXCLUDED.dimensions,
			metric_values = EXCLUDED.metric_values,
			computed_at = NOW()
	`
	for _, res := range results {
		_, err := tx.Exec(ctx, query,
			runID, res.Metric, res.GroupKey, res.Dimensions, res.Values,
		)
		if err != nil {
			return fmt.Errorf("failed to insert metric result %s/%s: %w", res.Metric, res.GroupKey, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetByMetric returns the latest run's rows for one metric
func (r *GoldRepository) GetByMetric(ctx context.Context, metric string) ([]contracts.MetricResult, error) {
	query := `
		SELECT metric, group_key, dimensions, metric_values
		FROM gold.metric_results
		WHERE metric = $1 AND run_id = (
			SELECT run_id FROM gold.metric_results
			ORDER BY computed_at DESC LIMIT 1
		)
		ORDER BY group_key ASC
	`

	rows, err := r.pool.Query(ctx, query, metric)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric results: %w", err)
	}
	defer rows.Close()

	var results []contracts.MetricResult
	for rows.Next() {
		var res contracts.MetricResult
		if err := rows.Scan(&res.Metric, &res.GroupKey, &res.Dimensions, &res.Values); err != nil {
			return nil, fmt.Errorf("failed to scan metric result: %w", err)
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// GetLatestRunID returns the run id of the most recent result set
func (r *GoldRepository) GetLatestRunID(ctx context.Context) (string, error) {
	var runID string
	err := r.pool.QueryRow(ctx,
		`SELECT run_id FROM gold.metric_results ORDER BY computed_at DESC LIMIT 1`,
	).Scan(&runID)
	if err != nil {
		return "", fmt.Errorf("failed to get latest run id: %w", err)
	}
	return runID, nil
}

// DeleteOlderThan removes result sets computed before the cutoff
func (r *GoldRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM gold.metric_results WHERE computed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old results: %w", err)
	}
	return tag.RowsAffected(), nil
}
