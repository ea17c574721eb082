package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// BronzeRepository implements contracts.BronzeRepository.
// Raw snapshots are persisted only through this repository.
type BronzeRepository struct {
	pool *pgxpool.Pool
}

// NewBronzeRepository creates a new bronze repository
func NewBronzeRepository(pool *pgxpool.Pool) *BronzeRepository {
	return &BronzeRepository{pool: pool}
}

// SaveSnapshot stores one immutable ingestion snapshot under a run id
func (r *BronzeRepository) SaveSnapshot(ctx context.Context, runID string, records []contracts.RawBrewery) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO bronze.raw_breweries (
			run_id, brewery_id, name, brewery_type,
			address_1, city, state, postal_code, country,
			phone, website_url, longitude, latitude, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	for _, rec := range records {
		_, err := tx.Exec(ctx, query,
			runID, rec.ID, rec.Name, rec.BreweryType,
			rec.Address1, rec.City, rec.State, rec.PostalCode, rec.Country,
			rec.Phone, rec.WebsiteURL, rec.Longitude, rec.Latitude, rec.IngestedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert raw record %s: %w", rec.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetLatestSnapshot returns every raw record of the most recent run
func (r *BronzeRepository) GetLatestSnapshot(ctx context.Context) ([]contracts.RawBrewery, error) {
	query := `
		SELECT brewery_id, name, brewery_type,
		       address_1, city, state, postal_code, country,
		       phone, website_url, longitude, latitude, ingested_at
		FROM bronze.raw_breweries
		WHERE run_id = (
			SELECT run_id FROM bronze.raw_breweries
			ORDER BY ingested_at DESC LIMIT 1
		)
		ORDER BY brewery_id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest snapshot: %w", err)
	}
	defer rows.Close()

	var records []contracts.RawBrewery
	for rows.Next() {
		var rec contracts.RawBrewery
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.BreweryType,
			&rec.Address1, &rec.City, &rec.State, &rec.PostalCode, &rec.Country,
			&rec.Phone, &rec.WebsiteURL, &rec.Longitude, &rec.Latitude, &rec.IngestedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan raw record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// DeleteOlderThan removes snapshots ingested before the cutoff
func (r *BronzeRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM bronze.raw_breweries WHERE ingested_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
