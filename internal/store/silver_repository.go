package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// SilverRepository implements contracts.SilverRepository.
// The silver table always holds exactly one cleaned set: the latest
// successful run replaces the previous one wholesale, records are
// never updated in place.
type SilverRepository struct {
	pool *pgxpool.Pool
}

// NewSilverRepository creates a new silver repository
func NewSilverRepository(pool *pgxpool.Pool) *SilverRepository {
	return &SilverRepository{pool: pool}
}

const silverColumns = `
	brewery_id, name, brewery_type,
	address_1, city, state, postal_code, country,
	phone, website_url, longitude, latitude,
	has_phone, has_website, has_address, processed_at
`

// ReplaceAll swaps the cleaned set in one transaction
func (r *SilverRepository) ReplaceAll(ctx context.Context, runID string, records []contracts.CleanedBrewery) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM silver.breweries`); err != nil {
		return fmt.Errorf("failed to clear silver set: %w", err)
	}

	query := `
		INSERT INTO silver.breweries (run_id, ` + silverColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	for _, rec := range records {
		if err := insertCleaned(ctx, tx, query, runID, rec); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func insertCleaned(ctx context.Context, tx pgx.Tx, query, runID string, rec contracts.CleanedBrewery) error {
	_, err := tx.Exec(ctx, query,
		runID, rec.ID, rec.Name, rec.BreweryType.String(),
		rec.Address1, rec.City, rec.State, rec.PostalCode, rec.Country,
		rec.Phone, rec.WebsiteURL, rec.Longitude, rec.Latitude,
		rec.HasPhone, rec.HasWebsite, rec.HasAddress, rec.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert cleaned record %s: %w", rec.ID, err)
	}
	return nil
}

// GetAll returns the current cleaned set ordered by id
func (r *SilverRepository) GetAll(ctx context.Context) ([]contracts.CleanedBrewery, error) {
	query := `SELECT ` + silverColumns + ` FROM silver.breweries ORDER BY brewery_id ASC`
	return r.queryCleaned(ctx, query)
}

// GetByType returns the cleaned partition for one brewery type
func (r *SilverRepository) GetByType(ctx context.Context, breweryType contracts.BreweryType) ([]contracts.CleanedBrewery, error) {
	query := `SELECT ` + silverColumns + `
		FROM silver.breweries WHERE brewery_type = $1 ORDER BY brewery_id ASC`
	return r.queryCleaned(ctx, query, breweryType.String())
}

func (r *SilverRepository) queryCleaned(ctx context.Context, query string, args ...interface{}) ([]contracts.CleanedBrewery, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cleaned records: %w", err)
	}
	defer rows.Close()

	var records []contracts.CleanedBrewery
	for rows.Next() {
		var rec contracts.CleanedBrewery
		var breweryType string
		if err := rows.Scan(
			&rec.ID, &rec.Name, &breweryType,
			&rec.Address1, &rec.City, &rec.State, &rec.PostalCode, &rec.Country,
			&rec.Phone, &rec.WebsiteURL, &rec.Longitude, &rec.Latitude,
			&rec.HasPhone, &rec.HasWebsite, &rec.HasAddress, &rec.ProcessedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cleaned record: %w", err)
		}
		rec.BreweryType = contracts.BreweryType(breweryType)
		records = append(records, rec)
	}
	return records, rows.Err()
}
