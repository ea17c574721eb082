package bronze

import (
	"context"
	"fmt"
	"time"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// Ingestor pulls the full raw record set from the source and persists
// it as an immutable bronze snapshot. Every record is stamped with the
// ingestion timestamp that drives the last-write-wins dedup rule
// downstream.
type Ingestor struct {
	source contracts.RawSource
	repo   contracts.BronzeRepository
	logger *logger.Logger
	now    func() time.Time
}

// NewIngestor creates a new Ingestor. A nil now defaults to time.Now.
func NewIngestor(source contracts.RawSource, repo contracts.BronzeRepository, log *logger.Logger, now func() time.Time) *Ingestor {
	if now == nil {
		now = time.Now
	}
	return &Ingestor{
		source: source,
		repo:   repo,
		logger: log.WithField("module", "bronze"),
		now:    now,
	}
}

// Ingest fetches all records, stamps them, and saves the snapshot
// under the given run id. Returns the stamped records so the caller
// can feed them straight into cleaning without a read-back.
func (i *Ingestor) Ingest(ctx context.Context, runID string) ([]contracts.RawBrewery, error) {
	records, err := i.source.FetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch raw records failed: %w", err)
	}

	ingestedAt := i.now().UTC()
	for idx := range records {
		records[idx].IngestedAt = ingestedAt
	}

	if err := i.repo.SaveSnapshot(ctx, runID, records); err != nil {
		return nil, fmt.Errorf("save snapshot failed: %w", err)
	}

	i.logger.WithFields(map[string]interface{}{
		"run_id":  runID,
		"records": len(records),
	}).Info("Snapshot ingested")

	return records, nil
}
