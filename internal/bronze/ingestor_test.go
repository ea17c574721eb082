package bronze

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/config"
	"github.com/dmoraes/brewlake/pkg/logger"
)

type fakeSource struct {
	records []contracts.RawBrewery
	err     error
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]contracts.RawBrewery, error) {
	return f.records, f.err
}

type fakeBronzeRepo struct {
	savedRunID string
	saved      []contracts.RawBrewery
	err        error
}

func (f *fakeBronzeRepo) SaveSnapshot(ctx context.Context, runID string, records []contracts.RawBrewery) error {
	f.savedRunID = runID
	f.saved = records
	return f.err
}

func (f *fakeBronzeRepo) GetLatestSnapshot(ctx context.Context) ([]contracts.RawBrewery, error) {
	return f.saved, nil
}

func (f *fakeBronzeRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func testLogger() *logger.Logger {
	return logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
}

func TestIngest_StampsAndSaves(t *testing.T) {
	fixedNow := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	source := &fakeSource{records: []contracts.RawBrewery{rawRecord("b-1"), rawRecord("b-2")}}
	repo := &fakeBronzeRepo{}

	ingestor := NewIngestor(source, repo, testLogger(), func() time.Time { return fixedNow })

	records, err := ingestor.Ingest(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Ingest() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("Ingest() got %d records, want 2", len(records))
	}
	for _, r := range records {
		if !r.IngestedAt.Equal(fixedNow) {
			t.Errorf("record %s IngestedAt = %v, want %v", r.ID, r.IngestedAt, fixedNow)
		}
	}

	if repo.savedRunID != "run-1" {
		t.Errorf("SaveSnapshot() run id = %q, want run-1", repo.savedRunID)
	}
	if len(repo.saved) != 2 {
		t.Errorf("SaveSnapshot() got %d records, want 2", len(repo.saved))
	}
}

func TestIngest_SourceFailurePropagates(t *testing.T) {
	source := &fakeSource{err: errors.New("connection refused")}
	repo := &fakeBronzeRepo{}

	ingestor := NewIngestor(source, repo, testLogger(), nil)

	if _, err := ingestor.Ingest(context.Background(), "run-1"); err == nil {
		t.Fatal("Ingest() expected error when source fails")
	}
	if repo.saved != nil {
		t.Error("Ingest() must not save a snapshot when the fetch fails")
	}
}

func TestIngest_SaveFailurePropagates(t *testing.T) {
	source := &fakeSource{records: []contracts.RawBrewery{rawRecord("b-1")}}
	repo := &fakeBronzeRepo{err: errors.New("connection reset")}

	ingestor := NewIngestor(source, repo, testLogger(), nil)

	if _, err := ingestor.Ingest(context.Background(), "run-1"); err == nil {
		t.Fatal("Ingest() expected error when save fails")
	}
}
