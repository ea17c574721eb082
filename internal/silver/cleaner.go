package silver

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// Cleaner transforms raw brewery records into the canonical silver
// schema: validation, deduplication, standardization, field repair.
// Clean is a pure function of its input multiset; the only ambient
// input is the injected clock, fixed once per run.
type Cleaner struct {
	config Config
	logger *logger.Logger
}

// Config holds cleaning engine configuration
type Config struct {
	// Workers controls parallel fan-out over deduplicated groups.
	// Zero or one means sequential. Output is identical either way.
	Workers int

	// Now supplies the processed_at stamp. Defaults to time.Now.
	Now func() time.Time
}

// NewCleaner creates a new Cleaner instance
func NewCleaner(config Config, log *logger.Logger) *Cleaner {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Cleaner{
		config: config,
		logger: log.WithField("module", "silver"),
	}
}

// Clean validates, deduplicates, and standardizes raw records.
// Individual bad records are rejected and tallied, never raised; the
// returned report carries rejections and normalization warnings.
// Output is sorted by id so any permutation of the input produces the
// same sequence.
func (c *Cleaner) Clean(raws []contracts.RawBrewery) ([]contracts.CleanedBrewery, *contracts.CleaningReport) {
	report := &contracts.CleaningReport{
		InputCount: len(raws),
		Warnings:   make([]string, 0),
		Rejections: make([]contracts.Rejection, 0),
	}

	// 1. Validation: drop records missing id, name, or country
	valid := make([]contracts.RawBrewery, 0, len(raws))
	for _, raw := range raws {
		if reason := validate(&raw); reason != "" {
			report.RejectedCount++
			report.Rejections = append(report.Rejections, contracts.Rejection{
				ID:     raw.ID,
				Reason: reason,
			})
			continue
		}
		valid = append(valid, raw)
	}

	// 2. Deduplication: one winner per id
	winners := deduplicate(valid)
	report.DuplicateCount = len(valid) - len(winners)

	// 3. Standardization and field repair per surviving record
	processedAt := c.config.Now().UTC()
	cleaned, warnings := c.standardizeAll(winners, processedAt)
	report.NormalizedCount = len(cleaned)

	// Warnings are deduplicated and sorted so parallel execution
	// reports identically to sequential
	report.Warnings = dedupeWarnings(warnings)

	sort.Slice(cleaned, func(i, j int) bool { return cleaned[i].ID < cleaned[j].ID })
	report.OutputCount = len(cleaned)

	c.logger.WithFields(map[string]interface{}{
		"input":      report.InputCount,
		"output":     report.OutputCount,
		"rejected":   report.RejectedCount,
		"duplicates": report.DuplicateCount,
		"warnings":   len(report.Warnings),
	}).Info("Cleaning completed")

	return cleaned, report
}

// validate returns a rejection reason, or "" when the record is usable
func validate(raw *contracts.RawBrewery) string {
	if trim(raw.ID) == "" {
		return "missing id"
	}
	if trim(raw.Name) == "" {
		return "missing name"
	}
	if raw.Country == nil || trim(*raw.Country) == "" {
		return "missing country"
	}
	return ""
}

// standardizeAll maps winners through standardization, optionally in
// parallel. Records are independent, so workers share nothing; the
// final sort in Clean makes ordering irrelevant.
func (c *Cleaner) standardizeAll(winners []contracts.RawBrewery, processedAt time.Time) ([]contracts.CleanedBrewery, []string) {
	workers := c.config.Workers
	if workers <= 1 || len(winners) < 2 {
		cleaned := make([]contracts.CleanedBrewery, 0, len(winners))
		warnings := make([]string, 0)
		for _, raw := range winners {
			record, warns := standardize(&raw, processedAt)
			cleaned = append(cleaned, record)
			warnings = append(warnings, warns...)
		}
		return cleaned, warnings
	}

	type result struct {
		record   contracts.CleanedBrewery
		warnings []string
	}

	rawCh := make(chan contracts.RawBrewery, len(winners))
	resultCh := make(chan result, len(winners))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range rawCh {
				record, warns := standardize(&raw, processedAt)
				resultCh <- result{record: record, warnings: warns}
			}
		}()
	}

	for _, raw := range winners {
		rawCh <- raw
	}
	close(rawCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	cleaned := make([]contracts.CleanedBrewery, 0, len(winners))
	warnings := make([]string, 0)
	for res := range resultCh {
		cleaned = append(cleaned, res.record)
		warnings = append(warnings, res.warnings...)
	}
	return cleaned, warnings
}

// standardize converts one deduplicated raw record to canonical form
func standardize(raw *contracts.RawBrewery, processedAt time.Time) (contracts.CleanedBrewery, []string) {
	warnings := make([]string, 0)

	record := contracts.CleanedBrewery{
		ID:          trim(raw.ID),
		Name:        trim(raw.Name),
		BreweryType: contracts.ParseBreweryType(raw.BreweryType),
		ProcessedAt: processedAt,
	}

	// Country is guaranteed non-nil by validation
	country, known := NormalizeCountry(*raw.Country)
	if !known {
		warnings = append(warnings, fmt.Sprintf("country %q has no normalization entry", country))
	}
	record.Country = country

	if raw.State != nil {
		if state := trim(*raw.State); state != "" {
			normalized, known := NormalizeState(state, record.Country)
			if !known {
				warnings = append(warnings, fmt.Sprintf("state %q has no normalization entry", normalized))
			}
			record.State = &normalized
		}
	}

	record.Address1 = trimPtr(raw.Address1)
	record.City = trimPtr(raw.City)
	record.PostalCode = normalizePostalCode(raw.PostalCode)
	record.Phone = repairPhone(raw.Phone)
	record.WebsiteURL = repairWebsiteURL(raw.WebsiteURL)
	record.Longitude = validLongitude(raw.Longitude)
	record.Latitude = validLatitude(raw.Latitude)

	// Derived flags, consistent with the repaired fields by construction
	record.HasPhone = record.Phone != nil
	record.HasWebsite = record.WebsiteURL != nil
	record.HasAddress = record.Address1 != nil

	return record, warnings
}

// PartitionByType groups cleaned records by brewery type for
// partitioned storage. Each partition preserves the input ordering.
func PartitionByType(records []contracts.CleanedBrewery) map[contracts.BreweryType][]contracts.CleanedBrewery {
	partitions := make(map[contracts.BreweryType][]contracts.CleanedBrewery)
	for _, record := range records {
		partitions[record.BreweryType] = append(partitions[record.BreweryType], record)
	}
	return partitions
}

// dedupeWarnings collapses duplicate warnings and sorts them
func dedupeWarnings(warnings []string) []string {
	seen := make(map[string]bool, len(warnings))
	unique := make([]string, 0, len(warnings))
	for _, w := range warnings {
		if !seen[w] {
			seen[w] = true
			unique = append(unique, w)
		}
	}
	sort.Strings(unique)
	return unique
}
