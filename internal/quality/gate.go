package quality

import (
	"fmt"
	"sort"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// Gate validates cleaned records before they reach aggregation.
// All checks run independently; violations are collected, never
// short-circuited. Passed is false only on hard-severity violations.
type Gate struct {
	config Config
	logger *logger.Logger
}

// Config holds quality gate thresholds
type Config struct {
	// NullRateCeiling is the tolerated per-country null fraction for
	// each of phone/website/address. Default 0.60.
	NullRateCeiling float64

	// Strict promotes null-rate violations from warning to hard
	Strict bool

	// MinRecords is the volume floor for the cleaned set. An empty
	// or shrunken set signals a broken ingest, not a clean pass.
	// Default 1.
	MinRecords int
}

// DefaultConfig returns the gate defaults
func DefaultConfig() Config {
	return Config{
		NullRateCeiling: 0.60,
		Strict:          false,
		MinRecords:      1,
	}
}

// NewGate creates a new Gate instance
func NewGate(config Config, log *logger.Logger) *Gate {
	if config.NullRateCeiling <= 0 {
		config.NullRateCeiling = DefaultConfig().NullRateCeiling
	}
	if config.MinRecords <= 0 {
		config.MinRecords = DefaultConfig().MinRecords
	}
	return &Gate{
		config: config,
		logger: log.WithField("module", "quality"),
	}
}

// Check runs every integrity check over the cleaned set and returns
// the collected verdict. It never errors: a broken data set is a
// failed report, not a failed call.
func (g *Gate) Check(records []contracts.CleanedBrewery) *contracts.QualityReport {
	report := &contracts.QualityReport{
		RecordCount: len(records),
		Violations:  make([]contracts.Violation, 0),
	}

	report.Violations = append(report.Violations, g.checkVolume(records)...)
	report.Violations = append(report.Violations, g.checkSchema(records)...)
	report.Violations = append(report.Violations, g.checkDuplicates(records)...)
	report.Violations = append(report.Violations, g.checkNullRates(records)...)
	report.Violations = append(report.Violations, g.checkTypeDomain(records)...)

	report.Passed = len(report.HardViolations()) == 0

	g.logger.WithFields(map[string]interface{}{
		"records":    report.RecordCount,
		"violations": len(report.Violations),
		"hard":       len(report.HardViolations()),
		"passed":     report.Passed,
	}).Info("Quality gate completed")

	return report
}

// checkVolume enforces the record-count floor. Always hard: an empty
// cleaned set must never produce an empty-but-passing gold run.
func (g *Gate) checkVolume(records []contracts.CleanedBrewery) []contracts.Violation {
	if len(records) >= g.config.MinRecords {
		return nil
	}
	return []contracts.Violation{{
		Check:    "volume",
		Severity: contracts.SeverityHard,
		Message:  fmt.Sprintf("record count %d below minimum %d", len(records), g.config.MinRecords),
	}}
}

// checkSchema verifies required fields on every record. The cleaning
// engine guarantees this; a failure here means corrupted storage or a
// bypassed pipeline, so it is always hard.
func (g *Gate) checkSchema(records []contracts.CleanedBrewery) []contracts.Violation {
	violations := make([]contracts.Violation, 0)
	for i, record := range records {
		missing := make([]string, 0, 4)
		if record.ID == "" {
			missing = append(missing, "id")
		}
		if record.Name == "" {
			missing = append(missing, "name")
		}
		if record.BreweryType == "" {
			missing = append(missing, "brewery_type")
		}
		if record.Country == "" {
			missing = append(missing, "country")
		}
		if len(missing) > 0 {
			violations = append(violations, contracts.Violation{
				Check:    "schema_conformance",
				Severity: contracts.SeverityHard,
				Message:  fmt.Sprintf("record %d (id=%q) missing required fields: %v", i, record.ID, missing),
			})
		}
	}
	return violations
}

// checkDuplicates re-verifies the dedup invariant defensively
func (g *Gate) checkDuplicates(records []contracts.CleanedBrewery) []contracts.Violation {
	seen := make(map[string]int, len(records))
	for _, record := range records {
		seen[record.ID]++
	}

	dupes := make([]string, 0)
	for id, count := range seen {
		if count > 1 {
			dupes = append(dupes, id)
		}
	}
	if len(dupes) == 0 {
		return nil
	}

	sort.Strings(dupes)
	return []contracts.Violation{{
		Check:    "duplicate_ids",
		Severity: contracts.SeverityHard,
		Message:  fmt.Sprintf("%d id(s) appear more than once: %v", len(dupes), dupes),
	}}
}

// checkNullRates measures per-country null fractions for the three
// contact fields against the configured ceiling. Warning-level by
// default; promoted to hard in strict mode.
func (g *Gate) checkNullRates(records []contracts.CleanedBrewery) []contracts.Violation {
	type tally struct {
		total               int
		noPhone, noWebsite  int
		noAddress           int
	}

	byCountry := make(map[string]*tally)
	for _, record := range records {
		t, ok := byCountry[record.Country]
		if !ok {
			t = &tally{}
			byCountry[record.Country] = t
		}
		t.total++
		if !record.HasPhone {
			t.noPhone++
		}
		if !record.HasWebsite {
			t.noWebsite++
		}
		if !record.HasAddress {
			t.noAddress++
		}
	}

	severity := contracts.SeverityWarning
	if g.config.Strict {
		severity = contracts.SeverityHard
	}

	countries := make([]string, 0, len(byCountry))
	for country := range byCountry {
		countries = append(countries, country)
	}
	sort.Strings(countries)

	violations := make([]contracts.Violation, 0)
	for _, country := range countries {
		t := byCountry[country]
		fields := []struct {
			name  string
			nulls int
		}{
			{"phone", t.noPhone},
			{"website", t.noWebsite},
			{"address", t.noAddress},
		}

		for _, field := range fields {
			rate := float64(field.nulls) / float64(t.total)
			if rate > g.config.NullRateCeiling {
				violations = append(violations, contracts.Violation{
					Check:    "null_rate",
					Severity: severity,
					Country:  country,
					Message: fmt.Sprintf("%s null rate %.1f%% exceeds ceiling %.1f%% (%d of %d records)",
						field.name, rate*100, g.config.NullRateCeiling*100, field.nulls, t.total),
				})
			}
		}
	}
	return violations
}

// checkTypeDomain re-verifies brewery types against the canonical set
func (g *Gate) checkTypeDomain(records []contracts.CleanedBrewery) []contracts.Violation {
	violations := make([]contracts.Violation, 0)
	for _, record := range records {
		if record.BreweryType != "" && !record.BreweryType.IsValid() {
			violations = append(violations, contracts.Violation{
				Check:    "type_domain",
				Severity: contracts.SeverityHard,
				Message:  fmt.Sprintf("record %q has brewery_type %q outside the canonical set", record.ID, record.BreweryType),
			})
		}
	}
	return violations
}
