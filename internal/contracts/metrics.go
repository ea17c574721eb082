package contracts

import (
	"fmt"
	"sort"
	"strings"
)

// Metric names produced by the aggregation engine
const (
	MetricDigitalMaturity      = "digital_maturity_score"
	MetricRegionalDiversity    = "regional_diversity"
	MetricMarketSpecialization = "market_specialization"
	MetricDataTrustScore       = "data_trust_score"
	MetricGeographicHubs       = "geographic_hubs"
	MetricTypeByState          = "breweries_by_type_and_state"
	MetricCountryType          = "breweries_by_country_and_type"
	MetricStateCityCoverage    = "geo_coverage_by_state"
)

// AllMetrics returns every metric name the engine computes
func AllMetrics() []string {
	return []string{
		MetricDigitalMaturity,
		MetricRegionalDiversity,
		MetricMarketSpecialization,
		MetricDataTrustScore,
		MetricGeographicHubs,
		MetricTypeByState,
		MetricCountryType,
		MetricStateCityCoverage,
	}
}

// IsValidMetric checks if a metric name is known
func IsValidMetric(name string) bool {
	for _, m := range AllMetrics() {
		if m == name {
			return true
		}
	}
	return false
}

// MetricResult is one row of gold output: a metric name, a grouping
// key, and the computed values. Regenerated wholesale each run.
type MetricResult struct {
	Metric     string             `json:"metric"`
	GroupKey   string             `json:"group_key"`
	Dimensions map[string]string  `json:"dimensions"`
	Values     map[string]float64 `json:"values"`
}

// CanonicalGroupKey builds the deterministic key string from ordered
// dimension pairs, e.g. "state=CA|city=San Diego"
func CanonicalGroupKey(dims []Dimension) string {
	parts := make([]string, 0, len(dims))
	for _, d := range dims {
		parts = append(parts, fmt.Sprintf("%s=%s", d.Name, d.Value))
	}
	return strings.Join(parts, "|")
}

// Dimension is a single named grouping value
type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MetricError records an isolated per-metric computation failure.
// One metric failing never aborts the others.
type MetricError struct {
	Metric string `json:"metric"`
	Err    string `json:"error"`
}

func (e MetricError) Error() string {
	return fmt.Sprintf("metric %s: %s", e.Metric, e.Err)
}

// SortMetricResults orders results by metric name then group key so
// that output ordering is independent of computation order
func SortMetricResults(results []MetricResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Metric != results[j].Metric {
			return results[i].Metric < results[j].Metric
		}
		return results[i].GroupKey < results[j].GroupKey
	})
}
