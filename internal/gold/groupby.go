package gold

import (
	"math"
	"sort"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// The eight metrics share one grouped-reduction shape. This primitive
// owns the shared edge-case policy: records without the grouping
// dimensions are skipped, groups with zero records are never emitted,
// and output is sorted by group key so computation order is invisible.

// keyFunc extracts the grouping dimensions from a record. ok=false
// means the record lacks the dimensions and contributes to no group.
type keyFunc func(record contracts.CleanedBrewery) ([]contracts.Dimension, bool)

// reduceFunc folds one group into its metric values
type reduceFunc func(group []contracts.CleanedBrewery) map[string]float64

// grouping holds one materialized group
type grouping struct {
	Dims    []contracts.Dimension
	Records []contracts.CleanedBrewery
}

// groupBy partitions records into groups keyed by the extractor,
// returned sorted by canonical key
func groupBy(records []contracts.CleanedBrewery, key keyFunc) []grouping {
	byKey := make(map[string]*grouping)
	for _, record := range records {
		dims, ok := key(record)
		if !ok {
			continue
		}
		canonical := contracts.CanonicalGroupKey(dims)
		g, exists := byKey[canonical]
		if !exists {
			g = &grouping{Dims: dims}
			byKey[canonical] = g
		}
		g.Records = append(g.Records, record)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]grouping, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, *byKey[k])
	}
	return groups
}

// reduceBy runs the full group-reduce-format shape for one metric
func reduceBy(metric string, records []contracts.CleanedBrewery, key keyFunc, reduce reduceFunc) []contracts.MetricResult {
	groups := groupBy(records, key)

	results := make([]contracts.MetricResult, 0, len(groups))
	for _, g := range groups {
		dims := make(map[string]string, len(g.Dims))
		for _, d := range g.Dims {
			dims[d.Name] = d.Value
		}
		results = append(results, contracts.MetricResult{
			Metric:     metric,
			GroupKey:   contracts.CanonicalGroupKey(g.Dims),
			Dimensions: dims,
			Values:     reduce(g.Records),
		})
	}
	return results
}

// round2 rounds scores to two decimal places for stable reporting
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
