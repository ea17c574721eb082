package gold

import (
	"fmt"
	"sync"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/logger"
)

// Engine computes the eight analytical metrics from cleaned records.
// Aggregate is pure and deterministic: every metric is an independent
// reducer over the same immutable input, results are regenerated
// wholesale each run, and output ordering is fixed by (metric name,
// group key) regardless of computation order.
type Engine struct {
	config Config
	logger *logger.Logger
}

// Config holds aggregation engine configuration
type Config struct {
	// TopCitiesLimit caps the geographic hubs ranking. Defaults to 10.
	TopCitiesLimit int
}

// DefaultConfig returns the default aggregation configuration
func DefaultConfig() Config {
	return Config{TopCitiesLimit: 10}
}

// NewEngine creates a new aggregation Engine
func NewEngine(config Config, log *logger.Logger) *Engine {
	if config.TopCitiesLimit <= 0 {
		config.TopCitiesLimit = 10
	}
	return &Engine{
		config: config,
		logger: log.WithField("module", "gold"),
	}
}

// reducer pairs a metric name with its computation
type reducer struct {
	metric  string
	compute func(records []contracts.CleanedBrewery) []contracts.MetricResult
}

// reducers lists every metric the engine runs
func (e *Engine) reducers() []reducer {
	return []reducer{
		{contracts.MetricDigitalMaturity, digitalMaturityScore},
		{contracts.MetricRegionalDiversity, regionalDiversity},
		{contracts.MetricMarketSpecialization, marketSpecialization},
		{contracts.MetricDataTrustScore, dataTrustScore},
		{contracts.MetricGeographicHubs, func(records []contracts.CleanedBrewery) []contracts.MetricResult {
			return geographicHubs(records, e.config.TopCitiesLimit)
		}},
		{contracts.MetricTypeByState, breweriesByTypeAndState},
		{contracts.MetricCountryType, breweriesByCountryAndType},
		{contracts.MetricStateCityCoverage, geoCoverageByState},
	}
}

// Aggregate runs all eight reducers over the records and concatenates
// their results. Each metric is isolated: a failing reducer lands in
// the returned error list and never aborts the others. Results are
// sorted by metric name then group key.
func (e *Engine) Aggregate(records []contracts.CleanedBrewery) ([]contracts.MetricResult, []contracts.MetricError) {
	reducers := e.reducers()

	type outcome struct {
		results []contracts.MetricResult
		err     *contracts.MetricError
	}
	outcomes := make([]outcome, len(reducers))

	// Reducers are pure functions of the shared immutable input, so
	// they fan out with no locking; slot-per-metric keeps collection
	// race-free.
	var wg sync.WaitGroup
	for i, r := range reducers {
		wg.Add(1)
		go func(i int, r reducer) {
			defer wg.Done()
			results, err := e.runReducer(r, records)
			outcomes[i] = outcome{results: results, err: err}
		}(i, r)
	}
	wg.Wait()

	results := make([]contracts.MetricResult, 0)
	errors := make([]contracts.MetricError, 0)
	for _, o := range outcomes {
		if o.err != nil {
			errors = append(errors, *o.err)
			continue
		}
		results = append(results, o.results...)
	}

	contracts.SortMetricResults(results)

	e.logger.WithFields(map[string]interface{}{
		"records": len(records),
		"metrics": len(reducers) - len(errors),
		"results": len(results),
		"errors":  len(errors),
	}).Info("Aggregation completed")

	return results, errors
}

// runReducer executes one metric, converting panics into an isolated
// MetricError
func (e *Engine) runReducer(r reducer, records []contracts.CleanedBrewery) (results []contracts.MetricResult, metricErr *contracts.MetricError) {
	defer func() {
		if rec := recover(); rec != nil {
			e.logger.WithFields(map[string]interface{}{
				"metric": r.metric,
				"panic":  fmt.Sprintf("%v", rec),
			}).Error("Metric computation failed")
			results = nil
			metricErr = &contracts.MetricError{
				Metric: r.metric,
				Err:    fmt.Sprintf("%v", rec),
			}
		}
	}()

	return r.compute(records), nil
}
