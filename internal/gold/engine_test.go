package gold

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/config"
	"github.com/dmoraes/brewlake/pkg/logger"
)

func newTestEngine(cfg Config) *Engine {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	return NewEngine(cfg, log)
}

type recordOpt func(*contracts.CleanedBrewery)

func withType(t contracts.BreweryType) recordOpt {
	return func(r *contracts.CleanedBrewery) { r.BreweryType = t }
}

func withCity(city string) recordOpt {
	return func(r *contracts.CleanedBrewery) { r.City = &city }
}

func withContact(phone, website bool) recordOpt {
	return func(r *contracts.CleanedBrewery) {
		r.HasPhone = phone
		r.HasWebsite = website
	}
}

func record(id, state string, opts ...recordOpt) contracts.CleanedBrewery {
	city := "Portland"
	r := contracts.CleanedBrewery{
		ID:          id,
		Name:        "Brewery " + id,
		BreweryType: contracts.TypeMicro,
		City:        &city,
		State:       &state,
		Country:     "United States",
		HasPhone:    true,
		HasWebsite:  true,
		HasAddress:  true,
	}
	for _, fn := range opts {
		fn(&r)
	}
	return r
}

// resultsFor filters aggregation output down to one metric
func resultsFor(results []contracts.MetricResult, metric string) []contracts.MetricResult {
	out := make([]contracts.MetricResult, 0)
	for _, r := range results {
		if r.Metric == metric {
			out = append(out, r)
		}
	}
	return out
}

func TestAggregate_DigitalMaturityScore(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	// One of three CA records has both phone and website
	records := []contracts.CleanedBrewery{
		record("b-1", "California", withContact(true, false)),
		record("b-2", "California", withContact(false, true)),
		record("b-3", "California", withContact(true, true)),
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	maturity := resultsFor(results, contracts.MetricDigitalMaturity)
	require.Len(t, maturity, 1)
	assert.Equal(t, "state=California", maturity[0].GroupKey)
	assert.Equal(t, 3.0, maturity[0].Values["total"])
	assert.Equal(t, 1.0, maturity[0].Values["digitally_ready"])
	assert.InDelta(t, 33.33, maturity[0].Values["score"], 0.001)
}

func TestAggregate_MarketSpecialization(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	records := make([]contracts.CleanedBrewery, 0, 10)
	for i := 0; i < 4; i++ {
		records = append(records, record(idFor("micro", i), "California", withType(contracts.TypeMicro)))
	}
	for i := 0; i < 6; i++ {
		records = append(records, record(idFor("pub", i), "California", withType(contracts.TypeBrewpub)))
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	spec := resultsFor(results, contracts.MetricMarketSpecialization)
	require.Len(t, spec, 1)
	assert.Equal(t, 10.0, spec[0].Values["total"])
	assert.Equal(t, 4.0, spec[0].Values["micro"])
}

func TestAggregate_RegionalDiversity(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	records := []contracts.CleanedBrewery{
		record("b-1", "Oregon", withType(contracts.TypeMicro)),
		record("b-2", "Oregon", withType(contracts.TypeMicro)),
		record("b-3", "Oregon", withType(contracts.TypeBrewpub)),
		record("b-4", "Oregon", withType(contracts.TypeLarge)),
		record("b-5", "Texas", withType(contracts.TypeNano)),
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	diversity := resultsFor(results, contracts.MetricRegionalDiversity)
	require.Len(t, diversity, 2)
	assert.Equal(t, "state=Oregon", diversity[0].GroupKey)
	assert.Equal(t, 3.0, diversity[0].Values["distinct_types"])
	assert.Equal(t, "state=Texas", diversity[1].GroupKey)
	assert.Equal(t, 1.0, diversity[1].Values["distinct_types"])
}

func TestAggregate_DataTrustScore(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	// Completeness 3/3 and 1/3 average to 2/3 ~ 66.67%
	full := record("b-1", "Oregon")
	partial := record("b-2", "Oregon", withContact(false, false))

	results, errs := engine.Aggregate([]contracts.CleanedBrewery{full, partial})
	require.Empty(t, errs)

	trust := resultsFor(results, contracts.MetricDataTrustScore)
	require.Len(t, trust, 1)
	assert.InDelta(t, 66.67, trust[0].Values["score"], 0.001)
}

func TestAggregate_GeographicHubsTieBreak(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	// Two cities tied at two breweries each order alphabetically
	records := []contracts.CleanedBrewery{
		record("b-1", "Oregon", withCity("Salem")),
		record("b-2", "Oregon", withCity("Salem")),
		record("b-3", "Oregon", withCity("Bend")),
		record("b-4", "Oregon", withCity("Bend")),
		record("b-5", "Oregon", withCity("Eugene")),
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	hubs := resultsFor(results, contracts.MetricGeographicHubs)
	require.Len(t, hubs, 3)

	// SortMetricResults orders by group key; rank values carry the
	// descending-count ranking
	byCity := make(map[string]contracts.MetricResult, len(hubs))
	for _, h := range hubs {
		byCity[h.Dimensions["city"]] = h
	}
	assert.Equal(t, 1.0, byCity["Bend"].Values["rank"])
	assert.Equal(t, 2.0, byCity["Salem"].Values["rank"])
	assert.Equal(t, 3.0, byCity["Eugene"].Values["rank"])
}

func TestAggregate_GeographicHubsTopNLimit(t *testing.T) {
	engine := newTestEngine(Config{TopCitiesLimit: 2})

	records := []contracts.CleanedBrewery{
		record("b-1", "Oregon", withCity("Salem")),
		record("b-2", "Oregon", withCity("Salem")),
		record("b-3", "Oregon", withCity("Salem")),
		record("b-4", "Oregon", withCity("Bend")),
		record("b-5", "Oregon", withCity("Bend")),
		record("b-6", "Oregon", withCity("Eugene")),
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	hubs := resultsFor(results, contracts.MetricGeographicHubs)
	require.Len(t, hubs, 2)
	cities := []string{hubs[0].Dimensions["city"], hubs[1].Dimensions["city"]}
	assert.ElementsMatch(t, []string{"Salem", "Bend"}, cities)
}

func TestAggregate_GeoCoverageCountsDistinctCities(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	records := []contracts.CleanedBrewery{
		record("b-1", "Oregon", withCity("Portland")),
		record("b-2", "Oregon", withCity("Portland")),
		record("b-3", "Oregon", withCity("Bend")),
		record("b-4", "Texas", withCity("Austin")),
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	coverage := resultsFor(results, contracts.MetricStateCityCoverage)
	require.Len(t, coverage, 3)
	for _, c := range coverage {
		switch c.GroupKey {
		case "state=Oregon|city=Portland":
			assert.Equal(t, 2.0, c.Values["brewery_count"])
			assert.Equal(t, 2.0, c.Values["cities_in_state"])
		case "state=Oregon|city=Bend":
			assert.Equal(t, 1.0, c.Values["brewery_count"])
			assert.Equal(t, 2.0, c.Values["cities_in_state"])
		case "state=Texas|city=Austin":
			assert.Equal(t, 1.0, c.Values["brewery_count"])
			assert.Equal(t, 1.0, c.Values["cities_in_state"])
		default:
			t.Fatalf("unexpected coverage group %q", c.GroupKey)
		}
	}
}

func TestAggregate_CountsByTypeStateAndCountry(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	irish := record("b-3", "Dublin", withType(contracts.TypeBrewpub))
	irish.Country = "Ireland"

	records := []contracts.CleanedBrewery{
		record("b-1", "Oregon", withType(contracts.TypeMicro)),
		record("b-2", "Oregon", withType(contracts.TypeMicro)),
		irish,
	}

	results, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	typeState := resultsFor(results, contracts.MetricTypeByState)
	require.Len(t, typeState, 2)
	assert.Equal(t, "state=Oregon|brewery_type=micro", typeState[1].GroupKey)
	assert.Equal(t, 2.0, typeState[1].Values["count"])

	countryType := resultsFor(results, contracts.MetricCountryType)
	require.Len(t, countryType, 2)
	assert.Equal(t, "country=Ireland|brewery_type=brewpub", countryType[0].GroupKey)
	assert.Equal(t, 1.0, countryType[0].Values["count"])
	assert.Equal(t, "country=United States|brewery_type=micro", countryType[1].GroupKey)
	assert.Equal(t, 2.0, countryType[1].Values["count"])
}

func TestAggregate_ZeroGroupsAreOmitted(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	noState := record("b-2", "")
	noState.State = nil
	noState.City = nil

	results, errs := engine.Aggregate([]contracts.CleanedBrewery{
		record("b-1", "Oregon"),
		noState,
	})
	require.Empty(t, errs)

	for _, r := range results {
		if state, ok := r.Dimensions["state"]; ok {
			assert.Equal(t, "Oregon", state, "metric %s emitted an unexpected group", r.Metric)
		}
	}
}

func TestAggregate_EmptyInputYieldsNoResults(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	results, errs := engine.Aggregate(nil)

	assert.Empty(t, errs)
	assert.Empty(t, results)
}

func TestAggregate_PermutationDeterminism(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	records := []contracts.CleanedBrewery{
		record("b-1", "Oregon", withCity("Portland"), withType(contracts.TypeMicro)),
		record("b-2", "Oregon", withCity("Bend"), withContact(true, false)),
		record("b-3", "California", withCity("San Diego"), withType(contracts.TypeBrewpub)),
		record("b-4", "California", withCity("San Diego"), withContact(false, false)),
		record("b-5", "Texas", withCity("Austin"), withType(contracts.TypeLarge)),
	}

	baseline, errs := engine.Aggregate(records)
	require.Empty(t, errs)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		shuffled := make([]contracts.CleanedBrewery, len(records))
		copy(shuffled, records)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		results, errs := engine.Aggregate(shuffled)
		require.Empty(t, errs)
		assert.Equal(t, baseline, results)
	}
}

func TestAggregate_ResultsSortedByMetricThenKey(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	results, errs := engine.Aggregate([]contracts.CleanedBrewery{
		record("b-1", "Texas"),
		record("b-2", "Oregon"),
		record("b-3", "California"),
	})
	require.Empty(t, errs)
	require.NotEmpty(t, results)

	for i := 1; i < len(results); i++ {
		prev, cur := results[i-1], results[i]
		if prev.Metric == cur.Metric {
			assert.LessOrEqual(t, prev.GroupKey, cur.GroupKey)
		} else {
			assert.Less(t, prev.Metric, cur.Metric)
		}
	}
}

func TestRunReducer_IsolatesPanics(t *testing.T) {
	engine := newTestEngine(DefaultConfig())

	boom := reducer{
		metric: "exploding_metric",
		compute: func([]contracts.CleanedBrewery) []contracts.MetricResult {
			panic("malformed group")
		},
	}

	results, err := engine.runReducer(boom, nil)

	assert.Nil(t, results)
	require.NotNil(t, err)
	assert.Equal(t, "exploding_metric", err.Metric)
	assert.Contains(t, err.Err, "malformed group")
}

func idFor(prefix string, i int) string {
	return prefix + "-" + string(rune('a'+i))
}
