package gold

import (
	"sort"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// Key extractors. A record missing a grouping dimension contributes to
// no group for that metric; it is skipped, not errored.

func stateKey(r contracts.CleanedBrewery) ([]contracts.Dimension, bool) {
	if r.State == nil || *r.State == "" {
		return nil, false
	}
	return []contracts.Dimension{{Name: "state", Value: *r.State}}, true
}

func stateCityKey(r contracts.CleanedBrewery) ([]contracts.Dimension, bool) {
	if r.State == nil || *r.State == "" || r.City == nil || *r.City == "" {
		return nil, false
	}
	return []contracts.Dimension{
		{Name: "state", Value: *r.State},
		{Name: "city", Value: *r.City},
	}, true
}

func typeStateKey(r contracts.CleanedBrewery) ([]contracts.Dimension, bool) {
	if r.State == nil || *r.State == "" {
		return nil, false
	}
	return []contracts.Dimension{
		{Name: "state", Value: *r.State},
		{Name: "brewery_type", Value: r.BreweryType.String()},
	}, true
}

func countryTypeKey(r contracts.CleanedBrewery) ([]contracts.Dimension, bool) {
	if r.Country == "" {
		return nil, false
	}
	return []contracts.Dimension{
		{Name: "country", Value: r.Country},
		{Name: "brewery_type", Value: r.BreweryType.String()},
	}, true
}

// digitalMaturityScore: per state, the percentage of breweries
// reachable through both a phone number and a website
func digitalMaturityScore(records []contracts.CleanedBrewery) []contracts.MetricResult {
	return reduceBy(contracts.MetricDigitalMaturity, records, stateKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			ready := 0
			for _, r := range group {
				if r.HasPhone && r.HasWebsite {
					ready++
				}
			}
			return map[string]float64{
				"total":           float64(len(group)),
				"digitally_ready": float64(ready),
				"score":           round2(100 * float64(ready) / float64(len(group))),
			}
		})
}

// regionalDiversity: per state, the number of distinct brewery types
func regionalDiversity(records []contracts.CleanedBrewery) []contracts.MetricResult {
	return reduceBy(contracts.MetricRegionalDiversity, records, stateKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			types := make(map[contracts.BreweryType]struct{})
			for _, r := range group {
				types[r.BreweryType] = struct{}{}
			}
			return map[string]float64{"distinct_types": float64(len(types))}
		})
}

// marketSpecialization: per state, total breweries and the micro share
func marketSpecialization(records []contracts.CleanedBrewery) []contracts.MetricResult {
	return reduceBy(contracts.MetricMarketSpecialization, records, stateKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			micro := 0
			for _, r := range group {
				if r.BreweryType == contracts.TypeMicro {
					micro++
				}
			}
			return map[string]float64{
				"total": float64(len(group)),
				"micro": float64(micro),
			}
		})
}

// dataTrustScore: per state, the average contact-field completeness as
// a percentage
func dataTrustScore(records []contracts.CleanedBrewery) []contracts.MetricResult {
	return reduceBy(contracts.MetricDataTrustScore, records, stateKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			sum := 0.0
			for _, r := range group {
				sum += r.CompletenessScore()
			}
			return map[string]float64{
				"total": float64(len(group)),
				"score": round2(100 * sum / float64(len(group))),
			}
		})
}

// geographicHubs: brewery count per city within state, ranked
// descending, truncated to the top N. Equal counts order by city
// ascending, then state ascending, so ranking is deterministic.
func geographicHubs(records []contracts.CleanedBrewery, topN int) []contracts.MetricResult {
	results := reduceBy(contracts.MetricGeographicHubs, records, stateCityKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			return map[string]float64{"brewery_count": float64(len(group))}
		})

	sort.Slice(results, func(i, j int) bool {
		ci, cj := results[i].Values["brewery_count"], results[j].Values["brewery_count"]
		if ci != cj {
			return ci > cj
		}
		if results[i].Dimensions["city"] != results[j].Dimensions["city"] {
			return results[i].Dimensions["city"] < results[j].Dimensions["city"]
		}
		return results[i].Dimensions["state"] < results[j].Dimensions["state"]
	})

	if len(results) > topN {
		results = results[:topN]
	}
	for i := range results {
		results[i].Values["rank"] = float64(i + 1)
	}
	return results
}

// breweriesByTypeAndState: plain count per (state, brewery_type)
func breweriesByTypeAndState(records []contracts.CleanedBrewery) []contracts.MetricResult {
	return reduceBy(contracts.MetricTypeByState, records, typeStateKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			return map[string]float64{"count": float64(len(group))}
		})
}

// breweriesByCountryAndType: plain count per (country, brewery_type)
func breweriesByCountryAndType(records []contracts.CleanedBrewery) []contracts.MetricResult {
	return reduceBy(contracts.MetricCountryType, records, countryTypeKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			return map[string]float64{"count": float64(len(group))}
		})
}

// geoCoverageByState: brewery count per (state, city), each row also
// carrying the distinct-city count of its state
func geoCoverageByState(records []contracts.CleanedBrewery) []contracts.MetricResult {
	results := reduceBy(contracts.MetricStateCityCoverage, records, stateCityKey,
		func(group []contracts.CleanedBrewery) map[string]float64 {
			return map[string]float64{"brewery_count": float64(len(group))}
		})

	citiesPerState := make(map[string]float64)
	for _, r := range results {
		citiesPerState[r.Dimensions["state"]]++
	}
	for i := range results {
		results[i].Values["cities_in_state"] = citiesPerState[results[i].Dimensions["state"]]
	}
	return results
}
