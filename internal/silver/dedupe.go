package silver

import (
	"encoding/json"
	"sort"

	"github.com/dmoraes/brewlake/internal/contracts"
)

// deduplicate picks one winner per id. The rule is deterministic
// regardless of input order, so parallel and sequential runs agree:
//  1. latest ingestion timestamp wins
//  2. tie: fewer nil fields wins
//  3. tie: lexicographically smallest canonical JSON serialization
func deduplicate(records []contracts.RawBrewery) []contracts.RawBrewery {
	// Group on the trimmed id: standardization trims ids later, so
	// "abc" and " abc" are the same brewery and must share one winner.
	byID := make(map[string]contracts.RawBrewery, len(records))
	for _, record := range records {
		key := trim(record.ID)
		current, exists := byID[key]
		if !exists || wins(&record, &current) {
			byID[key] = record
		}
	}

	winners := make([]contracts.RawBrewery, 0, len(byID))
	for _, record := range byID {
		winners = append(winners, record)
	}
	sort.Slice(winners, func(i, j int) bool { return trim(winners[i].ID) < trim(winners[j].ID) })
	return winners
}

// wins reports whether candidate beats current under the tiebreak rule
func wins(candidate, current *contracts.RawBrewery) bool {
	if !candidate.IngestedAt.Equal(current.IngestedAt) {
		return candidate.IngestedAt.After(current.IngestedAt)
	}

	candidateNils := candidate.NilFieldCount()
	currentNils := current.NilFieldCount()
	if candidateNils != currentNils {
		return candidateNils < currentNils
	}

	return canonicalForm(candidate) < canonicalForm(current)
}

// canonicalForm serializes a record for the final tiebreak. JSON
// struct field order is fixed, so equal records serialize equally.
func canonicalForm(record *contracts.RawBrewery) string {
	data, err := json.Marshal(record)
	if err != nil {
		// Marshal of a plain struct cannot fail; fall back to id
		return record.ID
	}
	return string(data)
}
