package silver

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmoraes/brewlake/internal/contracts"
	"github.com/dmoraes/brewlake/pkg/config"
	"github.com/dmoraes/brewlake/pkg/logger"
)

func newTestCleaner(workers int) *Cleaner {
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})
	fixed := time.Date(2026, 3, 1, 6, 0, 0, 0, time.UTC)
	return NewCleaner(Config{Workers: workers, Now: func() time.Time { return fixed }}, log)
}

func strPtr(s string) *string { return &s }

func rawRecord(id string, ingested time.Time, mutate ...func(*contracts.RawBrewery)) contracts.RawBrewery {
	raw := contracts.RawBrewery{
		ID:          id,
		Name:        "Brewery " + id,
		BreweryType: "micro",
		Country:     strPtr("United States"),
		State:       strPtr("CA"),
		City:        strPtr("San Diego"),
		IngestedAt:  ingested,
	}
	for _, fn := range mutate {
		fn(&raw)
	}
	return raw
}

func TestClean_RejectsInvalidRecords(t *testing.T) {
	cleaner := newTestCleaner(0)
	now := time.Now()

	raws := []contracts.RawBrewery{
		rawRecord("b-1", now),
		rawRecord("", now), // missing id
		rawRecord("b-2", now, func(r *contracts.RawBrewery) { r.Name = "  " }),   // missing name
		rawRecord("b-3", now, func(r *contracts.RawBrewery) { r.Country = nil }), // missing country
	}

	cleaned, report := cleaner.Clean(raws)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "b-1", cleaned[0].ID)
	assert.Equal(t, 3, report.RejectedCount)
	assert.Len(t, report.Rejections, 3)
	assert.Equal(t, 4, report.InputCount)
	assert.Equal(t, 1, report.OutputCount)
}

func TestClean_DeduplicationLatestWins(t *testing.T) {
	cleaner := newTestCleaner(0)
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	raws := []contracts.RawBrewery{
		rawRecord("b-1", older, func(r *contracts.RawBrewery) { r.City = strPtr("Old Town") }),
		rawRecord("b-1", newer, func(r *contracts.RawBrewery) { r.City = strPtr("New Town") }),
	}

	cleaned, report := cleaner.Clean(raws)

	require.Len(t, cleaned, 1)
	require.NotNil(t, cleaned[0].City)
	assert.Equal(t, "New Town", *cleaned[0].City)
	assert.Equal(t, 1, report.DuplicateCount)
}

func TestClean_DeduplicationCollapsesWhitespaceIDs(t *testing.T) {
	cleaner := newTestCleaner(0)
	older := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(24 * time.Hour)

	// Ids trim to the same value during standardization, so they must
	// dedup as one record rather than colliding after cleaning.
	raws := []contracts.RawBrewery{
		rawRecord("b-1", older, func(r *contracts.RawBrewery) { r.City = strPtr("Old Town") }),
		rawRecord(" b-1 ", newer, func(r *contracts.RawBrewery) { r.City = strPtr("New Town") }),
	}

	cleaned, report := cleaner.Clean(raws)

	require.Len(t, cleaned, 1)
	assert.Equal(t, "b-1", cleaned[0].ID)
	require.NotNil(t, cleaned[0].City)
	assert.Equal(t, "New Town", *cleaned[0].City)
	assert.Equal(t, 1, report.DuplicateCount)
}

func TestClean_DeduplicationFewerNilsBreaksTimestampTie(t *testing.T) {
	cleaner := newTestCleaner(0)
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	sparse := rawRecord("b-1", ts, func(r *contracts.RawBrewery) {
		r.City = nil
		r.State = nil
	})
	dense := rawRecord("b-1", ts, func(r *contracts.RawBrewery) {
		r.Phone = strPtr("(503) 555-1234")
	})

	// Order must not matter
	for _, raws := range [][]contracts.RawBrewery{
		{sparse, dense},
		{dense, sparse},
	} {
		cleaned, _ := cleaner.Clean(raws)
		require.Len(t, cleaned, 1)
		assert.True(t, cleaned[0].HasPhone, "denser snapshot should win the tie")
	}
}

func TestClean_DeduplicationLexicographicFinalTiebreak(t *testing.T) {
	cleaner := newTestCleaner(0)
	ts := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	a := rawRecord("b-1", ts, func(r *contracts.RawBrewery) { r.City = strPtr("Astoria") })
	b := rawRecord("b-1", ts, func(r *contracts.RawBrewery) { r.City = strPtr("Bend") })

	first, _ := cleaner.Clean([]contracts.RawBrewery{a, b})
	second, _ := cleaner.Clean([]contracts.RawBrewery{b, a})

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, *first[0].City, *second[0].City, "winner must not depend on input order")
}

func TestClean_Idempotence(t *testing.T) {
	cleaner := newTestCleaner(0)
	now := time.Now()

	raws := []contracts.RawBrewery{
		rawRecord("b-1", now),
		rawRecord("b-1", now.Add(time.Hour)),
		rawRecord("b-2", now),
		rawRecord("b-3", now, func(r *contracts.RawBrewery) { r.Phone = strPtr("555.123.4567") }),
	}

	once, _ := cleaner.Clean(raws)

	// Feed the cleaned set back as raw equivalents
	again := make([]contracts.RawBrewery, 0, len(once))
	for _, c := range once {
		again = append(again, contracts.RawBrewery{
			ID:          c.ID,
			Name:        c.Name,
			BreweryType: string(c.BreweryType),
			Address1:    c.Address1,
			City:        c.City,
			State:       c.State,
			PostalCode:  c.PostalCode,
			Country:     &c.Country,
			Phone:       c.Phone,
			WebsiteURL:  c.WebsiteURL,
			Longitude:   c.Longitude,
			Latitude:    c.Latitude,
			IngestedAt:  now,
		})
	}

	twice, report := cleaner.Clean(again)

	assert.Equal(t, 0, report.RejectedCount)
	assert.Equal(t, 0, report.DuplicateCount)
	assert.Equal(t, once, twice)
}

func TestClean_UniqueIDs(t *testing.T) {
	cleaner := newTestCleaner(0)
	now := time.Now()

	raws := make([]contracts.RawBrewery, 0, 30)
	for i := 0; i < 10; i++ {
		id := string(rune('a' + i))
		raws = append(raws,
			rawRecord(id, now),
			rawRecord(id, now.Add(time.Minute)),
			rawRecord(id, now.Add(2*time.Minute)),
		)
	}

	cleaned, _ := cleaner.Clean(raws)

	seen := make(map[string]bool)
	for _, record := range cleaned {
		assert.False(t, seen[record.ID], "duplicate id %s in output", record.ID)
		seen[record.ID] = true
	}
	assert.Len(t, cleaned, 10)
}

func TestClean_DeterministicUnderPermutation(t *testing.T) {
	cleaner := newTestCleaner(0)
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	raws := []contracts.RawBrewery{
		rawRecord("b-1", base),
		rawRecord("b-1", base.Add(time.Hour)),
		rawRecord("b-2", base, func(r *contracts.RawBrewery) { r.BreweryType = "TAPROOM" }),
		rawRecord("b-3", base, func(r *contracts.RawBrewery) { r.State = strPtr("or") }),
		rawRecord("b-4", base, func(r *contracts.RawBrewery) { r.Country = strPtr("usa") }),
		rawRecord("", base),
	}

	expected, expectedReport := cleaner.Clean(raws)

	rng := rand.New(rand.NewSource(42))
	for trial := 0; trial < 10; trial++ {
		shuffled := make([]contracts.RawBrewery, len(raws))
		copy(shuffled, raws)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, report := cleaner.Clean(shuffled)
		assert.Equal(t, expected, got, "trial %d: output differs under permutation", trial)
		assert.Equal(t, expectedReport.Warnings, report.Warnings)
		assert.Equal(t, expectedReport.RejectedCount, report.RejectedCount)
	}
}

func TestClean_ParallelMatchesSequential(t *testing.T) {
	sequential := newTestCleaner(0)
	parallel := newTestCleaner(8)
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	raws := make([]contracts.RawBrewery, 0, 200)
	for i := 0; i < 200; i++ {
		id := string(rune('a'+i%26)) + string(rune('0'+i%10))
		raws = append(raws, rawRecord(id, now.Add(time.Duration(i)*time.Minute)))
	}

	seqOut, seqReport := sequential.Clean(raws)
	parOut, parReport := parallel.Clean(raws)

	assert.Equal(t, seqOut, parOut)
	assert.Equal(t, seqReport, parReport)
}

func TestClean_StandardizesTypeAndGeography(t *testing.T) {
	cleaner := newTestCleaner(0)
	now := time.Now()

	raws := []contracts.RawBrewery{
		rawRecord("b-1", now, func(r *contracts.RawBrewery) {
			r.BreweryType = "  Micro "
			r.State = strPtr("ca")
			r.Country = strPtr("usa")
		}),
		rawRecord("b-2", now, func(r *contracts.RawBrewery) {
			r.BreweryType = "beer garden"
		}),
		rawRecord("b-3", now, func(r *contracts.RawBrewery) {
			r.Country = strPtr("Freedonia") // no normalization entry
		}),
	}

	cleaned, report := cleaner.Clean(raws)
	require.Len(t, cleaned, 3)

	assert.Equal(t, contracts.TypeMicro, cleaned[0].BreweryType)
	assert.Equal(t, "California", *cleaned[0].State)
	assert.Equal(t, "United States", cleaned[0].Country)

	// Unrecognized type maps to unknown, never dropped
	assert.Equal(t, contracts.TypeUnknown, cleaned[1].BreweryType)

	// Unmapped country passes through and is flagged
	assert.Equal(t, "Freedonia", cleaned[2].Country)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "Freedonia")
}

func TestClean_FieldRepair(t *testing.T) {
	cleaner := newTestCleaner(0)
	now := time.Now()
	badLon := float64(-200)
	goodLat := float64(45.5)

	raws := []contracts.RawBrewery{
		rawRecord("b-1", now, func(r *contracts.RawBrewery) {
			r.Phone = strPtr("+1 (503) 555-1234")
			r.WebsiteURL = strPtr("brewery.example.com")
			r.PostalCode = strPtr(" 97201-1234 ")
			r.Longitude = &badLon
			r.Latitude = &goodLat
		}),
		rawRecord("b-2", now, func(r *contracts.RawBrewery) {
			r.Phone = strPtr("123") // too short
			r.WebsiteURL = strPtr("not a url")
		}),
		rawRecord("b-3", now, func(r *contracts.RawBrewery) {
			r.Phone = strPtr("") // empty, never kept as placeholder
		}),
	}

	cleaned, _ := cleaner.Clean(raws)
	require.Len(t, cleaned, 3)

	require.NotNil(t, cleaned[0].Phone)
	assert.Equal(t, "15035551234", *cleaned[0].Phone)
	require.NotNil(t, cleaned[0].WebsiteURL)
	assert.Equal(t, "https://brewery.example.com", *cleaned[0].WebsiteURL)
	assert.Equal(t, "97201-1234", *cleaned[0].PostalCode)
	assert.Nil(t, cleaned[0].Longitude)
	require.NotNil(t, cleaned[0].Latitude)
	assert.True(t, cleaned[0].HasPhone)
	assert.True(t, cleaned[0].HasWebsite)

	assert.Nil(t, cleaned[1].Phone)
	assert.Nil(t, cleaned[1].WebsiteURL)
	assert.False(t, cleaned[1].HasPhone)
	assert.False(t, cleaned[1].HasWebsite)

	assert.Nil(t, cleaned[2].Phone)
}

func TestPartitionByType(t *testing.T) {
	cleaner := newTestCleaner(0)
	now := time.Now()

	raws := []contracts.RawBrewery{
		rawRecord("b-1", now),
		rawRecord("b-2", now),
		rawRecord("b-3", now, func(r *contracts.RawBrewery) { r.BreweryType = "brewpub" }),
		rawRecord("b-4", now, func(r *contracts.RawBrewery) { r.BreweryType = "mystery" }),
	}

	cleaned, _ := cleaner.Clean(raws)
	partitions := PartitionByType(cleaned)

	assert.Len(t, partitions[contracts.TypeMicro], 2)
	assert.Len(t, partitions[contracts.TypeBrewpub], 1)
	assert.Len(t, partitions[contracts.TypeUnknown], 1)

	total := 0
	for _, group := range partitions {
		total += len(group)
	}
	assert.Equal(t, len(cleaned), total)
}
