package silver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeState(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		country   string
		want      string
		wantKnown bool
	}{
		{name: "abbreviation", raw: "CA", country: "United States", want: "California", wantKnown: true},
		{name: "lowercase abbreviation", raw: "or", country: "United States", want: "Oregon", wantKnown: true},
		{name: "full name", raw: "new york", country: "United States", want: "New York", wantKnown: true},
		{name: "already canonical", raw: "Texas", country: "United States", want: "Texas", wantKnown: true},
		{name: "unmapped US value", raw: "Cascadia", country: "United States", want: "Cascadia", wantKnown: false},
		{name: "non-US passes through", raw: "Bayern", country: "Germany", want: "Bayern", wantKnown: true},
		{name: "trims whitespace", raw: "  WA ", country: "United States", want: "Washington", wantKnown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := NormalizeState(tt.raw, tt.country)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestNormalizeCountry(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		want      string
		wantKnown bool
	}{
		{name: "canonical", raw: "United States", want: "United States", wantKnown: true},
		{name: "abbreviation", raw: "USA", want: "United States", wantKnown: true},
		{name: "long form", raw: "united states of america", want: "United States", wantKnown: true},
		{name: "uk variant", raw: "UK", want: "United Kingdom", wantKnown: true},
		{name: "unmapped passes through", raw: "Atlantis", want: "Atlantis", wantKnown: false},
		{name: "trims whitespace", raw: " South Korea ", want: "South Korea", wantKnown: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, known := NormalizeCountry(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKnown, known)
		})
	}
}

func TestRepairPhone(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want *string
	}{
		{name: "nil stays nil", raw: nil, want: nil},
		{name: "separators stripped", raw: strPtr("(503) 555-1234"), want: strPtr("5035551234")},
		{name: "international prefix", raw: strPtr("+44 20 7946 0958"), want: strPtr("442079460958")},
		{name: "too short becomes nil", raw: strPtr("911")},
		{name: "too long becomes nil", raw: strPtr("1234567890123456")},
		{name: "empty string becomes nil", raw: strPtr("")},
		{name: "letters only becomes nil", raw: strPtr("call us")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairPhone(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestRepairWebsiteURL(t *testing.T) {
	tests := []struct {
		name string
		raw  *string
		want *string
	}{
		{name: "nil stays nil", raw: nil, want: nil},
		{name: "already valid", raw: strPtr("http://brewery.example.com"), want: strPtr("http://brewery.example.com")},
		{name: "scheme added", raw: strPtr("brewery.example.com"), want: strPtr("https://brewery.example.com")},
		{name: "path preserved", raw: strPtr("https://example.com/taproom"), want: strPtr("https://example.com/taproom")},
		{name: "empty becomes nil", raw: strPtr("  ")},
		{name: "no host becomes nil", raw: strPtr("https://")},
		{name: "bare word becomes nil", raw: strPtr("website")},
		{name: "non-http scheme becomes nil", raw: strPtr("ftp://example.com")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := repairWebsiteURL(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestCoordinateValidation(t *testing.T) {
	lon := func(v float64) *float64 { return &v }

	assert.Nil(t, validLongitude(nil))
	assert.Nil(t, validLongitude(lon(-180.5)))
	assert.Nil(t, validLongitude(lon(181)))
	assert.NotNil(t, validLongitude(lon(-122.67)))

	assert.Nil(t, validLatitude(nil))
	assert.Nil(t, validLatitude(lon(-91)))
	assert.Nil(t, validLatitude(lon(90.1)))
	assert.NotNil(t, validLatitude(lon(45.52)))
}

func TestNormalizePostalCode(t *testing.T) {
	assert.Nil(t, normalizePostalCode(nil))
	assert.Nil(t, normalizePostalCode(strPtr("   ")))

	got := normalizePostalCode(strPtr(" v6b 2m1 "))
	require.NotNil(t, got)
	assert.Equal(t, "V6B 2M1", *got)
}
