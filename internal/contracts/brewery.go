package contracts

import (
	"strings"
	"time"
)

// BreweryType is the canonical brewery classification
type BreweryType string

const (
	TypeMicro      BreweryType = "micro"
	TypeNano       BreweryType = "nano"
	TypeRegional   BreweryType = "regional"
	TypeBrewpub    BreweryType = "brewpub"
	TypeLarge      BreweryType = "large"
	TypePlanning   BreweryType = "planning"
	TypeBar        BreweryType = "bar"
	TypeContract   BreweryType = "contract"
	TypeProprietor BreweryType = "proprietor"
	TypeClosed     BreweryType = "closed"
	TypeUnknown    BreweryType = "unknown"
)

// AllBreweryTypes returns every canonical type, unknown included
func AllBreweryTypes() []BreweryType {
	return []BreweryType{
		TypeMicro, TypeNano, TypeRegional, TypeBrewpub, TypeLarge,
		TypePlanning, TypeBar, TypeContract, TypeProprietor, TypeClosed,
		TypeUnknown,
	}
}

// ParseBreweryType case-folds a raw value against the canonical set.
// Unrecognized values map to unknown, never to an error.
func ParseBreweryType(raw string) BreweryType {
	folded := strings.ToLower(strings.TrimSpace(raw))
	for _, t := range AllBreweryTypes() {
		if folded == string(t) {
			return t
		}
	}
	return TypeUnknown
}

// String returns the type name
func (t BreweryType) String() string {
	return string(t)
}

// IsValid checks membership in the canonical set
func (t BreweryType) IsValid() bool {
	for _, known := range AllBreweryTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// RawBrewery is a record as fetched from the Open Brewery DB API.
// Fields mirror the API payload; optional fields stay nil when absent.
// IngestedAt is stamped by the bronze ingestor and drives the
// last-write-wins deduplication rule in the cleaning engine.
type RawBrewery struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	BreweryType string     `json:"brewery_type"`
	Address1    *string    `json:"address_1"`
	City        *string    `json:"city"`
	State       *string    `json:"state"`
	PostalCode  *string    `json:"postal_code"`
	Country     *string    `json:"country"`
	Phone       *string    `json:"phone"`
	WebsiteURL  *string    `json:"website_url"`
	Longitude   *float64   `json:"longitude"`
	Latitude    *float64   `json:"latitude"`
	IngestedAt  time.Time  `json:"ingested_at"`
}

// NilFieldCount counts absent optional fields.
// Used as the second deduplication tiebreaker: prefer the snapshot
// carrying more information.
func (r *RawBrewery) NilFieldCount() int {
	count := 0
	if r.Address1 == nil {
		count++
	}
	if r.City == nil {
		count++
	}
	if r.State == nil {
		count++
	}
	if r.PostalCode == nil {
		count++
	}
	if r.Country == nil {
		count++
	}
	if r.Phone == nil {
		count++
	}
	if r.WebsiteURL == nil {
		count++
	}
	if r.Longitude == nil {
		count++
	}
	if r.Latitude == nil {
		count++
	}
	return count
}

// CleanedBrewery is the canonical silver-layer record.
// Invariants: ID unique within a cleaned set, BreweryType in the
// canonical set, State/Country normalized, Phone/WebsiteURL either
// syntactically valid or nil, derived flags consistent with fields.
type CleanedBrewery struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	BreweryType BreweryType `json:"brewery_type"`
	Address1    *string     `json:"address_1"`
	City        *string     `json:"city"`
	State       *string     `json:"state"`
	PostalCode  *string     `json:"postal_code"`
	Country     string      `json:"country"`
	Phone       *string     `json:"phone"`
	WebsiteURL  *string     `json:"website_url"`
	Longitude   *float64    `json:"longitude"`
	Latitude    *float64    `json:"latitude"`

	// Derived at cleaning time, true iff the field is non-nil and valid
	HasPhone   bool `json:"has_phone"`
	HasWebsite bool `json:"has_website"`
	HasAddress bool `json:"has_address"`

	ProcessedAt time.Time `json:"processed_at"`
}

// CompletenessScore is the per-record contact completeness over the
// three critical fields, in [0, 1]
func (c *CleanedBrewery) CompletenessScore() float64 {
	score := 0.0
	if c.HasAddress {
		score++
	}
	if c.HasPhone {
		score++
	}
	if c.HasWebsite {
		score++
	}
	return score / 3.0
}
