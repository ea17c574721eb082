package silver

import (
	"net/url"
	"strings"
	"unicode"
)

// Normalization tables. Keys are case-folded lookups; values are the
// single canonical spelling. Values absent from the tables pass
// through trimmed, flagged as a warning by the caller.

// usStates maps both postal abbreviations and case-folded full names
// to the canonical full name.
var usStates = map[string]string{
	"al": "Alabama", "ak": "Alaska", "az": "Arizona", "ar": "Arkansas",
	"ca": "California", "co": "Colorado", "ct": "Connecticut",
	"de": "Delaware", "fl": "Florida", "ga": "Georgia", "hi": "Hawaii",
	"id": "Idaho", "il": "Illinois", "in": "Indiana", "ia": "Iowa",
	"ks": "Kansas", "ky": "Kentucky", "la": "Louisiana", "me": "Maine",
	"md": "Maryland", "ma": "Massachusetts", "mi": "Michigan",
	"mn": "Minnesota", "ms": "Mississippi", "mo": "Missouri",
	"mt": "Montana", "ne": "Nebraska", "nv": "Nevada",
	"nh": "New Hampshire", "nj": "New Jersey", "nm": "New Mexico",
	"ny": "New York", "nc": "North Carolina", "nd": "North Dakota",
	"oh": "Ohio", "ok": "Oklahoma", "or": "Oregon", "pa": "Pennsylvania",
	"ri": "Rhode Island", "sc": "South Carolina", "sd": "South Dakota",
	"tn": "Tennessee", "tx": "Texas", "ut": "Utah", "vt": "Vermont",
	"va": "Virginia", "wa": "Washington", "wv": "West Virginia",
	"wi": "Wisconsin", "wy": "Wyoming", "dc": "District of Columbia",
}

// countries maps variant spellings seen in the source data to one
// canonical name.
var countries = map[string]string{
	"united states":            "United States",
	"united states of america": "United States",
	"usa":                      "United States",
	"us":                       "United States",
	"england":                  "England",
	"united kingdom":           "United Kingdom",
	"uk":                       "United Kingdom",
	"scotland":                 "Scotland",
	"ireland":                  "Ireland",
	"austria":                  "Austria",
	"france":                   "France",
	"isle of man":              "Isle of Man",
	"poland":                   "Poland",
	"portugal":                 "Portugal",
	"south korea":              "South Korea",
	"singapore":                "Singapore",
	"japan":                    "Japan",
	"germany":                  "Germany",
	"canada":                   "Canada",
	"mexico":                   "Mexico",
	"brazil":                   "Brazil",
	"australia":                "Australia",
	"new zealand":              "New Zealand",
	"netherlands":              "Netherlands",
	"belgium":                  "Belgium",
	"czech republic":           "Czech Republic",
	"denmark":                  "Denmark",
	"norway":                   "Norway",
	"sweden":                   "Sweden",
	"finland":                  "Finland",
	"italy":                    "Italy",
	"spain":                    "Spain",
	"switzerland":              "Switzerland",
	"taiwan":                   "Taiwan",
}

// fullStateNames is derived from usStates so full names also resolve
var fullStateNames = func() map[string]string {
	m := make(map[string]string, len(usStates))
	for _, full := range usStates {
		m[strings.ToLower(full)] = full
	}
	return m
}()

// NormalizeCountry maps a raw country value to its canonical spelling.
// Returns the value (trimmed) and whether a table entry matched.
func NormalizeCountry(raw string) (string, bool) {
	trimmed := trim(raw)
	if canonical, ok := countries[strings.ToLower(trimmed)]; ok {
		return canonical, true
	}
	return trimmed, false
}

// NormalizeState maps a raw state value to its canonical spelling.
// Only United States records consult the abbreviation table; other
// countries pass through trimmed and are treated as known, since no
// table exists for them.
func NormalizeState(raw, country string) (string, bool) {
	trimmed := trim(raw)
	if country != "United States" {
		return trimmed, true
	}

	lower := strings.ToLower(trimmed)
	if canonical, ok := usStates[lower]; ok {
		return canonical, true
	}
	if canonical, ok := fullStateNames[lower]; ok {
		return canonical, true
	}
	return trimmed, false
}

// repairPhone strips separators and keeps the value only when the
// digit count is plausible (7-15, E.164 upper bound). Anything else
// becomes nil rather than staying malformed.
func repairPhone(raw *string) *string {
	if raw == nil {
		return nil
	}

	var digits strings.Builder
	for _, r := range *raw {
		if unicode.IsDigit(r) {
			digits.WriteRune(r)
		}
	}

	cleaned := digits.String()
	if len(cleaned) < 7 || len(cleaned) > 15 {
		return nil
	}
	return &cleaned
}

// repairWebsiteURL prefixes a default scheme when missing and drops
// values that still do not parse as absolute http(s) URLs.
func repairWebsiteURL(raw *string) *string {
	if raw == nil {
		return nil
	}

	candidate := trim(*raw)
	if candidate == "" {
		return nil
	}

	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return nil
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil
	}
	if parsed.Host == "" || !strings.Contains(parsed.Host, ".") {
		return nil
	}

	return &candidate
}

// normalizePostalCode trims and upper-cases postal codes
func normalizePostalCode(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := strings.ToUpper(trim(*raw))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// validLongitude nils out-of-range coordinates
func validLongitude(raw *float64) *float64 {
	if raw == nil || *raw < -180 || *raw > 180 {
		return nil
	}
	return raw
}

// validLatitude nils out-of-range coordinates
func validLatitude(raw *float64) *float64 {
	if raw == nil || *raw < -90 || *raw > 90 {
		return nil
	}
	return raw
}

func trim(s string) string {
	return strings.TrimSpace(s)
}

// trimPtr trims a nullable string, collapsing whitespace-only to nil
func trimPtr(raw *string) *string {
	if raw == nil {
		return nil
	}
	cleaned := trim(*raw)
	if cleaned == "" {
		return nil
	}
	return &cleaned
}
