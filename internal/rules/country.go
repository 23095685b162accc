package rules

import (
	"regexp"

	"github.com/biter777/countries"
)

// countryPattern matches exactly two uppercase ASCII letters.
var countryPattern = regexp.MustCompile(`^[A-Z]{2}$`)

// ValidCountryCode reports whether code is a recognised ISO 3166-1 alpha-2
// country code. The shape check (two uppercase letters) runs first so that
// lowercase or three-letter input is rejected before the dataset lookup.
// IsValid covers both lookup-failure sentinels (Unknown and None), so
// well-shaped but unassigned codes like "XX" are rejected too.
func ValidCountryCode(code string) bool {
	if !countryPattern.MatchString(code) {
		return false
	}
	return countries.ByName(code).IsValid()
}
