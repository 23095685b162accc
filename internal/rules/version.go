package rules

import (
	"fmt"
	"regexp"

	"github.com/Masterminds/semver/v3"
)

// versionPattern matches exactly three non-negative integers separated by
// two dots. Prerelease and build-metadata suffixes are not accepted.
var versionPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// ValidVersion reports whether s is a strict MAJOR.MINOR.PATCH version.
func ValidVersion(s string) bool {
	return versionPattern.MatchString(s)
}

// CompareVersions compares two strict MAJOR.MINOR.PATCH versions by dotted
// component ordering ("2.0.0" > "1.9.9"). It returns -1, 0, or 1, or an
// error if either side is not a valid version.
func CompareVersions(a, b string) (int, error) {
	if !ValidVersion(a) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, a)
	}
	if !ValidVersion(b) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, b)
	}
	va, err := semver.StrictNewVersion(a)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, a)
	}
	vb, err := semver.StrictNewVersion(b)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidVersionFormat, b)
	}
	return va.Compare(vb), nil
}

// validVersionOperators is the set of all recognised version operators.
var validVersionOperators = map[VersionOperator]struct{}{
	OpEqual:          {},
	OpNotEqual:       {},
	OpGreaterThan:    {},
	OpGreaterOrEqual: {},
	OpLessThan:       {},
	OpLessOrEqual:    {},
}

// ValidVersionOperator reports whether op is a recognised operator.
func ValidVersionOperator(op VersionOperator) bool {
	_, ok := validVersionOperators[op]
	return ok
}
