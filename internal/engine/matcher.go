package engine

import (
	"strings"

	"github.com/gameops/remoteconfig/internal/rules"
)

// Matches reports whether every condition the rule declares holds against
// the context. A rule with no conditions always matches, acting as a
// catch-all override at its priority.
//
// A present condition whose context attribute is absent (or unparseable, for
// versions) evaluates false. Conditions are combined with AND; there is no
// OR or negation across condition types.
func Matches(rule rules.Rule, ctx Context) bool {
	if rule.Platform != nil && !platformMatches(*rule.Platform, ctx.Platform) {
		return false
	}
	if rule.Version != nil && !versionMatches(*rule.Version, ctx.Version) {
		return false
	}
	if rule.Country != nil && !countryMatches(*rule.Country, ctx.Country) {
		return false
	}
	if rule.ActiveAfter != nil && ctx.EvaluatedAt.Before(*rule.ActiveAfter) {
		return false
	}
	if rule.ActiveBetween != nil && !windowContains(*rule.ActiveBetween, ctx) {
		return false
	}
	return true
}

// platformMatches is case-sensitive exact equality ("iOS" != "ios").
func platformMatches(want, got string) bool {
	return got != "" && got == want
}

// countryMatches is case-insensitive: write-time validation guarantees the
// rule side is an uppercase ISO code, but clients send whatever casing their
// locale APIs produce.
func countryMatches(want, got string) bool {
	return got != "" && strings.EqualFold(got, want)
}

func versionMatches(cond rules.VersionCondition, got string) bool {
	if got == "" {
		return false
	}
	cmp, err := rules.CompareVersions(got, cond.Value)
	if err != nil {
		return false
	}
	switch cond.Operator {
	case rules.OpEqual:
		return cmp == 0
	case rules.OpNotEqual:
		return cmp != 0
	case rules.OpGreaterThan:
		return cmp > 0
	case rules.OpGreaterOrEqual:
		return cmp >= 0
	case rules.OpLessThan:
		return cmp < 0
	case rules.OpLessOrEqual:
		return cmp <= 0
	default:
		return false
	}
}

// windowContains treats the window as closed on both ends: the boundary
// instants themselves are active, one instant past the end is not.
func windowContains(w rules.DateWindow, ctx Context) bool {
	return !ctx.EvaluatedAt.Before(w.Start) && !ctx.EvaluatedAt.After(w.End)
}
