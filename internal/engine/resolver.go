package engine

import (
	"sort"

	"github.com/gameops/remoteconfig/internal/rules"
)

// Resolve picks the value a client should receive for cfg: disabled rules are
// dropped, the rest are ordered by priority ascending (lower priority value
// wins), and the first rule whose conditions match the context supplies the
// override. When nothing matches, the configuration's base value is returned.
//
// Resolve is a pure function of its inputs. Rules are trusted to have passed
// write-time validation; nothing is re-validated here. Duplicate priorities
// are a data-integrity fault upstream. If one slips through, ties break by
// rule creation time, then rule ID, so the outcome stays deterministic.
func Resolve(cfg rules.Config, ruleSet []rules.Rule, ctx Context) Result {
	candidates := make([]rules.Rule, 0, len(ruleSet))
	for _, r := range ruleSet {
		if r.Enabled {
			candidates = append(candidates, r)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	for _, r := range candidates {
		if Matches(r, ctx) {
			return Result{
				Value:       r.OverrideValue,
				Reason:      ReasonRuleMatch,
				MatchedRule: r.ID,
			}
		}
	}

	return Result{Value: cfg.Value, Reason: ReasonDefault}
}
