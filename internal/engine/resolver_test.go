package engine

import (
	"testing"
	"time"

	"github.com/gameops/remoteconfig/internal/rules"
)

func numberConfig(key string, v float64) rules.Config {
	return rules.Config{
		ID:          "cfg-" + key,
		GameID:      "game-1",
		Key:         key,
		Environment: "production",
		DataType:    rules.TypeNumber,
		Value:       rules.NumberValue(v),
	}
}

func TestResolve_DefaultWhenNoRules(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)

	res := Resolve(cfg, nil, Context{EvaluatedAt: time.Now()})
	if res.Reason != ReasonDefault {
		t.Fatalf("Reason = %s, want %s", res.Reason, ReasonDefault)
	}
	if res.Value.Number() != 100 {
		t.Fatalf("Value = %v, want 100", res.Value.Number())
	}
	if res.MatchedRule != "" {
		t.Fatalf("MatchedRule = %q, want empty", res.MatchedRule)
	}
}

func TestResolve_DefaultWhenNothingMatches(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)
	ruleSet := []rules.Rule{
		{ID: "r1", Priority: 1, Enabled: true, Platform: strPtr("iOS"), OverrideValue: rules.NumberValue(200)},
	}

	res := Resolve(cfg, ruleSet, Context{Platform: "Android", EvaluatedAt: time.Now()})
	if res.Reason != ReasonDefault {
		t.Fatalf("Reason = %s, want %s", res.Reason, ReasonDefault)
	}
	if res.Value.Number() != 100 {
		t.Fatalf("Value = %v, want 100", res.Value.Number())
	}
}

func TestResolve_PriorityOrderNotDeclarationOrder(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)

	// Declared high-priority-value first; the lower priority value still wins.
	ruleSet := []rules.Rule{
		{ID: "r-late", Priority: 10, Enabled: true, OverrideValue: rules.NumberValue(400)},
		{ID: "r-early", Priority: 1, Enabled: true, OverrideValue: rules.NumberValue(300)},
	}

	res := Resolve(cfg, ruleSet, Context{EvaluatedAt: time.Now()})
	if res.Reason != ReasonRuleMatch {
		t.Fatalf("Reason = %s, want %s", res.Reason, ReasonRuleMatch)
	}
	if res.MatchedRule != "r-early" {
		t.Fatalf("MatchedRule = %q, want r-early", res.MatchedRule)
	}
	if res.Value.Number() != 300 {
		t.Fatalf("Value = %v, want 300", res.Value.Number())
	}
}

func TestResolve_FirstMatchStopsEvaluation(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)
	ruleSet := []rules.Rule{
		{ID: "r1", Priority: 1, Enabled: true, Country: strPtr("DE"), OverrideValue: rules.NumberValue(300)},
		{ID: "r2", Priority: 10, Enabled: true, Country: strPtr("DE"), OverrideValue: rules.NumberValue(999)},
	}

	res := Resolve(cfg, ruleSet, Context{Country: "DE", EvaluatedAt: time.Now()})
	if res.MatchedRule != "r1" {
		t.Fatalf("MatchedRule = %q, want r1", res.MatchedRule)
	}
	if res.Value.Number() != 300 {
		t.Fatalf("Value = %v, want 300", res.Value.Number())
	}
}

func TestResolve_DisabledRulesIgnored(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)
	ruleSet := []rules.Rule{
		{ID: "r1", Priority: 1, Enabled: false, OverrideValue: rules.NumberValue(300)},
		{ID: "r2", Priority: 10, Enabled: true, OverrideValue: rules.NumberValue(400)},
	}

	res := Resolve(cfg, ruleSet, Context{EvaluatedAt: time.Now()})
	if res.MatchedRule != "r2" {
		t.Fatalf("MatchedRule = %q, want r2", res.MatchedRule)
	}
	if res.Value.Number() != 400 {
		t.Fatalf("Value = %v, want 400", res.Value.Number())
	}
}

func TestResolve_DuplicatePriorityTieBreak(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)
	earlier := instant(t, "2026-01-01T00:00:00Z")
	later := instant(t, "2026-01-02T00:00:00Z")

	ruleSet := []rules.Rule{
		{ID: "r-b", Priority: 5, Enabled: true, CreatedAt: later, OverrideValue: rules.NumberValue(2)},
		{ID: "r-a", Priority: 5, Enabled: true, CreatedAt: earlier, OverrideValue: rules.NumberValue(1)},
	}

	res := Resolve(cfg, ruleSet, Context{EvaluatedAt: time.Now()})
	if res.MatchedRule != "r-a" {
		t.Fatalf("MatchedRule = %q, want the earlier-created r-a", res.MatchedRule)
	}

	// Same creation time: the smaller ID wins.
	ruleSet[0].CreatedAt = earlier
	res = Resolve(cfg, ruleSet, Context{EvaluatedAt: time.Now()})
	if res.MatchedRule != "r-a" {
		t.Fatalf("MatchedRule = %q, want r-a by ID tie-break", res.MatchedRule)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)
	ruleSet := []rules.Rule{
		{ID: "r1", Priority: 3, Enabled: true, Platform: strPtr("iOS"), OverrideValue: rules.NumberValue(1)},
		{ID: "r2", Priority: 1, Enabled: true, Country: strPtr("DE"), OverrideValue: rules.NumberValue(2)},
		{ID: "r3", Priority: 2, Enabled: true, OverrideValue: rules.NumberValue(3)},
	}
	ctx := Context{Platform: "iOS", Country: "DE", EvaluatedAt: instant(t, "2026-02-07T12:00:00Z")}

	first := Resolve(cfg, ruleSet, ctx)
	for i := 0; i < 50; i++ {
		got := Resolve(cfg, ruleSet, ctx)
		if got.Reason != first.Reason || got.MatchedRule != first.MatchedRule || got.Value.Number() != first.Value.Number() {
			t.Fatalf("run %d: Resolve() = %+v, want %+v", i, got, first)
		}
	}
}

// Seasonal campaign scenario: a country-scoped event rule outranks a
// broader platform rule, and everyone else falls through to the default.
func TestResolve_CampaignScenario(t *testing.T) {
	cfg := numberConfig("daily_reward_coins", 100)

	ruleSet := []rules.Rule{
		{
			ID:            "rule-event",
			Priority:      1,
			Enabled:       true,
			Country:       strPtr("DE"),
			OverrideValue: rules.NumberValue(300),
			ActiveBetween: &rules.DateWindow{
				Start: instant(t, "2026-02-01T00:00:00Z"),
				End:   instant(t, "2026-02-14T23:59:59Z"),
			},
		},
		{
			ID:            "rule-ios-de",
			Priority:      10,
			Enabled:       true,
			Platform:      strPtr("iOS"),
			Country:       strPtr("DE"),
			OverrideValue: rules.NumberValue(400),
		},
	}

	tests := []struct {
		name      string
		ctx       Context
		wantValue float64
		wantRule  string
	}{
		{
			name:      "german iOS player during the event gets the event value",
			ctx:       Context{Platform: "iOS", Country: "DE", EvaluatedAt: instant(t, "2026-02-07T12:00:00Z")},
			wantValue: 300,
			wantRule:  "rule-event",
		},
		{
			name:      "german iOS player after the event falls to the platform rule",
			ctx:       Context{Platform: "iOS", Country: "DE", EvaluatedAt: instant(t, "2026-03-01T00:00:00Z")},
			wantValue: 400,
			wantRule:  "rule-ios-de",
		},
		{
			name:      "american player gets the default",
			ctx:       Context{Platform: "iOS", Country: "US", EvaluatedAt: instant(t, "2026-02-07T12:00:00Z")},
			wantValue: 100,
		},
		{
			name:      "german android player during the event gets the event value",
			ctx:       Context{Platform: "Android", Country: "DE", EvaluatedAt: instant(t, "2026-02-07T12:00:00Z")},
			wantValue: 300,
			wantRule:  "rule-event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve(cfg, ruleSet, tt.ctx)
			if res.Value.Number() != tt.wantValue {
				t.Fatalf("Value = %v, want %v", res.Value.Number(), tt.wantValue)
			}
			if res.MatchedRule != tt.wantRule {
				t.Fatalf("MatchedRule = %q, want %q", res.MatchedRule, tt.wantRule)
			}
			wantReason := ReasonRuleMatch
			if tt.wantRule == "" {
				wantReason = ReasonDefault
			}
			if res.Reason != wantReason {
				t.Fatalf("Reason = %s, want %s", res.Reason, wantReason)
			}
		})
	}
}
