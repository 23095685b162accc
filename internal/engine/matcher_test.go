package engine

import (
	"testing"
	"time"

	"github.com/gameops/remoteconfig/internal/rules"
)

func strPtr(s string) *string { return &s }

func instant(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return parsed
}

func timePtr(t *testing.T, s string) *time.Time {
	t.Helper()
	parsed := instant(t, s)
	return &parsed
}

func TestMatches_Platform(t *testing.T) {
	rule := rules.Rule{Platform: strPtr("iOS")}

	tests := []struct {
		name     string
		platform string
		want     bool
	}{
		{name: "exact match", platform: "iOS", want: true},
		{name: "case sensitive", platform: "ios", want: false},
		{name: "different platform", platform: "Android", want: false},
		{name: "absent context value", platform: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Context{Platform: tt.platform, EvaluatedAt: time.Now()}
			if got := Matches(rule, ctx); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_Country(t *testing.T) {
	rule := rules.Rule{Country: strPtr("DE")}

	tests := []struct {
		name    string
		country string
		want    bool
	}{
		{name: "exact match", country: "DE", want: true},
		{name: "lowercase client", country: "de", want: true},
		{name: "different country", country: "US", want: false},
		{name: "absent context value", country: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Context{Country: tt.country, EvaluatedAt: time.Now()}
			if got := Matches(rule, ctx); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_Version(t *testing.T) {
	tests := []struct {
		name    string
		op      rules.VersionOperator
		value   string
		version string
		want    bool
	}{
		{name: "gte equal", op: rules.OpGreaterOrEqual, value: "3.5.0", version: "3.5.0", want: true},
		{name: "gte above", op: rules.OpGreaterOrEqual, value: "3.5.0", version: "4.0.0", want: true},
		{name: "gte below", op: rules.OpGreaterOrEqual, value: "3.5.0", version: "3.4.9", want: false},
		{name: "numeric not lexicographic", op: rules.OpGreaterThan, value: "1.9.9", version: "2.0.0", want: true},
		{name: "equal", op: rules.OpEqual, value: "1.2.3", version: "1.2.3", want: true},
		{name: "not equal", op: rules.OpNotEqual, value: "1.2.3", version: "1.2.4", want: true},
		{name: "less than", op: rules.OpLessThan, value: "2.0.0", version: "1.9.9", want: true},
		{name: "less or equal boundary", op: rules.OpLessOrEqual, value: "2.0.0", version: "2.0.0", want: true},
		{name: "greater than boundary excluded", op: rules.OpGreaterThan, value: "2.0.0", version: "2.0.0", want: false},
		{name: "missing context version", op: rules.OpEqual, value: "1.0.0", version: "", want: false},
		{name: "unparseable context version", op: rules.OpEqual, value: "1.0.0", version: "1.0", want: false},
		{name: "garbage context version", op: rules.OpEqual, value: "1.0.0", version: "latest", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := rules.Rule{Version: &rules.VersionCondition{Operator: tt.op, Value: tt.value}}
			ctx := Context{Version: tt.version, EvaluatedAt: time.Now()}
			if got := Matches(rule, ctx); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_ActiveAfter(t *testing.T) {
	rule := rules.Rule{ActiveAfter: timePtr(t, "2026-02-10T00:00:00Z")}

	tests := []struct {
		name string
		at   string
		want bool
	}{
		{name: "before", at: "2026-02-09T23:59:59Z", want: false},
		{name: "boundary instant is active", at: "2026-02-10T00:00:00Z", want: true},
		{name: "later", at: "2026-02-20T00:00:00Z", want: true},
		{name: "no implicit expiry", at: "2030-01-01T00:00:00Z", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Context{EvaluatedAt: instant(t, tt.at)}
			if got := Matches(rule, ctx); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_ActiveBetween(t *testing.T) {
	rule := rules.Rule{ActiveBetween: &rules.DateWindow{
		Start: instant(t, "2026-02-01T00:00:00Z"),
		End:   instant(t, "2026-02-14T23:59:59Z"),
	}}

	tests := []struct {
		name string
		at   string
		want bool
	}{
		{name: "start boundary inclusive", at: "2026-02-01T00:00:00Z", want: true},
		{name: "end boundary inclusive", at: "2026-02-14T23:59:59Z", want: true},
		{name: "middle", at: "2026-02-07T12:00:00Z", want: true},
		{name: "just before start", at: "2026-01-31T23:59:59Z", want: false},
		{name: "just after end", at: "2026-02-15T00:00:00Z", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := Context{EvaluatedAt: instant(t, tt.at)}
			if got := Matches(rule, ctx); got != tt.want {
				t.Fatalf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMatches_AndSemantics(t *testing.T) {
	rule := rules.Rule{
		Platform: strPtr("iOS"),
		Country:  strPtr("DE"),
	}

	if !Matches(rule, Context{Platform: "iOS", Country: "DE", EvaluatedAt: time.Now()}) {
		t.Error("both conditions satisfied should match")
	}
	if Matches(rule, Context{Platform: "iOS", Country: "US", EvaluatedAt: time.Now()}) {
		t.Error("one failing condition must fail the rule")
	}
	if Matches(rule, Context{Country: "DE", EvaluatedAt: time.Now()}) {
		t.Error("absent platform must fail the rule")
	}
}

func TestMatches_BothDateConditions(t *testing.T) {
	// activeAfter and activeBetween must both hold independently.
	rule := rules.Rule{
		ActiveAfter: timePtr(t, "2026-02-05T00:00:00Z"),
		ActiveBetween: &rules.DateWindow{
			Start: instant(t, "2026-02-01T00:00:00Z"),
			End:   instant(t, "2026-02-14T23:59:59Z"),
		},
	}

	if Matches(rule, Context{EvaluatedAt: instant(t, "2026-02-03T00:00:00Z")}) {
		t.Error("inside window but before activeAfter must not match")
	}
	if !Matches(rule, Context{EvaluatedAt: instant(t, "2026-02-07T00:00:00Z")}) {
		t.Error("inside window and past activeAfter should match")
	}
	if Matches(rule, Context{EvaluatedAt: instant(t, "2026-02-20T00:00:00Z")}) {
		t.Error("past activeAfter but outside window must not match")
	}
}

func TestMatches_NoConditions(t *testing.T) {
	if !Matches(rules.Rule{}, Context{EvaluatedAt: time.Now()}) {
		t.Error("a rule with zero conditions must always match")
	}
	if !Matches(rules.Rule{}, Context{}) {
		t.Error("a rule with zero conditions must match an empty context")
	}
}
