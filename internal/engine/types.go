package engine

import (
	"time"

	"github.com/gameops/remoteconfig/internal/rules"
)

// Reason explains which path produced the resolved value.
type Reason string

const (
	ReasonDefault   Reason = "DEFAULT"
	ReasonRuleMatch Reason = "RULE_MATCH"
)

// Context carries the request attributes a rule's conditions are checked
// against. Platform, Version, and Country are optional; the empty string
// means the caller did not supply the attribute.
//
// EvaluatedAt is the evaluation instant for date-based conditions. It is an
// explicit input, never an ambient clock read: callers pass time.Now() for
// live traffic or a fixed instant for deterministic testing.
type Context struct {
	Platform    string    `json:"platform,omitempty"`
	Version     string    `json:"version,omitempty"`
	Country     string    `json:"country,omitempty"`
	EvaluatedAt time.Time `json:"evaluatedAt"`
}

// Result is the deterministic output of Resolve.
type Result struct {
	Value       rules.Value `json:"value"`
	Reason      Reason      `json:"reason"`
	MatchedRule string      `json:"matchedRule,omitempty"`
}
