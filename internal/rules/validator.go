package rules

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors returned by ValidateRule and the storage layer.
var (
	ErrTypeMismatch         = errors.New("type mismatch")
	ErrDuplicatePriority    = errors.New("duplicate priority")
	ErrInvalidCountryCode   = errors.New("invalid country code")
	ErrInvalidDateRange     = errors.New("invalid date range")
	ErrInvalidVersionFormat = errors.New("invalid version format")
	ErrRuleNotFound         = errors.New("rule not found")
)

// RuleCandidate is the not-yet-persisted shape of a rule, as received from
// the admin surface. OverrideValue arrives as raw JSON and is coerced against
// the owning configuration's data type during validation.
type RuleCandidate struct {
	// ID is empty on create. On update it carries the target rule's ID so
	// the priority check skips the rule being updated.
	ID            string            `json:"id,omitempty"`
	Priority      int               `json:"priority"`
	OverrideValue json.RawMessage   `json:"overrideValue"`
	Enabled       bool              `json:"enabled"`
	Platform      *string           `json:"platform,omitempty"`
	Version       *VersionCondition `json:"version,omitempty"`
	Country       *string           `json:"country,omitempty"`
	ActiveAfter   *time.Time        `json:"activeAfter,omitempty"`
	ActiveBetween *DateWindow       `json:"activeBetween,omitempty"`
}

// ValidateRule checks a candidate rule against the write-time invariants and
// returns the coerced override value on success. It is a pure function: no
// storage access, no mutation of its arguments.
//
// Policy: first failure wins. Checks run in a fixed order (type, priority,
// country, date range, version) and the first violated invariant is returned
// as a wrapped sentinel error.
//
// The priority check compares against the snapshot in existing; under
// concurrent writers the storage layer must still enforce uniqueness (unique
// constraint or per-configuration lock), since a snapshot check alone cannot
// close the time-of-check/time-of-use window.
func ValidateRule(c RuleCandidate, existing []Rule, dt DataType) (Value, error) {
	v, err := CoerceValue(dt, c.OverrideValue)
	if err != nil {
		return Value{}, err
	}

	for _, r := range existing {
		if r.ID != c.ID && r.Priority == c.Priority {
			return Value{}, fmt.Errorf("%w: priority %d is taken by rule %s", ErrDuplicatePriority, c.Priority, r.ID)
		}
	}

	if c.Country != nil && !ValidCountryCode(*c.Country) {
		return Value{}, fmt.Errorf("%w: %q is not an ISO 3166-1 alpha-2 code", ErrInvalidCountryCode, *c.Country)
	}

	if c.ActiveBetween != nil && !c.ActiveBetween.End.After(c.ActiveBetween.Start) {
		return Value{}, fmt.Errorf("%w: end %s is not after start %s",
			ErrInvalidDateRange,
			c.ActiveBetween.End.Format(time.RFC3339),
			c.ActiveBetween.Start.Format(time.RFC3339))
	}

	if c.Version != nil {
		if !ValidVersionOperator(c.Version.Operator) {
			return Value{}, fmt.Errorf("%w: unknown operator %q", ErrInvalidVersionFormat, c.Version.Operator)
		}
		if !ValidVersion(c.Version.Value) {
			return Value{}, fmt.Errorf("%w: %q is not MAJOR.MINOR.PATCH", ErrInvalidVersionFormat, c.Version.Value)
		}
	}

	return v, nil
}
