package rules

import "time"

// VersionOperator represents a comparison operator used in version conditions.
type VersionOperator string

// Supported version operators (string values for clean JSON serialization).
const (
	OpEqual          VersionOperator = "equal"
	OpNotEqual       VersionOperator = "not_equal"
	OpGreaterThan    VersionOperator = "greater_than"
	OpGreaterOrEqual VersionOperator = "greater_or_equal"
	OpLessThan       VersionOperator = "less_than"
	OpLessOrEqual    VersionOperator = "less_or_equal"
)

// VersionCondition compares the client version against a fixed
// MAJOR.MINOR.PATCH value using the declared operator.
type VersionCondition struct {
	Operator VersionOperator `json:"operator"`
	Value    string          `json:"value"`
}

// DateWindow is a closed interval of time. Both boundary instants count
// as inside the window.
type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Rule is a prioritized override attached to one configuration.
// All present conditions are combined with AND semantics: every declared
// condition must match for the rule to apply. A rule with no conditions
// matches every request at its priority.
type Rule struct {
	ID            string            `json:"id"`
	ConfigID      string            `json:"configId"`
	Priority      int               `json:"priority"`
	OverrideValue Value             `json:"overrideValue"`
	Enabled       bool              `json:"enabled"`
	Platform      *string           `json:"platform,omitempty"`
	Version       *VersionCondition `json:"version,omitempty"`
	Country       *string           `json:"country,omitempty"`
	ActiveAfter   *time.Time        `json:"activeAfter,omitempty"`
	ActiveBetween *DateWindow       `json:"activeBetween,omitempty"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

// Config is a named, typed settable value scoped to a game and environment.
// Identity is the (GameID, Key, Environment) composite; ID is the storage
// surrogate key that rules reference.
type Config struct {
	ID          string    `json:"id"`
	GameID      string    `json:"gameId"`
	Key         string    `json:"key"`
	Environment string    `json:"environment"`
	DataType    DataType  `json:"dataType"`
	Value       Value     `json:"value"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
