package store

import (
	"context"
	"errors"

	"github.com/gameops/remoteconfig/internal/rules"
)

// ErrConfigNotFound is returned when no configuration exists for the
// requested (gameID, key, environment) composite.
var ErrConfigNotFound = errors.New("config not found")

// Store defines the interface for configuration and rule persistence.
// Implementations must be thread-safe and must enforce priority uniqueness
// per configuration at the write boundary: two concurrent rule writes with
// the same priority must not both succeed, regardless of what the caller's
// validation snapshot said.
type Store interface {
	// GetConfig retrieves a configuration by its composite identity.
	// Returns ErrConfigNotFound if it does not exist.
	GetConfig(ctx context.Context, gameID, key, env string) (*rules.Config, error)

	// ListConfigs retrieves all configurations for a game and environment.
	// Returns an empty slice when there are none.
	ListConfigs(ctx context.Context, gameID, env string) ([]rules.Config, error)

	// UpsertConfig creates or updates a configuration and returns the
	// stored record.
	UpsertConfig(ctx context.Context, params UpsertConfigParams) (*rules.Config, error)

	// DeleteConfig removes a configuration and its rules. Idempotent.
	DeleteConfig(ctx context.Context, gameID, key, env string) error

	// ListRules retrieves all rules owned by a configuration, in no
	// particular order; the resolver sorts itself.
	ListRules(ctx context.Context, configID string) ([]rules.Rule, error)

	// CreateRule persists a new rule. Returns rules.ErrDuplicatePriority if
	// the priority is already taken within the configuration.
	CreateRule(ctx context.Context, r rules.Rule) (*rules.Rule, error)

	// UpdateRule replaces the stored rule with the given ID. Returns
	// rules.ErrRuleNotFound if the configuration has no such rule, and
	// rules.ErrDuplicatePriority on a priority collision with another rule.
	UpdateRule(ctx context.Context, r rules.Rule) (*rules.Rule, error)

	// DeleteRule removes a rule. Returns rules.ErrRuleNotFound if the
	// configuration has no such rule.
	DeleteRule(ctx context.Context, configID, ruleID string) error

	// Close releases any resources held by the store.
	Close() error
}

// UpsertConfigParams contains the parameters for upserting a configuration.
// Value is raw JSON and is coerced against DataType before storage.
type UpsertConfigParams struct {
	GameID      string         `json:"gameId"`
	Key         string         `json:"key"`
	Environment string         `json:"environment"`
	DataType    rules.DataType `json:"dataType"`
	Value       rules.Value    `json:"value"`
}
