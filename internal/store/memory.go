package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gameops/remoteconfig/internal/rules"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses maps guarded by an RWMutex; the mutex is also what serializes
// rule writes per configuration, making the duplicate-priority check
// race-safe without a database constraint. Suitable for development,
// testing, or single-instance deployments.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]rules.Config // composite key -> Config
	byID    map[string]string       // config ID -> composite key
	rules   map[string][]rules.Rule // config ID -> rules
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		configs: make(map[string]rules.Config),
		byID:    make(map[string]string),
		rules:   make(map[string][]rules.Rule),
	}
}

func compositeKey(gameID, key, env string) string {
	return gameID + "/" + key + "/" + env
}

// GetConfig retrieves a configuration by its composite identity.
func (m *MemoryStore) GetConfig(ctx context.Context, gameID, key, env string) (*rules.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.configs[compositeKey(gameID, key, env)]
	if !ok {
		return nil, ErrConfigNotFound
	}
	return &cfg, nil
}

// ListConfigs retrieves all configurations for a game and environment.
func (m *MemoryStore) ListConfigs(ctx context.Context, gameID, env string) ([]rules.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]rules.Config, 0, len(m.configs))
	for _, cfg := range m.configs {
		if cfg.GameID == gameID && cfg.Environment == env {
			result = append(result, cfg)
		}
	}
	return result, nil
}

// UpsertConfig creates or updates a configuration.
func (m *MemoryStore) UpsertConfig(ctx context.Context, params UpsertConfigParams) (*rules.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	ck := compositeKey(params.GameID, params.Key, params.Environment)

	cfg, exists := m.configs[ck]
	if !exists {
		cfg = rules.Config{
			ID:          uuid.NewString(),
			GameID:      params.GameID,
			Key:         params.Key,
			Environment: params.Environment,
			CreatedAt:   now,
		}
		m.byID[cfg.ID] = ck
	}
	cfg.DataType = params.DataType
	cfg.Value = params.Value
	cfg.UpdatedAt = now

	m.configs[ck] = cfg
	return &cfg, nil
}

// DeleteConfig removes a configuration and its rules. Idempotent.
func (m *MemoryStore) DeleteConfig(ctx context.Context, gameID, key, env string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ck := compositeKey(gameID, key, env)
	if cfg, exists := m.configs[ck]; exists {
		delete(m.configs, ck)
		delete(m.byID, cfg.ID)
		delete(m.rules, cfg.ID)
	}
	return nil
}

// ListRules retrieves all rules owned by a configuration.
func (m *MemoryStore) ListRules(ctx context.Context, configID string) ([]rules.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.rules[configID]
	result := make([]rules.Rule, len(stored))
	copy(result, stored)
	return result, nil
}

// CreateRule persists a new rule. The priority check runs under the write
// lock, so concurrent creates for the same configuration cannot both pass.
func (m *MemoryStore) CreateRule(ctx context.Context, r rules.Rule) (*rules.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[r.ConfigID]; !ok {
		return nil, ErrConfigNotFound
	}
	for _, existing := range m.rules[r.ConfigID] {
		if existing.Priority == r.Priority {
			return nil, fmt.Errorf("%w: priority %d", rules.ErrDuplicatePriority, r.Priority)
		}
	}

	now := time.Now().UTC()
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	r.CreatedAt = now
	r.UpdatedAt = now

	m.rules[r.ConfigID] = append(m.rules[r.ConfigID], r)
	return &r, nil
}

// UpdateRule replaces the stored rule with the same ID.
func (m *MemoryStore) UpdateRule(ctx context.Context, r rules.Rule) (*rules.Rule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.rules[r.ConfigID]
	idx := -1
	for i, existing := range stored {
		if existing.ID == r.ID {
			idx = i
			continue
		}
		if existing.Priority == r.Priority {
			return nil, fmt.Errorf("%w: priority %d", rules.ErrDuplicatePriority, r.Priority)
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", rules.ErrRuleNotFound, r.ID)
	}

	r.CreatedAt = stored[idx].CreatedAt
	r.UpdatedAt = time.Now().UTC()
	stored[idx] = r
	return &r, nil
}

// DeleteRule removes a rule from a configuration.
func (m *MemoryStore) DeleteRule(ctx context.Context, configID, ruleID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.rules[configID]
	for i, existing := range stored {
		if existing.ID == ruleID {
			m.rules[configID] = append(stored[:i], stored[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", rules.ErrRuleNotFound, ruleID)
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
