package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gameops/remoteconfig/internal/rules"
)

// uniqueViolation is the SQLSTATE for unique-constraint violations.
const uniqueViolation = "23505"

// PostgresStore is a PostgreSQL implementation of the Store interface.
// Priority uniqueness is enforced by the rules_config_id_priority_key
// constraint, which closes the time-of-check/time-of-use window that the
// validation snapshot alone leaves open under concurrent writers.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const configColumns = `id, game_id, key, environment, data_type, value, created_at, updated_at`

// GetConfig retrieves a configuration by its composite identity.
func (p *PostgresStore) GetConfig(ctx context.Context, gameID, key, env string) (*rules.Config, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT `+configColumns+` FROM configs WHERE game_id = $1 AND key = $2 AND environment = $3`,
		gameID, key, env)

	cfg, err := scanConfig(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return cfg, nil
}

// ListConfigs retrieves all configurations for a game and environment.
func (p *PostgresStore) ListConfigs(ctx context.Context, gameID, env string) ([]rules.Config, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+configColumns+` FROM configs WHERE game_id = $1 AND environment = $2 ORDER BY key`,
		gameID, env)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var configs []rules.Config
	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, *cfg)
	}
	if configs == nil {
		configs = []rules.Config{}
	}
	return configs, rows.Err()
}

// UpsertConfig creates or updates a configuration.
func (p *PostgresStore) UpsertConfig(ctx context.Context, params UpsertConfigParams) (*rules.Config, error) {
	raw, err := params.Value.Raw()
	if err != nil {
		return nil, err
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO configs (id, game_id, key, environment, data_type, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		ON CONFLICT (game_id, key, environment)
		DO UPDATE SET data_type = EXCLUDED.data_type, value = EXCLUDED.value, updated_at = now()
		RETURNING `+configColumns,
		uuid.NewString(), params.GameID, params.Key, params.Environment, string(params.DataType), raw)

	return scanConfig(row)
}

// DeleteConfig removes a configuration; owned rules go with it via the
// ON DELETE CASCADE on rules.config_id. Idempotent.
func (p *PostgresStore) DeleteConfig(ctx context.Context, gameID, key, env string) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM configs WHERE game_id = $1 AND key = $2 AND environment = $3`,
		gameID, key, env)
	return err
}

const ruleColumns = `id, config_id, priority, override_value, enabled,
	platform, version_op, version_value, country,
	active_after, active_start, active_end, created_at, updated_at`

// ListRules retrieves all rules owned by a configuration.
func (p *PostgresStore) ListRules(ctx context.Context, configID string) ([]rules.Rule, error) {
	dataType, err := p.configDataType(ctx, configID)
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM rules WHERE config_id = $1`, configID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []rules.Rule
	for rows.Next() {
		r, err := scanRule(rows, dataType)
		if err != nil {
			return nil, err
		}
		result = append(result, *r)
	}
	if result == nil {
		result = []rules.Rule{}
	}
	return result, rows.Err()
}

// CreateRule persists a new rule.
func (p *PostgresStore) CreateRule(ctx context.Context, r rules.Rule) (*rules.Rule, error) {
	raw, err := r.OverrideValue.Raw()
	if err != nil {
		return nil, err
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	var versionOp, versionValue *string
	if r.Version != nil {
		op := string(r.Version.Operator)
		versionOp, versionValue = &op, &r.Version.Value
	}
	var activeStart, activeEnd *time.Time
	if r.ActiveBetween != nil {
		activeStart, activeEnd = &r.ActiveBetween.Start, &r.ActiveBetween.End
	}

	row := p.pool.QueryRow(ctx, `
		INSERT INTO rules (id, config_id, priority, override_value, enabled,
			platform, version_op, version_value, country,
			active_after, active_start, active_end, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now(), now())
		RETURNING `+ruleColumns,
		r.ID, r.ConfigID, r.Priority, raw, r.Enabled,
		r.Platform, versionOp, versionValue, r.Country,
		r.ActiveAfter, activeStart, activeEnd)

	stored, err := scanRule(row, r.OverrideValue.Type())
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: priority %d", rules.ErrDuplicatePriority, r.Priority)
		}
		if isForeignKeyViolation(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return stored, nil
}

// UpdateRule replaces the stored rule with the same ID.
func (p *PostgresStore) UpdateRule(ctx context.Context, r rules.Rule) (*rules.Rule, error) {
	raw, err := r.OverrideValue.Raw()
	if err != nil {
		return nil, err
	}

	var versionOp, versionValue *string
	if r.Version != nil {
		op := string(r.Version.Operator)
		versionOp, versionValue = &op, &r.Version.Value
	}
	var activeStart, activeEnd *time.Time
	if r.ActiveBetween != nil {
		activeStart, activeEnd = &r.ActiveBetween.Start, &r.ActiveBetween.End
	}

	row := p.pool.QueryRow(ctx, `
		UPDATE rules SET priority = $3, override_value = $4, enabled = $5,
			platform = $6, version_op = $7, version_value = $8, country = $9,
			active_after = $10, active_start = $11, active_end = $12, updated_at = now()
		WHERE id = $1 AND config_id = $2
		RETURNING `+ruleColumns,
		r.ID, r.ConfigID, r.Priority, raw, r.Enabled,
		r.Platform, versionOp, versionValue, r.Country,
		r.ActiveAfter, activeStart, activeEnd)

	stored, err := scanRule(row, r.OverrideValue.Type())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", rules.ErrRuleNotFound, r.ID)
		}
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: priority %d", rules.ErrDuplicatePriority, r.Priority)
		}
		return nil, err
	}
	return stored, nil
}

// DeleteRule removes a rule from a configuration.
func (p *PostgresStore) DeleteRule(ctx context.Context, configID, ruleID string) error {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM rules WHERE id = $1 AND config_id = $2`, ruleID, configID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", rules.ErrRuleNotFound, ruleID)
	}
	return nil
}

// Close closes the database connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) configDataType(ctx context.Context, configID string) (rules.DataType, error) {
	var dt string
	err := p.pool.QueryRow(ctx, `SELECT data_type FROM configs WHERE id = $1`, configID).Scan(&dt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrConfigNotFound
		}
		return "", err
	}
	return rules.DataType(dt), nil
}

func scanConfig(row pgx.Row) (*rules.Config, error) {
	var (
		cfg      rules.Config
		dataType string
		raw      []byte
	)
	if err := row.Scan(&cfg.ID, &cfg.GameID, &cfg.Key, &cfg.Environment,
		&dataType, &raw, &cfg.CreatedAt, &cfg.UpdatedAt); err != nil {
		return nil, err
	}

	cfg.DataType = rules.DataType(dataType)
	value, err := rules.CoerceValue(cfg.DataType, json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("stored value for config %s: %w", cfg.ID, err)
	}
	cfg.Value = value
	return &cfg, nil
}

func scanRule(row pgx.Row, dataType rules.DataType) (*rules.Rule, error) {
	var (
		r            rules.Rule
		raw          []byte
		versionOp    *string
		versionValue *string
		activeStart  *time.Time
		activeEnd    *time.Time
	)
	if err := row.Scan(&r.ID, &r.ConfigID, &r.Priority, &raw, &r.Enabled,
		&r.Platform, &versionOp, &versionValue, &r.Country,
		&r.ActiveAfter, &activeStart, &activeEnd, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}

	value, err := rules.CoerceValue(dataType, json.RawMessage(raw))
	if err != nil {
		return nil, fmt.Errorf("stored override for rule %s: %w", r.ID, err)
	}
	r.OverrideValue = value

	if versionOp != nil && versionValue != nil {
		r.Version = &rules.VersionCondition{
			Operator: rules.VersionOperator(*versionOp),
			Value:    *versionValue,
		}
	}
	if activeStart != nil && activeEnd != nil {
		r.ActiveBetween = &rules.DateWindow{Start: *activeStart, End: *activeEnd}
	}
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
