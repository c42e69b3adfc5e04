package policy

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConfigStore is the durable home of per-user policy configuration.
type ConfigStore interface {
	// GetOrCreate returns the user's config, creating it with defaults on
	// first use.
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Config, error)

	// Update persists a full replacement of the user's config.
	Update(ctx context.Context, cfg *Config) error
}

// PostgresStore implements ConfigStore on the policy_configs table. Column
// defaults mirror DefaultConfig, so first-use creation is a bare insert.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Config, error) {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO policy_configs (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`, userID)
	if err != nil {
		return nil, fmt.Errorf("ensuring policy config: %w", err)
	}

	var cfg Config
	err = s.pool.QueryRow(ctx,
		`SELECT user_id, enabled, max_single_payment, max_daily_limit,
		        night_mode_enabled, night_max_payment, night_hour_start, night_hour_end,
		        timezone_offset_minutes, created_at, updated_at
		 FROM policy_configs WHERE user_id = $1`, userID,
	).Scan(&cfg.UserID, &cfg.Enabled, &cfg.MaxSinglePayment, &cfg.MaxDailyLimit,
		&cfg.NightModeEnabled, &cfg.NightMaxPayment, &cfg.NightHourStart, &cfg.NightHourEnd,
		&cfg.TimezoneOffsetMinutes, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("fetching policy config: %w", err)
	}
	return &cfg, nil
}

func (s *PostgresStore) Update(ctx context.Context, cfg *Config) error {
	err := s.pool.QueryRow(ctx,
		`UPDATE policy_configs
		 SET enabled = $2,
		     max_single_payment = $3,
		     max_daily_limit = $4,
		     night_mode_enabled = $5,
		     night_max_payment = $6,
		     night_hour_start = $7,
		     night_hour_end = $8,
		     timezone_offset_minutes = $9,
		     updated_at = NOW()
		 WHERE user_id = $1
		 RETURNING updated_at`,
		cfg.UserID, cfg.Enabled, cfg.MaxSinglePayment, cfg.MaxDailyLimit,
		cfg.NightModeEnabled, cfg.NightMaxPayment, cfg.NightHourStart, cfg.NightHourEnd,
		cfg.TimezoneOffsetMinutes,
	).Scan(&cfg.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating policy config: %w", err)
	}
	return nil
}
