package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PostgresLedger implements Ledger on the spend_records table. The increment
// is a single upsert statement, so serialization is delegated to row-level
// locking in Postgres and requests for different users never contend.
type PostgresLedger struct {
	pool *pgxpool.Pool
}

// NewPostgresLedger creates a new PostgresLedger.
func NewPostgresLedger(pool *pgxpool.Pool) *PostgresLedger {
	return &PostgresLedger{pool: pool}
}

func (l *PostgresLedger) SpentOn(ctx context.Context, userID uuid.UUID, day string) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := l.pool.QueryRow(ctx,
		`SELECT COALESCE(
		    (SELECT amount_accumulated FROM spend_records WHERE user_id = $1 AND day = $2::date),
		    0)`,
		userID, day,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading daily spend: %w", err)
	}
	return total, nil
}

func (l *PostgresLedger) Commit(ctx context.Context, userID uuid.UUID, day string, amount decimal.Decimal) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := l.pool.QueryRow(ctx,
		`INSERT INTO spend_records (user_id, day, amount_accumulated)
		 VALUES ($1, $2::date, $3)
		 ON CONFLICT (user_id, day) DO UPDATE
		 SET amount_accumulated = spend_records.amount_accumulated + EXCLUDED.amount_accumulated,
		     updated_at = NOW()
		 RETURNING amount_accumulated`,
		userID, day, amount,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("committing charge: %w", err)
	}
	return total, nil
}

func (l *PostgresLedger) Revert(ctx context.Context, userID uuid.UUID, day string, amount decimal.Decimal) error {
	_, err := l.pool.Exec(ctx,
		`UPDATE spend_records
		 SET amount_accumulated = GREATEST(amount_accumulated - $3, 0),
		     updated_at = NOW()
		 WHERE user_id = $1 AND day = $2::date`,
		userID, day, amount)
	if err != nil {
		return fmt.Errorf("reverting charge: %w", err)
	}
	return nil
}

// DeleteBefore removes spend records older than the cutoff day and returns
// how many rows were dropped. Rolled-over records are immutable and only
// needed for the retention window.
func (l *PostgresLedger) DeleteBefore(ctx context.Context, cutoffDay string) (int64, error) {
	tag, err := l.pool.Exec(ctx,
		`DELETE FROM spend_records WHERE day < $1::date`, cutoffDay)
	if err != nil {
		return 0, fmt.Errorf("deleting stale spend records: %w", err)
	}
	return tag.RowsAffected(), nil
}
