package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SpendRecord matches the spend_records table schema: one row per user per
// calendar day (in the user's timezone), holding the running total of
// accepted charges. Rows are never edited after the day rolls over.
type SpendRecord struct {
	UserID            uuid.UUID       `json:"user_id"`
	Day               string          `json:"day"`
	AmountAccumulated decimal.Decimal `json:"amount_accumulated"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Ledger is the append-only daily spend counter. Commit is a serialized
// increment: two concurrent commits for the same (user, day) must both be
// reflected in the returned totals, never lost to a stale read. The ledger
// does not enforce the daily limit itself; the service re-checks the
// returned total and calls Revert on the commit it refuses to finalize.
type Ledger interface {
	// SpentOn returns the accumulated total for the day, zero if no record
	// exists yet.
	SpentOn(ctx context.Context, userID uuid.UUID, day string) (decimal.Decimal, error)

	// Commit atomically adds amount to the day's total, creating the record
	// on the first charge of the day, and returns the new total.
	Commit(ctx context.Context, userID uuid.UUID, day string, amount decimal.Decimal) (decimal.Decimal, error)

	// Revert subtracts a previously committed amount. Used only to undo a
	// commit that raced past the daily limit; the total never goes negative.
	Revert(ctx context.Context, userID uuid.UUID, day string, amount decimal.Decimal) error
}
