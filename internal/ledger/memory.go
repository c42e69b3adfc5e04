package ledger

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemoryLedger is an in-process Ledger with the same serialized-increment
// contract as the Postgres implementation. Used by unit tests and by
// embedders that run the engine without a database.
type MemoryLedger struct {
	mu     sync.Mutex
	totals map[string]decimal.Decimal
}

// NewMemoryLedger creates an empty MemoryLedger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{totals: make(map[string]decimal.Decimal)}
}

func memKey(userID uuid.UUID, day string) string {
	return userID.String() + ":" + day
}

func (l *MemoryLedger) SpentOn(_ context.Context, userID uuid.UUID, day string) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.totals[memKey(userID, day)], nil
}

func (l *MemoryLedger) Commit(_ context.Context, userID uuid.UUID, day string, amount decimal.Decimal) (decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := memKey(userID, day)
	total := l.totals[key].Add(amount)
	l.totals[key] = total
	return total, nil
}

func (l *MemoryLedger) Revert(_ context.Context, userID uuid.UUID, day string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := memKey(userID, day)
	total := l.totals[key].Sub(amount)
	if total.Sign() < 0 {
		total = decimal.Zero
	}
	l.totals[key] = total
	return nil
}
