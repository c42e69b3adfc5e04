package ledger

import (
	"context"
	"log/slog"
	"time"

	"github.com/paylynx/policy-engine/internal/clock"
)

// Janitor periodically deletes spend records that have aged out of the
// retention window. Records are partitioned by day key, so no reset job is
// needed for correctness; this only keeps the table from growing forever.
type Janitor struct {
	ledger        *PostgresLedger
	retentionDays int
	interval      time.Duration
}

// NewJanitor creates a Janitor that keeps retentionDays of history and
// sweeps every interval.
func NewJanitor(ledger *PostgresLedger, retentionDays int, interval time.Duration) *Janitor {
	return &Janitor{ledger: ledger, retentionDays: retentionDays, interval: interval}
}

// Run blocks until ctx is cancelled, sweeping on each tick.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	slog.Info("ledger janitor started", "retention_days", j.retentionDays, "interval", j.interval)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	// Cutoff in UTC; a day of slack either side is irrelevant for cleanup.
	cutoff := clock.DayKey(time.Now().UTC().AddDate(0, 0, -j.retentionDays), 0)

	deleted, err := j.ledger.DeleteBefore(ctx, cutoff)
	if err != nil {
		slog.Warn("ledger janitor sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("ledger janitor swept stale records", "deleted", deleted, "cutoff", cutoff)
	}
}
