package policy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evaluate applies the TIP-403 checks to a proposed payment. It is a pure
// function: no I/O, deterministic for a given input set. spentToday is the
// amount already accepted for the user's current calendar day, and nowLocal
// must already be in the user's timezone.
//
// Limits are inclusive ceilings: a payment equal to the cap, or one that
// brings the daily total to exactly the limit, is allowed.
func Evaluate(cfg Config, spentToday, amount decimal.Decimal, nowLocal time.Time) Decision {
	if !cfg.Enabled {
		return Decision{Outcome: OutcomeAllow, Reason: ReasonPolicyDisabled}
	}

	remaining := remainingOf(cfg.MaxDailyLimit, spentToday)

	if amount.Sign() <= 0 {
		return Decision{
			Outcome:        OutcomeDeny,
			Reason:         ReasonInvalidAmount,
			AppliedCap:     cfg.MaxSinglePayment,
			DailySpent:     spentToday,
			DailyRemaining: remaining,
		}
	}

	maxPayment := cfg.MaxSinglePayment
	if cfg.NightModeEnabled && inNightWindow(nowLocal.Hour(), cfg.NightHourStart, cfg.NightHourEnd) {
		maxPayment = decimal.Min(maxPayment, cfg.NightMaxPayment)
	}

	if amount.GreaterThan(maxPayment) {
		return Decision{
			Outcome:        OutcomeDeny,
			Reason:         ReasonSinglePaymentExceeded,
			AppliedCap:     maxPayment,
			DailySpent:     spentToday,
			DailyRemaining: remaining,
		}
	}

	total := spentToday.Add(amount)
	if total.GreaterThan(cfg.MaxDailyLimit) {
		return Decision{
			Outcome:        OutcomeDeny,
			Reason:         ReasonDailyLimitExceeded,
			AppliedCap:     maxPayment,
			DailySpent:     spentToday,
			DailyRemaining: remaining,
		}
	}

	return Decision{
		Outcome:        OutcomeAllow,
		Reason:         ReasonApproved,
		AppliedCap:     maxPayment,
		DailySpent:     total,
		DailyRemaining: cfg.MaxDailyLimit.Sub(total),
	}
}

// inNightWindow reports whether hour falls in [start, end), wrapping past
// midnight when start > end. start == end is an empty window.
func inNightWindow(hour, start, end int) bool {
	if start == end {
		return false
	}
	if start < end {
		return hour >= start && hour < end
	}
	return hour >= start || hour < end
}

func remainingOf(limit, spent decimal.Decimal) decimal.Decimal {
	r := limit.Sub(spent)
	if r.Sign() < 0 {
		return decimal.Zero
	}
	return r
}
