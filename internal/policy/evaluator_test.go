package policy

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func at(hour int) time.Time {
	return time.Date(2025, 3, 14, hour, 30, 0, 0, time.UTC)
}

func testConfig() Config {
	cfg := DefaultConfig(uuid.New())
	return cfg
}

func TestEvaluate_DisabledAlwaysAllows(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false

	for _, amount := range []string{"0.01", "1000000", "-5", "0"} {
		d := Evaluate(cfg, dec("99999"), dec(amount), at(23))
		assert.Equal(t, OutcomeAllow, d.Outcome, "amount %s", amount)
		assert.Equal(t, ReasonPolicyDisabled, d.Reason)
	}
}

func TestEvaluate_InvalidAmount(t *testing.T) {
	cfg := testConfig()

	for _, amount := range []string{"0", "-1", "-0.000001"} {
		d := Evaluate(cfg, decimal.Zero, dec(amount), at(12))
		assert.Equal(t, OutcomeDeny, d.Outcome, "amount %s", amount)
		assert.Equal(t, ReasonInvalidAmount, d.Reason)
	}
}

func TestEvaluate_SinglePaymentCap(t *testing.T) {
	cfg := testConfig()

	t.Run("over cap denied regardless of daily spend", func(t *testing.T) {
		d := Evaluate(cfg, decimal.Zero, dec("1000.01"), at(12))
		assert.Equal(t, OutcomeDeny, d.Outcome)
		assert.Equal(t, ReasonSinglePaymentExceeded, d.Reason)
		assert.True(t, d.AppliedCap.Equal(dec("1000")))
	})

	t.Run("exactly at cap allowed", func(t *testing.T) {
		d := Evaluate(cfg, decimal.Zero, dec("1000"), at(12))
		assert.Equal(t, OutcomeAllow, d.Outcome)
	})
}

func TestEvaluate_DailyLimitBoundary(t *testing.T) {
	cfg := testConfig()

	t.Run("charge reaching exactly the limit is allowed", func(t *testing.T) {
		d := Evaluate(cfg, dec("4000"), dec("1000"), at(12))
		assert.Equal(t, OutcomeAllow, d.Outcome)
		assert.True(t, d.DailyRemaining.IsZero())
		assert.True(t, d.DailySpent.Equal(dec("5000")))
	})

	t.Run("one cent more is denied", func(t *testing.T) {
		d := Evaluate(cfg, dec("4999.99"), dec("0.02"), at(12))
		assert.Equal(t, OutcomeDeny, d.Outcome)
		assert.Equal(t, ReasonDailyLimitExceeded, d.Reason)
		assert.True(t, d.DailyRemaining.Equal(dec("0.01")))
	})
}

func TestEvaluate_NightWindow(t *testing.T) {
	cfg := testConfig() // night 22 -> 6, night cap 100

	nightHours := map[int]bool{22: true, 23: true, 0: true, 1: true, 2: true, 3: true, 4: true, 5: true}
	for hour := 0; hour < 24; hour++ {
		d := Evaluate(cfg, decimal.Zero, dec("150"), at(hour))
		if nightHours[hour] {
			assert.Equal(t, OutcomeDeny, d.Outcome, "hour %d should be night", hour)
			assert.Equal(t, ReasonSinglePaymentExceeded, d.Reason)
			assert.True(t, d.AppliedCap.Equal(dec("100")), "hour %d", hour)
		} else {
			assert.Equal(t, OutcomeAllow, d.Outcome, "hour %d should be day", hour)
		}
	}
}

func TestEvaluate_NightWindowNonWrapping(t *testing.T) {
	cfg := testConfig()
	cfg.NightHourStart = 1
	cfg.NightHourEnd = 5

	assert.True(t, Evaluate(cfg, decimal.Zero, dec("150"), at(1)).Outcome == OutcomeDeny)
	assert.True(t, Evaluate(cfg, decimal.Zero, dec("150"), at(4)).Outcome == OutcomeDeny)
	// end hour is exclusive
	assert.True(t, Evaluate(cfg, decimal.Zero, dec("150"), at(5)).Outcome == OutcomeAllow)
	assert.True(t, Evaluate(cfg, decimal.Zero, dec("150"), at(0)).Outcome == OutcomeAllow)
}

func TestEvaluate_NightWindowEmptyWhenStartEqualsEnd(t *testing.T) {
	cfg := testConfig()
	cfg.NightHourStart = 3
	cfg.NightHourEnd = 3

	d := Evaluate(cfg, decimal.Zero, dec("150"), at(3))
	assert.Equal(t, OutcomeAllow, d.Outcome)
}

func TestEvaluate_NightModeDisabledIgnoresWindow(t *testing.T) {
	cfg := testConfig()
	cfg.NightModeEnabled = false

	d := Evaluate(cfg, decimal.Zero, dec("150"), at(23))
	assert.Equal(t, OutcomeAllow, d.Outcome)
}

// The worked scenario from the product brief: night cap 100 clamps a $150
// payment at 23:00 but the same payment sails through at noon.
func TestEvaluate_NightClampScenario(t *testing.T) {
	cfg := testConfig()

	night := Evaluate(cfg, decimal.Zero, dec("150"), at(23))
	assert.Equal(t, OutcomeDeny, night.Outcome)
	assert.Equal(t, ReasonSinglePaymentExceeded, night.Reason)
	assert.True(t, night.AppliedCap.Equal(dec("100")))

	day := Evaluate(cfg, decimal.Zero, dec("150"), at(12))
	assert.Equal(t, OutcomeAllow, day.Outcome)
	assert.True(t, day.DailyRemaining.Equal(dec("4850")))
}

func TestEvaluate_NoDecimalDrift(t *testing.T) {
	cfg := testConfig()
	cfg.MaxDailyLimit = dec("1")

	// 10 x 0.1 must land exactly on the limit, not above it.
	spent := decimal.Zero
	for i := 0; i < 10; i++ {
		d := Evaluate(cfg, spent, dec("0.1"), at(12))
		assert.Equal(t, OutcomeAllow, d.Outcome, "increment %d", i)
		spent = d.DailySpent
	}
	assert.True(t, spent.Equal(dec("1")))

	d := Evaluate(cfg, spent, dec("0.1"), at(12))
	assert.Equal(t, OutcomeDeny, d.Outcome)
}
