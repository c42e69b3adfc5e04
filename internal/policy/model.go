package policy

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Outcome is the final verdict on a proposed payment.
type Outcome string

const (
	OutcomeAllow Outcome = "allow"
	OutcomeDeny  Outcome = "deny"
)

// Reason explains a decision. Callers render each reason distinctly, so
// these values are part of the API contract.
type Reason string

const (
	ReasonApproved               Reason = "approved"
	ReasonPolicyDisabled         Reason = "policy_disabled"
	ReasonInvalidAmount          Reason = "invalid_amount"
	ReasonSinglePaymentExceeded  Reason = "single_payment_exceeded"
	ReasonDailyLimitExceeded     Reason = "daily_limit_exceeded"
	ReasonDailyLimitExceededRace Reason = "daily_limit_exceeded_race"
)

// Config matches the policy_configs table schema: the per-user TIP-403
// protection settings mutated only through the settings interface.
type Config struct {
	UserID                uuid.UUID       `json:"user_id"`
	Enabled               bool            `json:"enabled"`
	MaxSinglePayment      decimal.Decimal `json:"max_single_payment"`
	MaxDailyLimit         decimal.Decimal `json:"max_daily_limit"`
	NightModeEnabled      bool            `json:"night_mode_enabled"`
	NightMaxPayment       decimal.Decimal `json:"night_max_payment"`
	NightHourStart        int             `json:"night_hour_start"`
	NightHourEnd          int             `json:"night_hour_end"`
	TimezoneOffsetMinutes int             `json:"timezone_offset_minutes"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

// DefaultConfig is the policy created on a user's first contact with the
// engine: $1000 per payment, $5000 per day, $100 between 22:00 and 06:00.
func DefaultConfig(userID uuid.UUID) Config {
	return Config{
		UserID:           userID,
		Enabled:          true,
		MaxSinglePayment: decimal.NewFromInt(1000),
		MaxDailyLimit:    decimal.NewFromInt(5000),
		NightModeEnabled: true,
		NightMaxPayment:  decimal.NewFromInt(100),
		NightHourStart:   22,
		NightHourEnd:     6,
	}
}

// Decision is the evaluator's verdict on a single proposed payment.
// AppliedCap is the single-payment ceiling that was in force (the night cap
// when the night window is active); on a single_payment_exceeded denial it is
// the ceiling that was violated, for caller messaging.
type Decision struct {
	Outcome        Outcome         `json:"outcome"`
	Reason         Reason          `json:"reason"`
	AppliedCap     decimal.Decimal `json:"applied_cap"`
	DailySpent     decimal.Decimal `json:"daily_spent"`
	DailyRemaining decimal.Decimal `json:"daily_remaining"`
}

// Allowed reports whether the payment may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == OutcomeAllow
}

// Status is the read-only summary served to the settings/limits screens.
type Status struct {
	Enabled           bool            `json:"enabled"`
	Day               string          `json:"day"`
	DailySpent        decimal.Decimal `json:"daily_spent"`
	DailyRemaining    decimal.Decimal `json:"daily_remaining"`
	IsNight           bool            `json:"is_night"`
	CurrentMaxPayment decimal.Decimal `json:"current_max_payment"`
}

// CheckPaymentRequest is the body of POST /payments/check. RequestedAt is
// informational (it lands in the audit trail); enforcement always evaluates
// against server time.
type CheckPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	RequestedAt *time.Time      `json:"requested_at,omitempty"`
}

// UpdateSettingsRequest is the body of PUT /policy/settings. All fields are
// required; partial updates would make the cross-field invariants ambiguous.
type UpdateSettingsRequest struct {
	Enabled               bool            `json:"enabled"`
	MaxSinglePayment      decimal.Decimal `json:"max_single_payment"`
	MaxDailyLimit         decimal.Decimal `json:"max_daily_limit"`
	NightModeEnabled      bool            `json:"night_mode_enabled"`
	NightMaxPayment       decimal.Decimal `json:"night_max_payment"`
	NightHourStart        int             `json:"night_hour_start" validate:"min=0,max=23"`
	NightHourEnd          int             `json:"night_hour_end" validate:"min=0,max=23"`
	TimezoneOffsetMinutes int             `json:"timezone_offset_minutes" validate:"min=-720,max=840"`
}

// Validate checks the cross-field invariants the struct tags cannot express.
// It returns the first violation with the offending field named.
func (r *UpdateSettingsRequest) Validate() *ValidationError {
	if r.MaxSinglePayment.Sign() <= 0 {
		return &ValidationError{Field: "max_single_payment", Message: "must be greater than zero"}
	}
	if r.MaxDailyLimit.LessThan(r.MaxSinglePayment) {
		return &ValidationError{Field: "max_daily_limit", Message: "must be at least max_single_payment"}
	}
	if r.NightMaxPayment.Sign() <= 0 {
		return &ValidationError{Field: "night_max_payment", Message: "must be greater than zero"}
	}
	if r.NightMaxPayment.GreaterThan(r.MaxSinglePayment) {
		return &ValidationError{Field: "night_max_payment", Message: "must not exceed max_single_payment"}
	}
	return nil
}

// ValidationError reports an invariant-violating settings update. The stored
// config is never modified when one is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
