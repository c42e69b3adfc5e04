package policy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paylynx/policy-engine/internal/clock"
	"github.com/paylynx/policy-engine/internal/ledger"
	"github.com/paylynx/policy-engine/internal/metrics"
	inats "github.com/paylynx/policy-engine/internal/nats"
)

// Service coordinates policy evaluation and spend recording. It is the only
// code path that mutates the ledger, which keeps the daily totals consistent
// with the decisions that produced them.
type Service struct {
	store     ConfigStore
	ledger    ledger.Ledger
	cache     *Cache
	publisher *inats.Publisher
}

// NewService creates a policy Service. cache and publisher may be nil; both
// are best-effort layers and the engine runs without them.
func NewService(store ConfigStore, ldg ledger.Ledger, cache *Cache, publisher *inats.Publisher) *Service {
	return &Service{
		store:     store,
		ledger:    ldg,
		cache:     cache,
		publisher: publisher,
	}
}

// CheckAndRecord evaluates a proposed payment and, when allowed, records it
// against the user's daily total in the same call. The returned decision is
// final: an allowed amount is already counted and stays counted even if the
// caller's payment later fails downstream.
//
// Storage errors deny: a payment must never slip through because the engine
// could not read or write the ledger.
func (s *Service) CheckAndRecord(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, now time.Time) (Decision, error) {
	cfg, err := s.loadConfig(ctx, userID)
	if err != nil {
		return Decision{}, fmt.Errorf("loading policy config: %w", err)
	}

	// A disabled policy allows everything and tracks nothing.
	if !cfg.Enabled {
		decision := Decision{Outcome: OutcomeAllow, Reason: ReasonPolicyDisabled}
		s.recordDecision(ctx, userID, decision, amount)
		return decision, nil
	}

	day := clock.DayKey(now, cfg.TimezoneOffsetMinutes)

	spent, err := s.ledger.SpentOn(ctx, userID, day)
	if err != nil {
		return Decision{}, fmt.Errorf("reading daily spend: %w", err)
	}

	decision := Evaluate(*cfg, spent, amount, clock.In(now, cfg.TimezoneOffsetMinutes))
	if !decision.Allowed() {
		s.recordDecision(ctx, userID, decision, amount)
		return decision, nil
	}

	total, err := s.ledger.Commit(ctx, userID, day, amount)
	if err != nil {
		return Decision{}, fmt.Errorf("recording spend: %w", err)
	}

	// A concurrent commit may have landed between the read and ours. The
	// ledger increment is atomic, so the returned total is authoritative:
	// if it overshoots the limit, this payment loses and its commit is
	// reverted.
	if total.GreaterThan(cfg.MaxDailyLimit) {
		metrics.LedgerCommitRevertsTotal.Inc()
		if err := s.ledger.Revert(ctx, userID, day, amount); err != nil {
			// The total stays high, which only makes the engine stricter.
			slog.Error("reverting raced commit failed", "user_id", userID, "day", day, "error", err)
		}
		decision = Decision{
			Outcome:        OutcomeDeny,
			Reason:         ReasonDailyLimitExceededRace,
			AppliedCap:     decision.AppliedCap,
			DailySpent:     spent,
			DailyRemaining: remainingOf(cfg.MaxDailyLimit, spent),
		}
		s.recordDecision(ctx, userID, decision, amount)
		return decision, nil
	}

	decision.DailySpent = total
	decision.DailyRemaining = remainingOf(cfg.MaxDailyLimit, total)
	s.recordDecision(ctx, userID, decision, amount)
	return decision, nil
}

// GetPolicy returns the user's policy configuration, creating defaults on
// first use.
func (s *Service) GetPolicy(ctx context.Context, userID uuid.UUID) (*Config, error) {
	return s.loadConfig(ctx, userID)
}

// SetPolicy replaces the user's policy configuration. The request is
// validated as a whole; an invalid request leaves the stored config
// untouched.
func (s *Service) SetPolicy(ctx context.Context, userID uuid.UUID, req *UpdateSettingsRequest) (*Config, error) {
	if verr := req.Validate(); verr != nil {
		return nil, verr
	}

	cfg, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading policy config: %w", err)
	}

	cfg.Enabled = req.Enabled
	cfg.MaxSinglePayment = req.MaxSinglePayment
	cfg.MaxDailyLimit = req.MaxDailyLimit
	cfg.NightModeEnabled = req.NightModeEnabled
	cfg.NightMaxPayment = req.NightMaxPayment
	cfg.NightHourStart = req.NightHourStart
	cfg.NightHourEnd = req.NightHourEnd
	cfg.TimezoneOffsetMinutes = req.TimezoneOffsetMinutes

	if err := s.store.Update(ctx, cfg); err != nil {
		return nil, fmt.Errorf("updating policy config: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}

	metrics.PolicyUpdatesTotal.Inc()
	s.publishEvent(ctx, inats.AuditEvent{
		UserID:    userID,
		EventType: "policy_updated",
		Severity:  "info",
		Timestamp: time.Now().UTC(),
	})

	return cfg, nil
}

// GetStatus summarizes the user's current limits: today's spend, what
// remains, and the payment ceiling in force right now.
func (s *Service) GetStatus(ctx context.Context, userID uuid.UUID, now time.Time) (*Status, error) {
	cfg, err := s.loadConfig(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading policy config: %w", err)
	}

	day := clock.DayKey(now, cfg.TimezoneOffsetMinutes)

	spent, err := s.ledger.SpentOn(ctx, userID, day)
	if err != nil {
		return nil, fmt.Errorf("reading daily spend: %w", err)
	}

	isNight := cfg.NightModeEnabled &&
		inNightWindow(clock.LocalHour(now, cfg.TimezoneOffsetMinutes), cfg.NightHourStart, cfg.NightHourEnd)

	current := cfg.MaxSinglePayment
	if isNight {
		current = decimal.Min(current, cfg.NightMaxPayment)
	}

	return &Status{
		Enabled:           cfg.Enabled,
		Day:               day,
		DailySpent:        spent,
		DailyRemaining:    remainingOf(cfg.MaxDailyLimit, spent),
		IsNight:           isNight,
		CurrentMaxPayment: current,
	}, nil
}

func (s *Service) loadConfig(ctx context.Context, userID uuid.UUID) (*Config, error) {
	if s.cache != nil {
		if cfg := s.cache.Get(ctx, userID); cfg != nil {
			return cfg, nil
		}
	}

	cfg, err := s.store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cfg)
	}
	return cfg, nil
}

func (s *Service) recordDecision(ctx context.Context, userID uuid.UUID, d Decision, amount decimal.Decimal) {
	metrics.PolicyDecisionsTotal.WithLabelValues(string(d.Outcome), string(d.Reason)).Inc()

	eventType := "payment_allowed"
	severity := "info"
	if !d.Allowed() {
		eventType = "payment_denied"
		severity = "warn"
	}

	s.publishEvent(ctx, inats.AuditEvent{
		UserID:    userID,
		EventType: eventType,
		Severity:  severity,
		Reason:    string(d.Reason),
		Amount:    amount.String(),
		Timestamp: time.Now().UTC(),
	})
}

func (s *Service) publishEvent(ctx context.Context, event inats.AuditEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishAuditEvent(ctx, event); err != nil {
		slog.Warn("publishing audit event failed", "event_type", event.EventType, "error", err)
	}
}
