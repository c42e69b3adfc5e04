package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inats "github.com/paylynx/policy-engine/internal/nats"
)

func TestAuditEventRoundTrip(t *testing.T) {
	userID := uuid.New()

	event := inats.AuditEvent{
		UserID:    userID,
		EventType: "payment_denied",
		Severity:  "warn",
		Reason:    "daily_limit_exceeded",
		Amount:    "250.00",
		Details:   "spent 4800.00 of 5000.00",
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded inats.AuditEvent
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, userID, decoded.UserID)
	assert.Equal(t, "payment_denied", decoded.EventType)
	assert.Equal(t, "warn", decoded.Severity)
	assert.Equal(t, "daily_limit_exceeded", decoded.Reason)
	assert.Equal(t, "250.00", decoded.Amount)
}

func TestConvertEventToLog(t *testing.T) {
	event := inats.AuditEvent{
		UserID:    uuid.New(),
		EventType: "payment_allowed",
		Severity:  "info",
		Reason:    "approved",
		Amount:    "42.50",
		Timestamp: time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC),
	}

	log := convertEventToLog(event)

	assert.NotEqual(t, uuid.Nil, log.ID)
	assert.Equal(t, event.UserID, log.UserID)
	assert.Equal(t, "payment_allowed", log.EventType)
	assert.Equal(t, "info", log.Severity)
	assert.Equal(t, event.Timestamp, log.CreatedAt)

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Equal(t, "approved", details["reason"])
	assert.Equal(t, "42.50", details["amount"])
	assert.NotContains(t, details, "message")
}

func TestConvertEventToLog_EmptyDetails(t *testing.T) {
	log := convertEventToLog(inats.AuditEvent{
		UserID:    uuid.New(),
		EventType: "policy_updated",
		Severity:  "info",
		Timestamp: time.Now().UTC(),
	})

	var details map[string]string
	require.NoError(t, json.Unmarshal(log.Details, &details))
	assert.Empty(t, details)
}
