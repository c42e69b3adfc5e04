package nats

import (
	"time"

	"github.com/google/uuid"
)

// FetchTimeout is the default timeout for batch fetching messages from consumers.
const FetchTimeout = 2 * time.Second

// StreamEvents holds the engine's audit event stream.
const StreamEvents = "PAYLYNX_EVENTS"

// SubjectAuditEvent carries policy decisions and settings changes.
const SubjectAuditEvent = "paylynx.events.audit"

// AuditEvent is published for every policy decision and settings change.
// The audit consumer persists these; the engine's decisions never wait on
// them.
type AuditEvent struct {
	UserID    uuid.UUID `json:"user_id"`
	EventType string    `json:"event_type"` // payment_allowed, payment_denied, policy_updated
	Severity  string    `json:"severity"`   // info, warn
	Reason    string    `json:"reason,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
