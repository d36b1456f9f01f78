package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventOrderReconciled is the audit event type for payments confirmed
// through the payer's return callback rather than a webhook.
const EventOrderReconciled = "ORDER_RECONCILED"

// Outcomes recorded on the gateway event audit trail.
const (
	EventOutcomeRecorded  = "RECORDED"
	EventOutcomeDuplicate = "DUPLICATE"
	EventOutcomeIgnored   = "IGNORED"
	EventOutcomeFailed    = "FAILED"
)

// GatewayEvent is an append-only audit record of an inbound gateway
// notification after its signature was verified.
type GatewayEvent struct {
	ID        uuid.UUID
	EventType string
	OrderID   string
	InvoiceID *int64
	Outcome   string
	Payload   []byte
	CreatedAt time.Time
}
