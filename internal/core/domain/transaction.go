package domain

import (
	"time"

	"github.com/google/uuid"
)

// GatewayName identifies this gateway in recorded transactions.
const GatewayName = "CashfreeV2"

// Transaction is the durable record of one completed payment against an
// invoice. TransactionID holds the gateway order id and is the idempotency
// key: storage enforces at most one transaction per (invoice, order id)
// pair, which resolves the webhook/callback race.
type Transaction struct {
	ID            uuid.UUID `json:"id"`
	InvoiceID     int64     `json:"invoice_id"`
	TransactionID string    `json:"transaction_id"`
	Gateway       string    `json:"gateway"`
	Amount        float64   `json:"amount"`
	Method        *string   `json:"method,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
