package domain

import "strconv"

// EventPaymentSuccess is the only webhook event type that triggers payment
// recording; everything else is acknowledged and ignored.
const EventPaymentSuccess = "PAYMENT_SUCCESS_WEBHOOK"

// Webhook signature headers sent by the gateway.
const (
	HeaderWebhookTimestamp = "x-webhook-timestamp"
	HeaderWebhookSignature = "x-webhook-signature"
)

// WebhookNotification is the parsed body of an inbound gateway webhook.
// Its contents must not be trusted before the signature over the raw body
// has been verified.
type WebhookNotification struct {
	Type string      `json:"type"`
	Data WebhookData `json:"data"`
}

type WebhookData struct {
	Order WebhookOrder `json:"order"`
}

type WebhookOrder struct {
	OrderID     string            `json:"order_id"`
	OrderAmount float64           `json:"order_amount"`
	OrderTags   map[string]string `json:"order_tags"`
}

// InvoiceID extracts the invoice id round-tripped through order tags.
// Returns false when the tag is absent or not numeric.
func (o WebhookOrder) InvoiceID() (int64, bool) {
	raw, ok := o.OrderTags["invoice_id"]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
