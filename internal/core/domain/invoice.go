package domain

import (
	"strconv"
	"time"
)

// SupportedCurrency is the only currency this gateway configuration accepts.
const SupportedCurrency = "INR"

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "PENDING"
	InvoiceStatusPaid    InvoiceStatus = "PAID"
)

// Invoice is a billable document owned by the host application. The payment
// core reads it for validation and customer data; the only mutation it ever
// performs is marking it paid through the payment recorder.
type Invoice struct {
	ID           int64         `json:"id"`
	Number       string        `json:"number"`
	Description  string        `json:"description"`
	CurrencyCode string        `json:"currency_code"`
	Total        float64       `json:"total"`
	Status       InvoiceStatus `json:"status"`
	Customer     Customer      `json:"customer"`
	Items        []LineItem    `json:"items,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// DisplayNumber returns the human-facing invoice number, falling back to the
// numeric id when no number was assigned.
func (i Invoice) DisplayNumber() string {
	if i.Number != "" {
		return i.Number
	}
	return strconv.FormatInt(i.ID, 10)
}

// LineItem is a single invoice line. ProductID is set when the line
// references a catalog product (used for checkout cart enrichment).
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Quantity    int     `json:"quantity"`
	ProductID   *int64  `json:"product_id,omitempty"`
}

// Product is a catalog entry referenced by invoice line items.
type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}
