package handler

import (
	"fmt"
	"strings"
)

// Routes implements ports.RouteResolver from the application base URL. The
// gateway needs absolute URLs, so everything is anchored on one configured
// origin.
type Routes struct {
	baseURL string
}

// NewRoutes creates a resolver anchored on baseURL.
func NewRoutes(baseURL string) *Routes {
	return &Routes{baseURL: strings.TrimRight(baseURL, "/")}
}

// InvoiceURL is the invoice page the payer lands on after checkout.
func (r *Routes) InvoiceURL(invoiceID int64) string {
	return fmt.Sprintf("%s/invoices/%d", r.baseURL, invoiceID)
}

// InvoicesURL is the invoice listing, used when the invoice id itself is
// unusable.
func (r *Routes) InvoicesURL() string {
	return r.baseURL + "/invoices"
}

// CallbackURL is the return URL registered with the gateway. The order id
// may be the gateway's literal substitution placeholder, so it is appended
// without escaping.
func (r *Routes) CallbackURL(invoiceID int64, orderID string) string {
	return fmt.Sprintf("%s/api/v1/gateway/cashfree/callback/%d?order_id=%s", r.baseURL, invoiceID, orderID)
}

// WebhookURL is the server-to-server notification endpoint.
func (r *Routes) WebhookURL() string {
	return r.baseURL + "/api/v1/gateway/cashfree/webhook"
}
