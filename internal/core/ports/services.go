package ports

import (
	"context"
	"fmt"

	"cashfree-checkout/internal/core/domain"
)

// GatewayCustomer is the customer detail block sent when creating a hosted
// checkout order.
type GatewayCustomer struct {
	ID    string
	Name  string
	Email string
	Phone string
}

// GatewayCartItem is one display line of the optional cart block. Cashfree
// wants the price split into original and discounted unit prices; both carry
// the charged amount since invoices hold no discount information.
type GatewayCartItem struct {
	ID                  string
	Name                string
	Description         string
	ImageURL            string
	OriginalUnitPrice   float64
	DiscountedUnitPrice float64
	Quantity            int
	Currency            string
}

type GatewayCart struct {
	Items []GatewayCartItem
}

// GatewayOrderRequest is a gateway-neutral order creation request assembled
// by the checkout service.
type GatewayOrderRequest struct {
	OrderID   string
	Amount    float64
	Currency  string
	Customer  GatewayCustomer
	ReturnURL string
	NotifyURL string
	Note      string
	Tags      map[string]string
	Cart      *GatewayCart
}

// GatewayOrderCreated is the usable subset of a successful order creation
// response.
type GatewayOrderCreated struct {
	OrderID          string
	PaymentSessionID string
}

// GatewayOrder is the gateway's view of an order fetched during
// reconciliation.
type GatewayOrder struct {
	OrderID string
	Status  domain.OrderStatus
	Amount  float64
}

// GatewayRejection is returned by a gateway client when the gateway refused
// the request with a definitive 4xx answer, as opposed to a transport fault.
type GatewayRejection struct {
	StatusCode int
	Message    string
}

func (e *GatewayRejection) Error() string {
	return fmt.Sprintf("gateway rejected request (status %d): %s", e.StatusCode, e.Message)
}

// GatewayClient talks to the payment gateway's order API.
type GatewayClient interface {
	CreateOrder(ctx context.Context, req *GatewayOrderRequest) (*GatewayOrderCreated, error)
	GetOrder(ctx context.Context, orderID string) (*GatewayOrder, error)
}

// SignatureService signs and verifies webhook payloads.
type SignatureService interface {
	Sign(timestamp string, body []byte) string
	Verify(timestamp string, body []byte, signature string) bool
}

// CheckoutSession is the result of initiating a hosted checkout.
type CheckoutSession struct {
	InvoiceID        int64
	OrderID          string
	PaymentSessionID string
	TestMode         bool
}

// CheckoutService creates hosted checkout orders for invoices.
type CheckoutService interface {
	InitiateCheckout(ctx context.Context, invoiceID int64, amount *float64) (*CheckoutSession, error)
}

// WebhookService processes inbound gateway notifications. A nil return means
// the notification was consumed and must be acknowledged, even when nothing
// was recorded.
type WebhookService interface {
	HandleNotification(ctx context.Context, timestamp, signature string, body []byte) error
}

// ReconcileResult is the outcome of a return-callback reconciliation.
type ReconcileResult struct {
	InvoiceID    int64
	Recorded     bool
	Notification domain.Notification
}

// ReconcileService confirms payment state with the gateway when the payer
// returns from hosted checkout. It always produces a notification.
type ReconcileService interface {
	Reconcile(ctx context.Context, invoiceID int64, orderID string) *ReconcileResult
}

// PaymentRecorder atomically records a payment and marks its invoice paid.
// It returns false when the payment had already been recorded.
type PaymentRecorder interface {
	RecordPayment(ctx context.Context, invoiceID int64, transactionID string, amount float64, method *string) (bool, error)
}

// RouteResolver builds the absolute application URLs handed to the gateway
// and used for post-payment redirects.
type RouteResolver interface {
	InvoiceURL(invoiceID int64) string
	InvoicesURL() string
	CallbackURL(invoiceID int64, orderID string) string
	WebhookURL() string
}
