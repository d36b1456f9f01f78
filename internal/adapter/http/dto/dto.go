package dto

// CheckoutRequest is the request body for initiating a hosted checkout.
// Amount is optional; when omitted the invoice total is charged.
type CheckoutRequest struct {
	Amount *float64 `json:"amount,omitempty"`
}

// CallbackQuery binds the return-redirect query string. The order id is
// optional at the binding layer so a missing id and a malformed one can
// surface different notifications.
type CallbackQuery struct {
	OrderID string `form:"order_id" binding:"omitempty,safe_order_id"`
}

// CheckoutResponse is the response body for a created checkout session.
type CheckoutResponse struct {
	InvoiceID        int64  `json:"invoice_id"`
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	Mode             string `json:"mode"`
}
