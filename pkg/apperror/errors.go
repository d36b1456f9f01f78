package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Checkout Validation (VAL) ----

func ErrInvalidAmount() *AppError {
	return New("VAL_001", "Invalid payment amount. The invoice total must be greater than zero.", http.StatusBadRequest)
}

func ErrUnsupportedCurrency() *AppError {
	return New("VAL_002", `The invoice currency code must be "INR" to make payments with Cashfree.`, http.StatusBadRequest)
}

func ErrMissingPhone() *AppError {
	return New("VAL_003", "A valid phone number is required to make payments with Cashfree. Please update your account details with a phone number.", http.StatusBadRequest)
}

func ErrInvalidPhoneFormat() *AppError {
	return New("VAL_004", "Invalid phone number format. Please use a valid 10-digit Indian mobile number (e.g., 9876543210 or +919876543210).", http.StatusBadRequest)
}

func ErrMissingEmail() *AppError {
	return New("VAL_005", "A valid email address is required to make payments with Cashfree. Please update your account details.", http.StatusBadRequest)
}

// ---- Gateway Interaction (GWY) ----

// ErrGatewayRejected surfaces a client-level rejection from the gateway,
// keeping the gateway's own message when it provided one.
func ErrGatewayRejected(message string) *AppError {
	if message == "" {
		message = "Please check your payment details and try again."
	}
	return New("GWY_001", "Failed to create payment order. "+message, http.StatusUnprocessableEntity)
}

// ErrOrderCreationFailed marks an unrecoverable integration fault during
// order creation (transport failure, malformed response). Unlike validation
// and rejection errors, this one propagates as a hard failure.
func ErrOrderCreationFailed(err error) *AppError {
	return Wrap("GWY_002", "Failed to create order", http.StatusBadGateway, err)
}

// ---- Webhook Security (SEC) ----

func ErrWebhookSignature() *AppError {
	return New("SEC_001", "Signature verification failed", http.StatusUnauthorized)
}

// ---- Payment Records (PAY) ----

func ErrNotFound(entity string) *AppError {
	return New("PAY_001", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Validation returns a request-binding validation error.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}
