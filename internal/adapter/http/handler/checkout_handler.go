package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"cashfree-checkout/internal/adapter/http/dto"
	"cashfree-checkout/internal/core/ports"
	"cashfree-checkout/pkg/apperror"
	"cashfree-checkout/pkg/response"
)

// CheckoutHandler handles checkout initiation endpoints.
type CheckoutHandler struct {
	checkoutSvc ports.CheckoutService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(checkoutSvc ports.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{checkoutSvc: checkoutSvc}
}

// InitiateCheckout handles POST /api/v1/invoices/:invoiceId/checkout.
func (h *CheckoutHandler) InitiateCheckout(c *gin.Context) {
	invoiceID, err := strconv.ParseInt(c.Param("invoiceId"), 10, 64)
	if err != nil || invoiceID <= 0 {
		response.Error(c, apperror.Validation("invalid invoice id"))
		return
	}

	// The body is optional; an empty POST charges the invoice total.
	var req dto.CheckoutRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.Validation(err.Error()))
			return
		}
	}

	session, err := h.checkoutSvc.InitiateCheckout(c.Request.Context(), invoiceID, req.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	mode := "live"
	if session.TestMode {
		mode = "sandbox"
	}
	response.Created(c, dto.CheckoutResponse{
		InvoiceID:        session.InvoiceID,
		OrderID:          session.OrderID,
		PaymentSessionID: session.PaymentSessionID,
		Mode:             mode,
	})
}
