package handler

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"cashfree-checkout/internal/adapter/http/dto"
	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
	"cashfree-checkout/pkg/apperror"
)

// GatewayHandler handles the endpoints the payment gateway calls back into:
// the server-to-server webhook and the payer's browser return.
type GatewayHandler struct {
	webhookSvc   ports.WebhookService
	reconcileSvc ports.ReconcileService
	routes       ports.RouteResolver
	log          zerolog.Logger
}

// NewGatewayHandler creates a new GatewayHandler.
func NewGatewayHandler(
	webhookSvc ports.WebhookService,
	reconcileSvc ports.ReconcileService,
	routes ports.RouteResolver,
	log zerolog.Logger,
) *GatewayHandler {
	return &GatewayHandler{
		webhookSvc:   webhookSvc,
		reconcileSvc: reconcileSvc,
		routes:       routes,
		log:          log,
	}
}

// Webhook handles POST /api/v1/gateway/cashfree/webhook. Responses are plain
// text: the gateway only inspects the status code, and 5xx triggers a retry.
func (h *GatewayHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "cannot read body")
		return
	}

	timestamp := c.GetHeader(domain.HeaderWebhookTimestamp)
	signature := c.GetHeader(domain.HeaderWebhookSignature)

	err = h.webhookSvc.HandleNotification(c.Request.Context(), timestamp, signature, body)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus == http.StatusUnauthorized {
			c.String(http.StatusUnauthorized, "Signature verification failed")
			return
		}
		h.log.Error().Err(err).Msg("webhook processing failed")
		c.String(http.StatusInternalServerError, "Internal error")
		return
	}

	c.String(http.StatusOK, "OK")
}

// Callback handles GET /api/v1/gateway/cashfree/callback/:invoiceId. The
// payer's browser lands here after hosted checkout; every outcome becomes a
// redirect carrying a notification, never an error page.
func (h *GatewayHandler) Callback(c *gin.Context) {
	invoiceID, err := strconv.ParseInt(c.Param("invoiceId"), 10, 64)
	if err != nil || invoiceID <= 0 {
		h.redirectWithNotification(c, h.routes.InvoicesURL(), domain.Notification{
			Type:    domain.NotificationError,
			Message: "Invalid payment reference.",
		})
		return
	}

	var query dto.CallbackQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.log.Warn().Int64("invoice_id", invoiceID).Msg("callback carried malformed order id")
		h.redirectWithNotification(c, h.routes.InvoiceURL(invoiceID), domain.Notification{
			Type:    domain.NotificationError,
			Message: "Unable to verify payment status. Please contact support.",
		})
		return
	}
	if query.OrderID == "" {
		h.redirectWithNotification(c, h.routes.InvoiceURL(invoiceID), domain.Notification{
			Type:    domain.NotificationError,
			Message: "Payment verification failed. No order ID provided.",
		})
		return
	}

	result := h.reconcileSvc.Reconcile(c.Request.Context(), invoiceID, query.OrderID)
	h.redirectWithNotification(c, h.routes.InvoiceURL(invoiceID), result.Notification)
}

func (h *GatewayHandler) redirectWithNotification(c *gin.Context, target string, n domain.Notification) {
	q := url.Values{}
	q.Set("notification_type", string(n.Type))
	q.Set("notification_message", n.Message)
	c.Redirect(http.StatusFound, target+"?"+q.Encode())
}
