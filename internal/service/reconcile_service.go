package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
)

// ReconcileServiceImpl implements ports.ReconcileService. The return
// callback carries no signature, so nothing from it is trusted: payment
// state is confirmed against the gateway's order API before anything is
// recorded.
type ReconcileServiceImpl struct {
	invoiceRepo ports.InvoiceRepository
	txRepo      ports.TransactionRepository
	gateway     ports.GatewayClient
	eventRepo   ports.GatewayEventRepository
	recorder    ports.PaymentRecorder
	log         zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl.
func NewReconcileService(
	invoiceRepo ports.InvoiceRepository,
	txRepo ports.TransactionRepository,
	gateway ports.GatewayClient,
	eventRepo ports.GatewayEventRepository,
	recorder ports.PaymentRecorder,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		invoiceRepo: invoiceRepo,
		txRepo:      txRepo,
		gateway:     gateway,
		eventRepo:   eventRepo,
		recorder:    recorder,
		log:         log,
	}
}

// Reconcile confirms the order's payment state with the gateway and records
// the payment when it is settled. It never fails outright: every path yields
// a notification for the payer's redirect.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, invoiceID int64, orderID string) *ports.ReconcileResult {
	result := &ports.ReconcileResult{InvoiceID: invoiceID}

	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		s.log.Error().Err(err).Int64("invoice_id", invoiceID).Msg("invoice lookup failed during reconciliation")
		result.Notification = domain.Notification{
			Type:    domain.NotificationError,
			Message: "Unable to verify your payment right now. Please contact support if you were charged.",
		}
		return result
	}
	if invoice == nil {
		result.Notification = domain.Notification{
			Type:    domain.NotificationError,
			Message: "Invoice not found.",
		}
		return result
	}

	// Already recorded, usually by the webhook racing ahead of the redirect.
	exists, err := s.txRepo.Exists(ctx, invoiceID, orderID)
	if err != nil {
		s.log.Warn().Err(err).Int64("invoice_id", invoiceID).Str("order_id", orderID).Msg("transaction lookup failed, confirming with gateway")
	} else if exists {
		result.Recorded = false
		result.Notification = successNotification(invoice.Total, orderID)
		return result
	}

	order, err := s.gateway.GetOrder(ctx, orderID)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", orderID).Msg("gateway order lookup failed during reconciliation")
		result.Notification = domain.Notification{
			Type:    domain.NotificationError,
			Message: "Unable to verify your payment right now. Please contact support if you were charged.",
		}
		return result
	}

	switch order.Status {
	case domain.OrderStatusPaid:
		recorded, err := s.recorder.RecordPayment(ctx, invoiceID, orderID, order.Amount, nil)
		if err != nil {
			s.log.Error().Err(err).Int64("invoice_id", invoiceID).Str("order_id", orderID).Msg("failed to record reconciled payment")
			result.Notification = domain.Notification{
				Type:    domain.NotificationError,
				Message: "We received your payment but could not record it. Please contact support.",
			}
			return result
		}
		result.Recorded = recorded
		result.Notification = successNotification(order.Amount, orderID)

		outcome := domain.EventOutcomeRecorded
		if !recorded {
			outcome = domain.EventOutcomeDuplicate
		}
		s.recordEvent(ctx, orderID, invoiceID, outcome)

	// ACTIVE covers both an unstarted session and one mid-flight, so it
	// carries the same wait-and-see message as PENDING.
	case domain.OrderStatusActive, domain.OrderStatusPending:
		result.Notification = domain.Notification{
			Type:    domain.NotificationWarning,
			Message: "Your payment is being processed. Please wait for confirmation or check back later.",
		}

	case domain.OrderStatusCancelled:
		result.Notification = domain.Notification{
			Type:    domain.NotificationError,
			Message: "Payment was cancelled. No charges were made.",
		}

	case domain.OrderStatusExpired:
		result.Notification = domain.Notification{
			Type:    domain.NotificationError,
			Message: "Your payment session expired. Please try again.",
		}

	default:
		s.log.Warn().Str("order_id", orderID).Str("status", string(order.Status)).Msg("unrecognized gateway order status")
		result.Notification = domain.Notification{
			Type:    domain.NotificationError,
			Message: "Unable to verify payment status. Please contact support.",
		}
	}

	return result
}

// recordEvent appends the reconciliation outcome to the audit trail.
// Best-effort: recording must never change the payer's redirect.
func (s *ReconcileServiceImpl) recordEvent(ctx context.Context, orderID string, invoiceID int64, outcome string) {
	event := &domain.GatewayEvent{
		ID:        uuid.New(),
		EventType: domain.EventOrderReconciled,
		OrderID:   orderID,
		InvoiceID: &invoiceID,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("order_id", orderID).
			Str("outcome", outcome).
			Msg("failed to record gateway event")
	}
}

func successNotification(amount float64, orderID string) domain.Notification {
	return domain.Notification{
		Type:    domain.NotificationSuccess,
		Message: fmt.Sprintf("Your payment of ₹%.2f has been processed successfully. Transaction ID: %s", amount, orderID),
	}
}
