package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
	"cashfree-checkout/pkg/apperror"
)

// WebhookServiceImpl implements ports.WebhookService. Signature failures are
// the only rejection path; once a notification is authenticated it is always
// acknowledged unless a storage fault makes a retry worthwhile.
type WebhookServiceImpl struct {
	signature   ports.SignatureService
	dedupe      ports.DedupeStore
	invoiceRepo ports.InvoiceRepository
	txRepo      ports.TransactionRepository
	eventRepo   ports.GatewayEventRepository
	recorder    ports.PaymentRecorder
	log         zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	signature ports.SignatureService,
	dedupe ports.DedupeStore,
	invoiceRepo ports.InvoiceRepository,
	txRepo ports.TransactionRepository,
	eventRepo ports.GatewayEventRepository,
	recorder ports.PaymentRecorder,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		signature:   signature,
		dedupe:      dedupe,
		invoiceRepo: invoiceRepo,
		txRepo:      txRepo,
		eventRepo:   eventRepo,
		recorder:    recorder,
		log:         log,
	}
}

// HandleNotification verifies and processes one inbound gateway webhook.
// A nil return means the notification was consumed and the gateway must
// receive a 200, even when nothing was recorded.
func (s *WebhookServiceImpl) HandleNotification(ctx context.Context, timestamp, signature string, body []byte) error {
	if !s.signature.Verify(timestamp, body, signature) {
		s.log.Warn().Str("timestamp", timestamp).Msg("webhook signature verification failed")
		return apperror.ErrWebhookSignature()
	}

	// Redis dedupe is a fast-path shortcut only. The database constraint
	// remains the source of truth, so a Redis fault degrades to a slower
	// path instead of failing the webhook.
	fresh, err := s.dedupe.CheckAndSet(ctx, signature)
	if err != nil {
		s.log.Warn().Err(err).Msg("webhook dedupe check failed, falling through to DB")
	} else if !fresh {
		s.log.Info().Str("timestamp", timestamp).Msg("webhook already seen, acknowledging")
		return nil
	}

	var notification domain.WebhookNotification
	if err := json.Unmarshal(body, &notification); err != nil {
		s.log.Warn().Err(err).Msg("webhook payload unparseable, acknowledging")
		return nil
	}

	order := notification.Data.Order
	if notification.Type != domain.EventPaymentSuccess {
		s.log.Info().
			Str("event_type", notification.Type).
			Str("order_id", order.OrderID).
			Msg("ignoring non-payment webhook event")
		s.recordEvent(ctx, &notification, nil, domain.EventOutcomeIgnored, body)
		return nil
	}

	invoiceID, ok := order.InvoiceID()
	if !ok {
		s.log.Warn().
			Str("order_id", order.OrderID).
			Msg("webhook order carries no usable invoice tag, acknowledging")
		s.recordEvent(ctx, &notification, nil, domain.EventOutcomeFailed, body)
		return nil
	}

	invoice, err := s.invoiceRepo.GetByID(ctx, invoiceID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load invoice %d: %w", invoiceID, err))
	}
	if invoice == nil {
		s.log.Warn().
			Int64("invoice_id", invoiceID).
			Str("order_id", order.OrderID).
			Msg("webhook references unknown invoice, acknowledging")
		s.recordEvent(ctx, &notification, &invoiceID, domain.EventOutcomeFailed, body)
		return nil
	}

	if order.OrderAmount != invoice.Total {
		s.log.Warn().
			Int64("invoice_id", invoiceID).
			Float64("invoice_total", invoice.Total).
			Float64("paid_amount", order.OrderAmount).
			Msg("paid amount differs from invoice total")
	}

	exists, err := s.txRepo.Exists(ctx, invoiceID, order.OrderID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check transaction exists: %w", err))
	}
	if exists {
		s.recordEvent(ctx, &notification, &invoiceID, domain.EventOutcomeDuplicate, body)
		return nil
	}

	recorded, err := s.recorder.RecordPayment(ctx, invoiceID, order.OrderID, order.OrderAmount, nil)
	if err != nil {
		return err
	}

	outcome := domain.EventOutcomeRecorded
	if !recorded {
		outcome = domain.EventOutcomeDuplicate
	}
	s.recordEvent(ctx, &notification, &invoiceID, outcome, body)

	s.log.Info().
		Int64("invoice_id", invoiceID).
		Str("order_id", order.OrderID).
		Bool("recorded", recorded).
		Msg("webhook processed")

	return nil
}

// recordEvent appends to the audit trail. Failures are logged, never
// propagated; the audit trail must not decide webhook outcomes.
func (s *WebhookServiceImpl) recordEvent(ctx context.Context, n *domain.WebhookNotification, invoiceID *int64, outcome string, payload []byte) {
	event := &domain.GatewayEvent{
		ID:        uuid.New(),
		EventType: n.Type,
		OrderID:   n.Data.Order.OrderID,
		InvoiceID: invoiceID,
		Outcome:   outcome,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Warn().Err(err).
			Str("order_id", event.OrderID).
			Str("outcome", outcome).
			Msg("failed to record gateway event")
	}
}
