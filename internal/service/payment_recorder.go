package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"cashfree-checkout/internal/core/domain"
	"cashfree-checkout/internal/core/ports"
	"cashfree-checkout/pkg/apperror"
)

// PaymentRecorderImpl implements ports.PaymentRecorder. The transaction
// insert and the invoice status flip commit atomically; the unique
// (invoice, transaction) constraint makes concurrent recordings of the same
// payment collapse to a single row.
type PaymentRecorderImpl struct {
	transactor  ports.DBTransactor
	txRepo      ports.TransactionRepository
	invoiceRepo ports.InvoiceRepository
	log         zerolog.Logger
}

// NewPaymentRecorder creates a new PaymentRecorderImpl.
func NewPaymentRecorder(
	transactor ports.DBTransactor,
	txRepo ports.TransactionRepository,
	invoiceRepo ports.InvoiceRepository,
	log zerolog.Logger,
) *PaymentRecorderImpl {
	return &PaymentRecorderImpl{
		transactor:  transactor,
		txRepo:      txRepo,
		invoiceRepo: invoiceRepo,
		log:         log,
	}
}

// RecordPayment records a confirmed payment and marks its invoice paid.
// Returns false without error when the payment was already recorded.
func (s *PaymentRecorderImpl) RecordPayment(ctx context.Context, invoiceID int64, transactionID string, amount float64, method *string) (bool, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn := &domain.Transaction{
		ID:            uuid.New(),
		InvoiceID:     invoiceID,
		TransactionID: transactionID,
		Gateway:       domain.GatewayName,
		Amount:        amount,
		Method:        method,
		CreatedAt:     time.Now().UTC(),
	}

	inserted, err := s.txRepo.CreateIfAbsent(ctx, dbTx, txn)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}
	if !inserted {
		s.log.Info().
			Int64("invoice_id", invoiceID).
			Str("transaction_id", transactionID).
			Msg("payment already recorded, skipping")
		return false, nil
	}

	if err := s.invoiceRepo.MarkPaid(ctx, dbTx, invoiceID); err != nil {
		return false, apperror.InternalError(fmt.Errorf("mark invoice paid: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return false, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Int64("invoice_id", invoiceID).
		Str("transaction_id", transactionID).
		Float64("amount", amount).
		Msg("payment recorded")

	return true, nil
}
