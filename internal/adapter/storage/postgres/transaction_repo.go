package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cashfree-checkout/internal/core/domain"
)

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Exists reports whether a payment was already recorded for the pair.
func (r *TransactionRepo) Exists(ctx context.Context, invoiceID int64, transactionID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM transactions WHERE invoice_id = $1 AND transaction_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, invoiceID, transactionID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check transaction exists: %w", err)
	}
	return exists, nil
}

// CreateIfAbsent inserts a transaction within a database transaction. The
// unique (invoice_id, transaction_id) constraint absorbs concurrent inserts
// of the same payment; the losing insert reports false without error.
func (r *TransactionRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (bool, error) {
	query := `INSERT INTO transactions (id, invoice_id, transaction_id, gateway, amount, method, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (invoice_id, transaction_id) DO NOTHING`

	tag, err := tx.Exec(ctx, query,
		t.ID, t.InvoiceID, t.TransactionID, t.Gateway, t.Amount, t.Method, t.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert transaction: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
