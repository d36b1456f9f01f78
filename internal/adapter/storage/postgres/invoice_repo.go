package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"cashfree-checkout/internal/core/domain"
)

// InvoiceRepo implements ports.InvoiceRepository.
type InvoiceRepo struct {
	pool Pool
}

// NewInvoiceRepo creates a new InvoiceRepo.
func NewInvoiceRepo(pool Pool) *InvoiceRepo {
	return &InvoiceRepo{pool: pool}
}

// GetByID fetches an invoice with its customer and line items.
// Returns nil without error when the invoice does not exist.
func (r *InvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	query := `SELECT i.id, i.number, i.description, i.currency_code, i.total, i.status, i.created_at,
		u.id, u.name, u.email, u.phone
		FROM invoices i
		JOIN users u ON u.id = i.user_id
		WHERE i.id = $1`

	inv := &domain.Invoice{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&inv.ID, &inv.Number, &inv.Description, &inv.CurrencyCode,
		&inv.Total, &inv.Status, &inv.CreatedAt,
		&inv.Customer.ID, &inv.Customer.Name, &inv.Customer.Email, &inv.Customer.Phone,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select invoice: %w", err)
	}

	items, err := r.loadItems(ctx, id)
	if err != nil {
		return nil, err
	}
	inv.Items = items

	return inv, nil
}

func (r *InvoiceRepo) loadItems(ctx context.Context, invoiceID int64) ([]domain.LineItem, error) {
	query := `SELECT description, amount, quantity, product_id
		FROM invoice_items WHERE invoice_id = $1 ORDER BY id`

	rows, err := r.pool.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("select invoice items: %w", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var item domain.LineItem
		if err := rows.Scan(&item.Description, &item.Amount, &item.Quantity, &item.ProductID); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}
	return items, nil
}

// MarkPaid flips the invoice to PAID within a database transaction.
func (r *InvoiceRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id int64) error {
	query := `UPDATE invoices SET status = $1, paid_at = now() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, domain.InvoiceStatusPaid, id)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("invoice not found: %d", id)
	}
	return nil
}
