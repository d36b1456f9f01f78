package ports

import (
	"context"

	"github.com/jackc/pgx/v5"

	"cashfree-checkout/internal/core/domain"
)

// DBTransactor begins database transactions so multi-step writes commit or
// roll back as one unit.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// InvoiceRepository loads invoices with their customer and line items and
// flips them to PAID inside a caller-owned transaction.
type InvoiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Invoice, error)
	MarkPaid(ctx context.Context, tx pgx.Tx, id int64) error
}

// ProductRepository resolves catalog products referenced by invoice items.
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// TransactionRepository persists recorded payments. CreateIfAbsent is the
// idempotency anchor: it returns false without error when a row for the same
// (invoice, transaction) pair already exists.
type TransactionRepository interface {
	Exists(ctx context.Context, invoiceID int64, transactionID string) (bool, error)
	CreateIfAbsent(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (bool, error)
}

// GatewayEventRepository appends to the gateway notification audit trail.
type GatewayEventRepository interface {
	Create(ctx context.Context, event *domain.GatewayEvent) error
}

// DedupeStore remembers processed notification ids for a bounded window.
// CheckAndSet returns true when the key was newly set, false when it was
// already present.
type DedupeStore interface {
	CheckAndSet(ctx context.Context, key string) (bool, error)
}
