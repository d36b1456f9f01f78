package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor implements ports.DBTransactor. Payment recording inserts the
// transaction row and flips the invoice to paid inside one transaction, so
// the webhook and the return callback cannot half-apply the same payment.
type Transactor struct {
	pool Pool
}

// NewTransactor creates a Transactor on top of the shared connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction for the caller to commit or roll back.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
