package integration

import (
	"context"
	"fmt"
	"sync"

	"cashfree-checkout/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// --- In-Memory Invoice Repo ---

type inMemoryInvoiceRepo struct {
	mu       sync.RWMutex
	invoices map[int64]*domain.Invoice
}

func newInMemoryInvoiceRepo() *inMemoryInvoiceRepo {
	return &inMemoryInvoiceRepo{invoices: make(map[int64]*domain.Invoice)}
}

func (r *inMemoryInvoiceRepo) put(inv *domain.Invoice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[inv.ID] = inv
}

func (r *inMemoryInvoiceRepo) GetByID(ctx context.Context, id int64) (*domain.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (r *inMemoryInvoiceRepo) MarkPaid(ctx context.Context, tx pgx.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return fmt.Errorf("invoice %d not found", id)
	}
	inv.Status = domain.InvoiceStatusPaid
	return nil
}

func (r *inMemoryInvoiceRepo) status(id int64) domain.InvoiceStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.invoices[id].Status
}

// --- In-Memory Product Repo ---

type inMemoryProductRepo struct {
	mu       sync.RWMutex
	products map[int64]*domain.Product
}

func newInMemoryProductRepo() *inMemoryProductRepo {
	return &inMemoryProductRepo{products: make(map[int64]*domain.Product)}
}

func (r *inMemoryProductRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu      sync.Mutex
	records map[string]*domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{records: make(map[string]*domain.Transaction)}
}

func txKey(invoiceID int64, transactionID string) string {
	return fmt.Sprintf("%d:%s", invoiceID, transactionID)
}

func (r *inMemoryTransactionRepo) Exists(ctx context.Context, invoiceID int64, transactionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.records[txKey(invoiceID, transactionID)]
	return ok, nil
}

// CreateIfAbsent mirrors the unique constraint on (invoice_id, transaction_id):
// the check and insert happen under one lock so concurrent callers cannot
// both insert.
func (r *inMemoryTransactionRepo) CreateIfAbsent(ctx context.Context, tx pgx.Tx, t *domain.Transaction) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := txKey(t.InvoiceID, t.TransactionID)
	if _, ok := r.records[key]; ok {
		return false, nil
	}
	copied := *t
	r.records[key] = &copied
	return true, nil
}

func (r *inMemoryTransactionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// --- In-Memory Gateway Event Repo ---

type inMemoryEventRepo struct {
	mu     sync.Mutex
	events []*domain.GatewayEvent
}

func newInMemoryEventRepo() *inMemoryEventRepo {
	return &inMemoryEventRepo{}
}

func (r *inMemoryEventRepo) Create(ctx context.Context, event *domain.GatewayEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *event
	r.events = append(r.events, &copied)
	return nil
}

func (r *inMemoryEventRepo) outcomes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Outcome)
	}
	return out
}

// --- In-Memory Transactor ---

// fakeTx satisfies pgx.Tx for repos that ignore the transaction handle.
// Only Commit and Rollback are callable; everything else panics through the
// embedded nil interface.
type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(ctx context.Context) error   { return nil }
func (fakeTx) Rollback(ctx context.Context) error { return nil }

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return fakeTx{}, nil
}
