package postgres

import (
	"context"
	"fmt"

	"cashfree-checkout/internal/core/domain"
)

// GatewayEventRepo implements ports.GatewayEventRepository.
type GatewayEventRepo struct {
	pool Pool
}

// NewGatewayEventRepo creates a new GatewayEventRepo.
func NewGatewayEventRepo(pool Pool) *GatewayEventRepo {
	return &GatewayEventRepo{pool: pool}
}

// Create appends one gateway event to the audit trail.
func (r *GatewayEventRepo) Create(ctx context.Context, event *domain.GatewayEvent) error {
	query := `INSERT INTO gateway_events (id, event_type, order_id, invoice_id, outcome, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		event.ID, event.EventType, event.OrderID, event.InvoiceID,
		event.Outcome, event.Payload, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert gateway event: %w", err)
	}
	return nil
}
