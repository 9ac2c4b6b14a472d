package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-events/internal/domain/repository"
)

var _ repository.ProcessedOrderRepository = (*ProcessedOrderRepo)(nil)

// ProcessedOrderRepo libro de idempotencia de órdenes sobre PostgreSQL.
// Se usa siempre dentro de la misma transacción que la mutación de stock:
// si la transacción hace rollback, la marca desaparece con ella.
type ProcessedOrderRepo struct {
	q Querier
}

// NewProcessedOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewProcessedOrderRepository(q Querier) *ProcessedOrderRepo {
	return &ProcessedOrderRepo{q: q}
}

// MarkProcessed registra la orden como procesada. Devuelve false si ya
// existía una marca para ese orderID (redelivery del broker).
func (r *ProcessedOrderRepo) MarkProcessed(ctx context.Context, orderID string, createdAt time.Time) (bool, error) {
	query := `
		INSERT INTO processed_orders (order_id, order_created_at, processed_at)
		VALUES ($1, $2, now())
		ON CONFLICT (order_id) DO NOTHING`
	cmd, err := r.q.Exec(ctx, query, orderID, createdAt)
	if err != nil {
		return false, fmt.Errorf("mark order processed: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
