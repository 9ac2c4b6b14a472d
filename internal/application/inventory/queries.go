package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
	"github.com/jhoicas/inventory-events/internal/domain/repository"
)

// ListInventoryQuery lectura del inventario completo. No abre transacción:
// opera contra el repositorio atado al pool.
type ListInventoryQuery struct {
	repo repository.InventoryRepository
}

// NewListInventoryQuery construye la query.
func NewListInventoryQuery(repo repository.InventoryRepository) *ListInventoryQuery {
	return &ListInventoryQuery{repo: repo}
}

// Execute devuelve todos los registros del libro de stock.
func (q *ListInventoryQuery) Execute(ctx context.Context) ([]entity.Product, error) {
	products, err := q.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("consultar inventario: %w", err)
	}
	return products, nil
}

// StockAvailability resultado de la verificación de disponibilidad.
type StockAvailability struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// CheckStockAvailabilityQuery verificación advisory de stock para una orden:
// sin transacción y sin efectos secundarios (no reserva nada, así que entre
// el check y la orden real puede cambiar el stock).
type CheckStockAvailabilityQuery struct {
	repo repository.InventoryRepository
}

// NewCheckStockAvailabilityQuery construye la query.
func NewCheckStockAvailabilityQuery(repo repository.InventoryRepository) *CheckStockAvailabilityQuery {
	return &CheckStockAvailabilityQuery{repo: repo}
}

// Execute devuelve true solo si todos los ítems tienen stock disponible
// suficiente; un SKU desconocido hace fallar la verificación.
func (q *CheckStockAvailabilityQuery) Execute(ctx context.Context, items []event.OrderItem) (StockAvailability, error) {
	available, err := q.repo.IsStockAvailable(ctx, items)
	if err != nil {
		return StockAvailability{}, fmt.Errorf("verificar disponibilidad: %w", err)
	}
	msg := "hay stock disponible para todos los ítems"
	if !available {
		msg = "stock insuficiente o SKU desconocido en la orden"
	}
	return StockAvailability{Available: available, Message: msg}, nil
}
