package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
)

// InventoryRepository puerto de persistencia del libro de stock.
// Las implementaciones operan contra el contexto de datos que reciban al
// construirse (pool o transacción); nunca abren su propia transacción.
type InventoryRepository interface {
	// Create hace upsert por SKU. Solo incluye en el write los contadores con
	// valor positivo; sin contadores válidos degenera en insert-si-no-existe.
	// Devuelve el producto tal como se recibió (no relee de la BD).
	Create(ctx context.Context, product *entity.Product) (*entity.Product, error)

	// FindBySKU lookup puntual. Devuelve (nil, nil) si el SKU no existe.
	FindBySKU(ctx context.Context, sku string) (*entity.Product, error)

	// FindAll devuelve todos los registros (sku, stock_available, stock_reserved).
	FindAll(ctx context.Context) ([]entity.Product, error)

	// UpdateStockReserved fija el stock reservado de un SKU.
	// Devuelve ErrProductNotFound si el SKU no existe.
	UpdateStockReserved(ctx context.Context, sku string, value int) error

	// UpdateStockAvailable fija el stock disponible de un SKU.
	// Devuelve ErrProductNotFound si el SKU no existe.
	UpdateStockAvailable(ctx context.Context, sku string, value int) error

	// UpdateStock mutación batched: carga las filas de los SKUs pedidos (con
	// bloqueo de fila), descuenta stock_available e incrementa stock_reserved
	// por cada ítem y persiste todo en un solo batch. SKUs desconocidos se
	// omiten sin error. Si algún disponible quedara negativo devuelve
	// ErrInsufficientStock. Devuelve los registros efectivamente mutados.
	UpdateStock(ctx context.Context, items []event.OrderItem) ([]entity.Product, error)

	// IsStockAvailable true solo si todos los ítems tienen stock disponible
	// suficiente. Un SKU inexistente hace fallar la verificación.
	IsStockAvailable(ctx context.Context, items []event.OrderItem) (bool, error)
}

// ProcessedOrderRepository libro de idempotencia de órdenes consumidas.
type ProcessedOrderRepository interface {
	// MarkProcessed registra orderID como procesada dentro de la transacción
	// actual. Devuelve false si ya estaba registrada (redelivery).
	MarkProcessed(ctx context.Context, orderID string, createdAt time.Time) (bool, error)
}
