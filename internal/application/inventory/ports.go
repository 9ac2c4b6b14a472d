package inventory

import (
	"context"

	"github.com/jhoicas/inventory-events/internal/domain/repository"
)

// UnitOfWork coordina una transacción de BD para un comando de stock.
// Ciclo de vida: Idle → Begin → Active → Commit/Rollback → Dispose.
// Cada instancia es de un solo uso: después de Dispose no puede volver a Begin.
//
// Disciplina para los comandos: Begin → (mutar vía los repos transaccionales)
// → Commit, con Rollback en el camino de error y Dispose incondicional en
// todas las salidas.
type UnitOfWork interface {
	// Begin abre la transacción. Falla con ErrTransactionActive si la unidad
	// ya fue usada (transacción abierta, cerrada o dispuesta).
	Begin(ctx context.Context) error

	// Commit confirma la transacción abierta. Si el commit falla, ejecuta
	// rollback antes de propagar el error: nunca queda una transacción a
	// medio confirmar.
	Commit(ctx context.Context) error

	// Rollback revierte si y solo si hay una transacción activa; si no, es
	// un no-op idempotente.
	Rollback(ctx context.Context) error

	// Dispose libera la conexión subyacente exactamente una vez; llamadas
	// posteriores no hacen nada. Si la transacción sigue abierta, la revierte.
	Dispose(ctx context.Context)

	// Inventory devuelve el repositorio de stock atado a la transacción.
	// Falla con ErrNoActiveTransaction antes de Begin o después de cerrar.
	Inventory() (repository.InventoryRepository, error)

	// ProcessedOrders devuelve el libro de idempotencia atado a la transacción.
	ProcessedOrders() (repository.ProcessedOrderRepository, error)
}

// UnitOfWorkFactory produce una unidad de trabajo fresca por ejecución de
// comando. El pool de conexiones vive detrás de la factory.
type UnitOfWorkFactory interface {
	New() UnitOfWork
}
