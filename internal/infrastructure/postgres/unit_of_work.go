package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-events/internal/application/inventory"
	"github.com/jhoicas/inventory-events/internal/domain"
	"github.com/jhoicas/inventory-events/internal/domain/repository"
)

var _ inventory.UnitOfWork = (*UnitOfWork)(nil)
var _ inventory.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)

// txBeginner lo satisface *pgxpool.Pool; permite probar la unidad de trabajo
// sin una base de datos real.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Estados de la unidad de trabajo.
type uowState int

const (
	uowIdle uowState = iota
	uowActive
	uowCommitted
	uowRolledBack
	uowDisposed
)

// UnitOfWork coordina una transacción pgx. Cada instancia toma exactamente
// una conexión del pool en Begin y la devuelve exactamente una vez cuando la
// transacción termina (Commit/Rollback liberan en pgx; Dispose cubre los
// caminos donde nadie cerró). Instancia de un solo uso; no es segura para
// uso concurrente: un comando, una unidad de trabajo.
type UnitOfWork struct {
	beginner txBeginner
	tx       pgx.Tx
	state    uowState
}

// NewUnitOfWork construye una unidad de trabajo sobre el pool (o cualquier txBeginner).
func NewUnitOfWork(beginner txBeginner) *UnitOfWork {
	return &UnitOfWork{beginner: beginner, state: uowIdle}
}

// Begin abre la transacción. Falla con ErrTransactionActive si la unidad ya
// fue usada: una instancia no se reutiliza después de cerrar o de Dispose.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.state != uowIdle {
		return domain.ErrTransactionActive
	}
	tx, err := u.beginner.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	u.tx = tx
	u.state = uowActive
	return nil
}

// Commit confirma la transacción. Si el commit falla, revierte antes de
// propagar el error: nunca queda una transacción a medio confirmar.
func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.state != uowActive {
		return domain.ErrNoActiveTransaction
	}
	if err := u.tx.Commit(ctx); err != nil {
		_ = u.tx.Rollback(ctx)
		u.state = uowRolledBack
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.state = uowCommitted
	return nil
}

// Rollback revierte si y solo si hay una transacción activa; en cualquier
// otro estado es un no-op idempotente.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.state != uowActive {
		return nil
	}
	if err := u.tx.Rollback(ctx); err != nil {
		u.state = uowRolledBack
		return fmt.Errorf("rollback transaction: %w", err)
	}
	u.state = uowRolledBack
	return nil
}

// Dispose devuelve la conexión al pool exactamente una vez; llamadas
// posteriores no hacen nada. Si la transacción sigue abierta la revierte
// (camino de pánico o de salida temprana).
func (u *UnitOfWork) Dispose(ctx context.Context) {
	if u.state == uowDisposed {
		return
	}
	if u.state == uowActive {
		_ = u.tx.Rollback(ctx)
	}
	u.tx = nil
	u.state = uowDisposed
}

// Inventory devuelve el repositorio de stock atado a la transacción abierta.
func (u *UnitOfWork) Inventory() (repository.InventoryRepository, error) {
	if u.state != uowActive {
		return nil, domain.ErrNoActiveTransaction
	}
	return NewInventoryRepository(u.tx), nil
}

// ProcessedOrders devuelve el libro de idempotencia atado a la transacción abierta.
func (u *UnitOfWork) ProcessedOrders() (repository.ProcessedOrderRepository, error) {
	if u.state != uowActive {
		return nil, domain.ErrNoActiveTransaction
	}
	return NewProcessedOrderRepository(u.tx), nil
}

// UnitOfWorkFactory produce unidades de trabajo frescas sobre el pool.
// Los comandos piden una por ejecución.
type UnitOfWorkFactory struct {
	beginner txBeginner
}

// NewUnitOfWorkFactory construye la factory con el pool.
func NewUnitOfWorkFactory(beginner txBeginner) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{beginner: beginner}
}

// New devuelve una unidad de trabajo nueva en estado Idle.
func (f *UnitOfWorkFactory) New() inventory.UnitOfWork {
	return NewUnitOfWork(f.beginner)
}
