package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-events/internal/domain/entity"
)

// CreateProductCommand crea (o completa) el registro de inventario de un SKU
// dentro de una transacción: validar → begin → upsert → commit.
type CreateProductCommand struct {
	uowFactory UnitOfWorkFactory
	timeout    time.Duration
}

// NewCreateProductCommand construye el comando. timeout acota cada ejecución
// (begin → commit); con cero se usan 5s.
func NewCreateProductCommand(uowFactory UnitOfWorkFactory, timeout time.Duration) *CreateProductCommand {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &CreateProductCommand{uowFactory: uowFactory, timeout: timeout}
}

// CreateProductInput entrada del comando.
type CreateProductInput struct {
	SKU            string
	StockReserved  int
	StockAvailable int
}

// Execute valida la entrada y persiste el upsert de forma atómica.
// Cualquier fallo de validación o persistencia hace rollback y se propaga
// envuelto con el prefijo de la operación.
func (c *CreateProductCommand) Execute(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	product, err := entity.NewProduct(in.SKU, in.StockReserved, in.StockAvailable)
	if err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	uow := c.uowFactory.New()
	defer uow.Dispose(ctx)

	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}

	repo, err := uow.Inventory()
	if err != nil {
		return nil, fmt.Errorf("crear producto: %w", err)
	}

	created, err := repo.Create(ctx, product)
	if err != nil {
		_ = uow.Rollback(ctx)
		return nil, fmt.Errorf("crear producto: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		// Commit ya hizo rollback internamente si falló.
		return nil, fmt.Errorf("crear producto: %w", err)
	}

	return created, nil
}
