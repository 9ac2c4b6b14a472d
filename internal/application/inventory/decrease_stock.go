package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
	"github.com/jhoicas/inventory-events/pkg/logger"
)

// DecreaseStockCommand aplica el descuento de stock de una orden creada:
// por cada ítem descuenta stock_available e incrementa stock_reserved, todo
// dentro de una sola transacción. Es la costura transaccional entre el
// pipeline de mensajería y el libro de stock: o se descuentan todos los SKUs
// de la orden juntos, o ninguno.
//
// La orden se registra en el libro de idempotencia dentro de la misma
// transacción: un redelivery de la misma orden es un no-op seguro.
type DecreaseStockCommand struct {
	uowFactory UnitOfWorkFactory
	timeout    time.Duration
	log        *logger.Logger
}

// NewDecreaseStockCommand construye el comando.
func NewDecreaseStockCommand(uowFactory UnitOfWorkFactory, timeout time.Duration, log *logger.Logger) *DecreaseStockCommand {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &DecreaseStockCommand{uowFactory: uowFactory, timeout: timeout, log: log}
}

// Execute procesa el evento de orden creada. Cualquier fallo hace rollback y
// se propaga envuelto; el caller (el consumer) decide ack/nack según el resultado.
func (c *DecreaseStockCommand) Execute(ctx context.Context, evt event.OrderCreated) error {
	if err := evt.Validate(); err != nil {
		return fmt.Errorf("descontar stock: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	uow := c.uowFactory.New()
	defer uow.Dispose(ctx)

	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("descontar stock: %w", err)
	}

	ledger, err := uow.ProcessedOrders()
	if err != nil {
		return fmt.Errorf("descontar stock: %w", err)
	}

	first, err := ledger.MarkProcessed(ctx, evt.OrderID, evt.CreatedAt)
	if err != nil {
		_ = uow.Rollback(ctx)
		return fmt.Errorf("descontar stock: %w", err)
	}
	if !first {
		// Redelivery: la orden ya fue aplicada; confirmar sin mutar nada.
		if err := uow.Commit(ctx); err != nil {
			return fmt.Errorf("descontar stock: %w", err)
		}
		c.log.Info().Str("order_id", evt.OrderID).Msg("orden ya procesada, se ignora redelivery")
		return nil
	}

	repo, err := uow.Inventory()
	if err != nil {
		_ = uow.Rollback(ctx)
		return fmt.Errorf("descontar stock: %w", err)
	}

	updated, err := repo.UpdateStock(ctx, evt.Products)
	if err != nil {
		_ = uow.Rollback(ctx)
		return fmt.Errorf("descontar stock: %w", err)
	}

	if err := uow.Commit(ctx); err != nil {
		return fmt.Errorf("descontar stock: %w", err)
	}

	c.logSkipped(evt, updated)
	c.log.Info().
		Str("order_id", evt.OrderID).
		Int("items", len(evt.Products)).
		Int("skus_mutados", len(updated)).
		Msg("stock descontado")
	return nil
}

// logSkipped deja rastro de los SKUs de la orden que el libro de stock no
// conocía y por política se omitieron.
func (c *DecreaseStockCommand) logSkipped(evt event.OrderCreated, updated []entity.Product) {
	known := make(map[string]struct{}, len(updated))
	for _, p := range updated {
		known[p.SKU] = struct{}{}
	}
	for _, item := range evt.Products {
		if _, ok := known[item.SKU]; !ok {
			c.log.Warn().
				Str("order_id", evt.OrderID).
				Str("sku", item.SKU).
				Int("quantity", item.Quantity).
				Msg("sku desconocido en la orden, descuento omitido")
		}
	}
}
