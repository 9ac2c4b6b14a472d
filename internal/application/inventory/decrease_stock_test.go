package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-events/internal/application/inventory"
	"github.com/jhoicas/inventory-events/internal/domain"
	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
	"github.com/jhoicas/inventory-events/pkg/logger"
)

func orderEvent(orderID string, items ...event.OrderItem) event.OrderCreated {
	return event.OrderCreated{
		OrderID:   orderID,
		CreatedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		Products:  items,
	}
}

// Caso 1: una orden descuenta disponible e incrementa reservado de forma atómica.
func TestDecreaseStock_DescuentaYReserva(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "X", StockAvailable: 100})
	factory := &memFactory{store: store}
	cmd := inventory.NewDecreaseStockCommand(factory, time.Second, logger.Nop())

	err := cmd.Execute(context.Background(), orderEvent("O1", event.OrderItem{SKU: "X", Quantity: 10}))
	require.NoError(t, err)

	got := store.products["X"]
	assert.Equal(t, 90, got.StockAvailable)
	assert.Equal(t, 10, got.StockReserved)
	assert.True(t, factory.last.committed)
	assert.Equal(t, 1, factory.last.disposes)
}

// Caso 2: una orden multi-SKU se aplica completa o no se aplica.
func TestDecreaseStock_MultiSKUAtomico(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "A", StockAvailable: 10})
	store.seed(entity.Product{SKU: "B", StockAvailable: 2})
	factory := &memFactory{store: store}
	cmd := inventory.NewDecreaseStockCommand(factory, time.Second, logger.Nop())

	// B no alcanza: toda la orden debe revertirse, incluido el descuento de A.
	err := cmd.Execute(context.Background(), orderEvent("O2",
		event.OrderItem{SKU: "A", Quantity: 3},
		event.OrderItem{SKU: "B", Quantity: 5},
	))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, 10, store.products["A"].StockAvailable, "el descuento de A no debe filtrarse")
	assert.Equal(t, 0, store.products["A"].StockReserved)
	assert.True(t, factory.last.rolledBack)
}

// Caso 3: un SKU desconocido junto a uno conocido: el conocido se descuenta,
// el desconocido se omite sin error y la transacción confirma.
func TestDecreaseStock_SKUDesconocidoSeOmite(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "X", StockAvailable: 100})
	factory := &memFactory{store: store}
	cmd := inventory.NewDecreaseStockCommand(factory, time.Second, logger.Nop())

	err := cmd.Execute(context.Background(), orderEvent("O3",
		event.OrderItem{SKU: "X", Quantity: 5},
		event.OrderItem{SKU: "Z", Quantity: 7},
	))
	require.NoError(t, err)

	assert.Equal(t, 95, store.products["X"].StockAvailable)
	assert.Equal(t, 5, store.products["X"].StockReserved)
	_, exists := store.products["Z"]
	assert.False(t, exists, "el SKU desconocido no debe crear fila")
	assert.True(t, factory.last.committed)
}

// Caso 4: redelivery de la misma orden es un no-op seguro (no doble descuento).
func TestDecreaseStock_RedeliveryNoDescuentaDosVeces(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "X", StockAvailable: 100})
	factory := &memFactory{store: store}
	cmd := inventory.NewDecreaseStockCommand(factory, time.Second, logger.Nop())

	evt := orderEvent("O4", event.OrderItem{SKU: "X", Quantity: 10})
	require.NoError(t, cmd.Execute(context.Background(), evt))
	require.NoError(t, cmd.Execute(context.Background(), evt), "el redelivery debe confirmar sin error")

	got := store.products["X"]
	assert.Equal(t, 90, got.StockAvailable, "solo un descuento")
	assert.Equal(t, 10, got.StockReserved)
}

// Caso 5: evento malformado se rechaza antes de abrir transacción.
func TestDecreaseStock_EventoInvalido(t *testing.T) {
	factory := &memFactory{store: newMemStore()}
	cmd := inventory.NewDecreaseStockCommand(factory, time.Second, logger.Nop())

	err := cmd.Execute(context.Background(), orderEvent("", event.OrderItem{SKU: "X", Quantity: 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, factory.last, "no debe construirse ninguna unidad de trabajo")
}

// Caso 6: un fallo del repositorio revierte y deja el libro intacto.
func TestDecreaseStock_FalloHaceRollback(t *testing.T) {
	bang := errors.New("deadlock detected")
	store := newMemStore()
	store.seed(entity.Product{SKU: "X", StockAvailable: 100})
	factory := &memFactory{store: store, repoErr: bang}
	cmd := inventory.NewDecreaseStockCommand(factory, time.Second, logger.Nop())

	err := cmd.Execute(context.Background(), orderEvent("O6", event.OrderItem{SKU: "X", Quantity: 1}))
	require.Error(t, err)
	assert.ErrorIs(t, err, bang)
	assert.Contains(t, err.Error(), "descontar stock")

	assert.Equal(t, 100, store.products["X"].StockAvailable, "el libro no debe cambiar")
	assert.False(t, store.processed["O6"], "la marca de idempotencia se revierte con la transacción")
	assert.True(t, factory.last.rolledBack)
	assert.Equal(t, 1, factory.last.disposes)
}
