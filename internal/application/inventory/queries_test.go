package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventory-events/internal/application/inventory"
	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
)

// ListInventory devuelve todos los registros del libro.
func TestListInventory(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "A", StockAvailable: 10})
	store.seed(entity.Product{SKU: "B", StockReserved: 2, StockAvailable: 5})
	q := inventory.NewListInventoryQuery(&memRepo{products: store.products})

	products, err := q.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "A", products[0].SKU)
	assert.Equal(t, "B", products[1].SKU)
}

func TestListInventory_ErrorEnvuelto(t *testing.T) {
	bang := errors.New("connection refused")
	q := inventory.NewListInventoryQuery(&memRepo{err: bang})

	_, err := q.Execute(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, bang)
	assert.Contains(t, err.Error(), "consultar inventario")
}

// La verificación es una conjunción: todos los ítems deben tener stock suficiente.
func TestCheckStockAvailability(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "A", StockAvailable: 5})
	store.seed(entity.Product{SKU: "B", StockAvailable: 1})
	q := inventory.NewCheckStockAvailabilityQuery(&memRepo{products: store.products})

	cases := []struct {
		name      string
		items     []event.OrderItem
		available bool
	}{
		{"stock exacto", []event.OrderItem{{SKU: "A", Quantity: 5}}, true},
		{"stock suficiente multi-sku", []event.OrderItem{{SKU: "A", Quantity: 2}, {SKU: "B", Quantity: 1}}, true},
		{"cantidad mayor al disponible", []event.OrderItem{{SKU: "A", Quantity: 6}}, false},
		{"un ítem sin stock arrastra la conjunción", []event.OrderItem{{SKU: "A", Quantity: 1}, {SKU: "B", Quantity: 2}}, false},
		{"sku desconocido es no disponible", []event.OrderItem{{SKU: "Z", Quantity: 1}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := q.Execute(context.Background(), tc.items)
			require.NoError(t, err)
			assert.Equal(t, tc.available, result.Available)
			assert.NotEmpty(t, result.Message)
		})
	}
}

// La verificación no reserva ni muta nada (es advisory).
func TestCheckStockAvailability_SinEfectos(t *testing.T) {
	store := newMemStore()
	store.seed(entity.Product{SKU: "A", StockAvailable: 5})
	q := inventory.NewCheckStockAvailabilityQuery(&memRepo{products: store.products})

	_, err := q.Execute(context.Background(), []event.OrderItem{{SKU: "A", Quantity: 3}})
	require.NoError(t, err)
	assert.Equal(t, entity.Product{SKU: "A", StockAvailable: 5}, store.products["A"])
}
