package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventory-events/internal/domain"
	"github.com/jhoicas/inventory-events/internal/domain/entity"
	"github.com/jhoicas/inventory-events/internal/domain/event"
	"github.com/jhoicas/inventory-events/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL
// (usable con pool o tx). Nunca abre su propia transacción.
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// Create hace upsert por SKU incluyendo solo los contadores con valor
// positivo. Sin contadores válidos el conflicto se ignora: una creación sin
// stock no debe poner en cero las cantidades de un SKU ya existente.
// Devuelve el producto tal como se recibió.
func (r *InventoryRepo) Create(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	cols := []string{"sku"}
	args := []any{product.SKU}
	var updates []string

	if product.StockAvailable > 0 {
		cols = append(cols, "stock_available")
		args = append(args, product.StockAvailable)
		updates = append(updates, "stock_available = EXCLUDED.stock_available")
	}
	if product.StockReserved > 0 {
		cols = append(cols, "stock_reserved")
		args = append(args, product.StockReserved)
		updates = append(updates, "stock_reserved = EXCLUDED.stock_reserved")
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	conflict := "ON CONFLICT (sku) DO NOTHING"
	if len(updates) > 0 {
		conflict = "ON CONFLICT (sku) DO UPDATE SET " + strings.Join(updates, ", ")
	}

	query := fmt.Sprintf(
		"INSERT INTO products (%s) VALUES (%s) %s",
		strings.Join(cols, ", "), strings.Join(placeholders, ", "), conflict,
	)
	if _, err := r.q.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}
	return product, nil
}

// FindBySKU lookup puntual. (nil, nil) si el SKU no existe.
func (r *InventoryRepo) FindBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	query := `
		SELECT sku, stock_reserved, stock_available
		FROM products WHERE sku = $1`
	var p entity.Product
	err := r.q.QueryRow(ctx, query, sku).Scan(&p.SKU, &p.StockReserved, &p.StockAvailable)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product by sku: %w", err)
	}
	return &p, nil
}

// FindAll devuelve todos los registros. Sin paginación: la cardinalidad
// esperada del inventario lo permite.
func (r *InventoryRepo) FindAll(ctx context.Context) ([]entity.Product, error) {
	query := `
		SELECT sku, stock_reserved, stock_available
		FROM products ORDER BY sku`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.SKU, &p.StockReserved, &p.StockAvailable); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateStockReserved fija el stock reservado de un SKU existente.
func (r *InventoryRepo) UpdateStockReserved(ctx context.Context, sku string, value int) error {
	return r.updateField(ctx, "stock_reserved", sku, value)
}

// UpdateStockAvailable fija el stock disponible de un SKU existente.
func (r *InventoryRepo) UpdateStockAvailable(ctx context.Context, sku string, value int) error {
	return r.updateField(ctx, "stock_available", sku, value)
}

func (r *InventoryRepo) updateField(ctx context.Context, column, sku string, value int) error {
	query := fmt.Sprintf("UPDATE products SET %s = $2 WHERE sku = $1", column)
	cmd, err := r.q.Exec(ctx, query, sku, value)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// UpdateStock mutación batched de la orden: carga todas las filas
// involucradas en un solo round trip con FOR UPDATE (serializa descuentos
// concurrentes sobre el mismo SKU), aplica los deltas en memoria y persiste
// todo en un solo batch. SKUs ausentes del libro se omiten sin error.
// Si algún disponible quedara negativo, devuelve ErrInsufficientStock.
func (r *InventoryRepo) UpdateStock(ctx context.Context, items []event.OrderItem) ([]entity.Product, error) {
	if len(items) == 0 {
		return nil, nil
	}

	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}

	query := `
		SELECT sku, stock_reserved, stock_available
		FROM products WHERE sku = ANY($1)
		FOR UPDATE`
	rows, err := r.q.Query(ctx, query, skus)
	if err != nil {
		return nil, fmt.Errorf("lock stock rows: %w", err)
	}

	bySKU := make(map[string]*entity.Product)
	var order []string // orden de filas para un batch determinista
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(&p.SKU, &p.StockReserved, &p.StockAvailable); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan stock row: %w", err)
		}
		bySKU[p.SKU] = &p
		order = append(order, p.SKU)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("lock stock rows: %w", err)
	}

	for _, item := range items {
		p, ok := bySKU[item.SKU]
		if !ok {
			continue // SKU desconocido para el inventario: se omite
		}
		p.StockAvailable -= item.Quantity
		p.StockReserved += item.Quantity
		if p.StockAvailable < 0 {
			return nil, fmt.Errorf("%w: sku %s", domain.ErrInsufficientStock, item.SKU)
		}
	}

	batch := &pgx.Batch{}
	updated := make([]entity.Product, 0, len(order))
	for _, sku := range order {
		p := bySKU[sku]
		batch.Queue(
			"UPDATE products SET stock_reserved = $2, stock_available = $3 WHERE sku = $1",
			p.SKU, p.StockReserved, p.StockAvailable,
		)
		updated = append(updated, *p)
	}

	br := r.q.SendBatch(ctx, batch)
	defer br.Close()
	for range order {
		if _, err := br.Exec(); err != nil {
			return nil, fmt.Errorf("persist stock batch: %w", err)
		}
	}
	return updated, nil
}

// IsStockAvailable carga el disponible de los SKUs pedidos en un round trip
// y exige que todos los ítems tengan stock suficiente. Un SKU inexistente
// hace fallar la verificación.
func (r *InventoryRepo) IsStockAvailable(ctx context.Context, items []event.OrderItem) (bool, error) {
	if len(items) == 0 {
		return true, nil
	}

	skus := make([]string, 0, len(items))
	for _, item := range items {
		skus = append(skus, item.SKU)
	}

	query := `
		SELECT sku, stock_available
		FROM products WHERE sku = ANY($1)`
	rows, err := r.q.Query(ctx, query, skus)
	if err != nil {
		return false, fmt.Errorf("get stock availability: %w", err)
	}
	defer rows.Close()

	available := make(map[string]int)
	for rows.Next() {
		var sku string
		var stock int
		if err := rows.Scan(&sku, &stock); err != nil {
			return false, fmt.Errorf("scan stock availability: %w", err)
		}
		available[sku] = stock
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("get stock availability: %w", err)
	}

	for _, item := range items {
		stock, ok := available[item.SKU]
		if !ok || stock < item.Quantity {
			return false, nil
		}
	}
	return true, nil
}
