package entity

import (
	"fmt"
	"strings"

	"github.com/jhoicas/inventory-events/internal/domain"
)

// MaxSKULength longitud máxima del SKU (coincide con varchar(50) en la tabla products).
const MaxSKULength = 50

// Product representa el registro de inventario de un SKU.
// Los contadores son enteros no negativos: StockAvailable es lo vendible y
// StockReserved lo comprometido por órdenes en curso.
type Product struct {
	SKU            string `json:"sku"`
	StockReserved  int    `json:"stockReserved"`
	StockAvailable int    `json:"stockAvailable"`
}

// NewProduct valida y construye un registro de inventario.
// Rechaza SKU vacío o demasiado largo y contadores negativos antes de tocar la BD.
func NewProduct(sku string, stockReserved, stockAvailable int) (*Product, error) {
	if strings.TrimSpace(sku) == "" {
		return nil, fmt.Errorf("%w: sku vacío", domain.ErrInvalidInput)
	}
	if len(sku) > MaxSKULength {
		return nil, fmt.Errorf("%w: sku supera %d caracteres", domain.ErrInvalidInput, MaxSKULength)
	}
	if stockReserved < 0 {
		return nil, fmt.Errorf("%w: stock reservado negativo (%d)", domain.ErrInvalidInput, stockReserved)
	}
	if stockAvailable < 0 {
		return nil, fmt.Errorf("%w: stock disponible negativo (%d)", domain.ErrInvalidInput, stockAvailable)
	}
	return &Product{
		SKU:            sku,
		StockReserved:  stockReserved,
		StockAvailable: stockAvailable,
	}, nil
}
