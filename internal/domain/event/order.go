package event

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/inventory-events/internal/domain"
)

// OrderItem un renglón de la orden: SKU y cantidad pedida.
type OrderItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// OrderCreated evento publicado por el dominio de órdenes cuando se crea una orden.
// Es un payload externo y no confiable: siempre pasar por Validate antes de usarlo.
type OrderCreated struct {
	OrderID   string      `json:"orderId"`
	CreatedAt time.Time   `json:"createdAt"`
	Products  []OrderItem `json:"products"`
}

// DecodeOrderCreated parsea el cuerpo JSON de un mensaje del broker y lo valida.
func DecodeOrderCreated(body []byte) (OrderCreated, error) {
	var evt OrderCreated
	if err := json.Unmarshal(body, &evt); err != nil {
		return OrderCreated{}, fmt.Errorf("%w: payload no es JSON válido: %v", domain.ErrInvalidInput, err)
	}
	if err := evt.Validate(); err != nil {
		return OrderCreated{}, err
	}
	return evt, nil
}

// Validate defiende contra payloads malformados: orderId vacío, lista de
// productos vacía, SKUs en blanco o cantidades no positivas.
func (e OrderCreated) Validate() error {
	if strings.TrimSpace(e.OrderID) == "" {
		return fmt.Errorf("%w: orderId vacío", domain.ErrInvalidInput)
	}
	if len(e.Products) == 0 {
		return fmt.Errorf("%w: orden %s sin productos", domain.ErrInvalidInput, e.OrderID)
	}
	for i, item := range e.Products {
		if strings.TrimSpace(item.SKU) == "" {
			return fmt.Errorf("%w: orden %s con sku vacío en posición %d", domain.ErrInvalidInput, e.OrderID, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: orden %s con cantidad inválida (%d) para sku %s", domain.ErrInvalidInput, e.OrderID, item.Quantity, item.SKU)
		}
	}
	return nil
}
