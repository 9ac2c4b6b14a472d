package dto

// CreateProductRequest body para POST /api/inventory/products.
// Los contadores ausentes llegan como cero y el upsert los omite.
type CreateProductRequest struct {
	SKU            string `json:"sku"`
	StockReserved  int    `json:"stockReserved"`
	StockAvailable int    `json:"stockAvailable"`
}

// ProductResponse registro de inventario expuesto por la API.
type ProductResponse struct {
	SKU            string `json:"sku"`
	StockReserved  int    `json:"stockReserved"`
	StockAvailable int    `json:"stockAvailable"`
}

// StockItemRequest un ítem de la verificación de disponibilidad.
type StockItemRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// StockAvailabilityRequest body para POST /api/inventory/stock/availability.
type StockAvailabilityRequest struct {
	Items []StockItemRequest `json:"items"`
}

// StockAvailabilityResponse resultado de la verificación.
type StockAvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
