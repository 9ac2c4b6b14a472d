package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-events/internal/application/dto"
	"github.com/jhoicas/inventory-events/internal/application/inventory"
	"github.com/jhoicas/inventory-events/internal/domain"
	"github.com/jhoicas/inventory-events/internal/domain/event"
)

// InventoryHandler maneja las peticiones HTTP del libro de stock.
type InventoryHandler struct {
	createProduct *inventory.CreateProductCommand
	listInventory *inventory.ListInventoryQuery
	checkStock    *inventory.CheckStockAvailabilityQuery
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	createProduct *inventory.CreateProductCommand,
	listInventory *inventory.ListInventoryQuery,
	checkStock *inventory.CheckStockAvailabilityQuery,
) *InventoryHandler {
	return &InventoryHandler{
		createProduct: createProduct,
		listInventory: listInventory,
		checkStock:    checkStock,
	}
}

// CreateProduct godoc
// @Summary      Crear o completar el registro de inventario de un SKU
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "sku, stockReserved, stockAvailable (contadores opcionales)"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/products [post]
func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.createProduct.Execute(c.Context(), inventory.CreateProductInput{
		SKU:            in.SKU,
		StockReserved:  in.StockReserved,
		StockAvailable: in.StockAvailable,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ProductResponse{
		SKU:            product.SKU,
		StockReserved:  product.StockReserved,
		StockAvailable: product.StockAvailable,
	})
}

// ListInventory godoc
// @Summary      Listar el inventario completo
// @Tags         inventory
// @Produce      json
// @Success      200  {array}   dto.ProductResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/inventory/products [get]
func (h *InventoryHandler) ListInventory(c *fiber.Ctx) error {
	products, err := h.listInventory.Execute(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductResponse{
			SKU:            p.SKU,
			StockReserved:  p.StockReserved,
			StockAvailable: p.StockAvailable,
		})
	}
	return c.Status(fiber.StatusOK).JSON(out)
}

// CheckStockAvailability godoc
// @Summary      Verificar disponibilidad de stock para una orden
// @Description  Verificación advisory: no reserva stock, solo compara el
//
//	disponible actual contra las cantidades pedidas.
//
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockAvailabilityRequest  true  "items: [{sku, quantity}]"
// @Success      200   {object}  dto.StockAvailabilityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/availability [post]
func (h *InventoryHandler) CheckStockAvailability(c *fiber.Ctx) error {
	var in dto.StockAvailabilityRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if len(in.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "items vacío"})
	}
	items := make([]event.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, event.OrderItem{SKU: it.SKU, Quantity: it.Quantity})
	}
	result, err := h.checkStock.Execute(c.Context(), items)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(dto.StockAvailabilityResponse{
		Available: result.Available,
		Message:   result.Message,
	})
}
