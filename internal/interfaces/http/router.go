package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-events/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateProduct *inventory.CreateProductCommand
	ListInventory *inventory.ListInventoryQuery
	CheckStock    *inventory.CheckStockAvailabilityQuery
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	invGroup := api.Group("/inventory")
	handler := NewInventoryHandler(deps.CreateProduct, deps.ListInventory, deps.CheckStock)
	invGroup.Post("/products", handler.CreateProduct)
	invGroup.Get("/products", handler.ListInventory)
	invGroup.Post("/stock/availability", handler.CheckStockAvailability)
}
