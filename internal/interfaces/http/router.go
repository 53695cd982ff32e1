package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-core/internal/application/inventory"
	"github.com/jhoicas/inventario-core/internal/application/product"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC *product.UseCase
	Mutator   *inventory.InventoryMutator
	AlertUC   *inventory.AlertUseCase
	Queries   *inventory.InventoryQueries
	JWTSecret string
}

// Router registra las rutas de la API. Todas las operaciones requieren Bearer
// Token: sin actor identificado no hay auditoría posible.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api/v1", ActorMiddleware(deps.JWTSecret))

	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/sku/:sku", productHandler.GetBySKU)
	products.Get("/barcode/:barcode", productHandler.GetByBarcode)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	inventoryHandler := NewInventoryHandler(deps.Mutator, deps.Queries)
	products.Get("/:id/movements", inventoryHandler.ListMovements)

	inv := api.Group("/inventory")
	inv.Post("/in", inventoryHandler.StockIn)
	inv.Post("/out", inventoryHandler.StockOut)
	inv.Post("/adjustments", inventoryHandler.Adjust)
	inv.Post("/transfers", inventoryHandler.Transfer)
	inv.Get("/low-stock", inventoryHandler.ListLowStock)

	alerts := api.Group("/alerts")
	alertHandler := NewAlertHandler(deps.AlertUC, deps.Queries)
	alerts.Get("/", alertHandler.List)
	alerts.Post("/:id/resolve", alertHandler.Resolve)
	alerts.Post("/:id/ignore", alertHandler.Ignore)
}
