package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-ledger/internal/application/catalog"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger        *inventory.LedgerUseCase
	Replenishment *inventory.ReplenishmentUseCase
	Catalog       *catalog.UseCase
	JWTSecret     string
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
//   - lectura: cualquier rol autenticado
//   - reservas: admin, bodeguero y vendedor
//   - movimientos, ajustes, traslados y configuración: admin y bodeguero
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	h := NewInventoryHandler(deps.Ledger, deps.Replenishment, deps.Log)
	inv := protected.Group("/inventory")
	writers := RequireRole(RoleAdmin, RoleBodeguero)
	sellers := RequireRole(RoleAdmin, RoleBodeguero, RoleVendedor)

	records := inv.Group("/stock-records")
	records.Get("/", h.FindStockRecord)
	records.Put("/", writers, h.UpsertStockRecord)
	records.Get("/:id", h.GetStockRecord)
	records.Post("/:id/movements", writers, h.RecordMovement)
	records.Post("/:id/adjust", writers, h.AdjustStock)

	inv.Get("/movements", h.ListMovements)
	inv.Get("/movements/:id", h.GetMovement)
	inv.Post("/transfers", writers, h.Transfer)

	reservations := inv.Group("/reservations", sellers)
	reservations.Post("/", h.Reserve)
	reservations.Post("/release", h.Release)
	reservations.Post("/commit", h.CommitReservation)

	inv.Get("/reorder-suggestions", h.GetReorderSuggestions)

	// Catálogo (solo lectura)
	ch := NewCatalogHandler(deps.Catalog)
	protected.Get("/products/:id", ch.GetProduct)
	protected.Get("/suppliers/:id", ch.GetSupplier)
	protected.Get("/warehouses/:id", ch.GetWarehouse)
}
