package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Compuestos-api/internal/application/catalog"
	"github.com/jhoicas/Compuestos-api/internal/application/ledger"
	"github.com/jhoicas/Compuestos-api/internal/application/order"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	LedgerUC       *ledger.LedgerUseCase
	FormulaUC      *catalog.FormulaUseCase
	SubmitOrderUC  *order.SubmitOrderUseCase
	MetricsEnabled bool
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.MetricsEnabled {
		app.Get("/metrics", MetricsHandler())
	}

	api := app.Group("/api")

	// Materiales y libro mayor
	materials := api.Group("/materials")
	materialHandler := NewMaterialHandler(deps.LedgerUC)
	materials.Post("/", materialHandler.Create)
	materials.Get("/", materialHandler.List)
	materials.Get("/export", materialHandler.ExportStockBook)
	materials.Get("/:id", materialHandler.GetByID)
	materials.Put("/:id", materialHandler.Update)
	materials.Delete("/:id", materialHandler.Delete)
	materials.Post("/:id/transactions", materialHandler.RecordTransaction)
	materials.Get("/:id/transactions", materialHandler.GetHistory)

	// Catálogo de fórmulas
	formulas := api.Group("/formulas")
	formulaHandler := NewFormulaHandler(deps.FormulaUC)
	formulas.Post("/", formulaHandler.Create)
	formulas.Get("/", formulaHandler.List)
	formulas.Get("/:id", formulaHandler.GetByID)
	formulas.Put("/:id", formulaHandler.Update)
	formulas.Delete("/:id", formulaHandler.Delete)

	// Órdenes de producción
	orders := api.Group("/orders")
	orderHandler := NewOrderHandler(deps.SubmitOrderUC)
	orders.Post("/", orderHandler.Submit)
	orders.Get("/", orderHandler.List)
	orders.Get("/:id", orderHandler.GetByID)
	orders.Get("/:id/sheet", orderHandler.GetSheet)
}
