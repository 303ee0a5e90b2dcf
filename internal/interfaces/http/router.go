package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/fx"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/reports"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/interfaces/ws"
	"github.com/jhoicas/tienda-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CreateSale *sales.CreateSaleUseCase
	SaleQuery  *sales.QueryUseCase
	SalePDF    *sales.PDFUseCase
	FX         *fx.Provider
	ProductUC  *catalog.ProductUseCase
	StoreUC    *catalog.StoreUseCase
	StockUC    *inventory.StockUseCase
	AlertsUC   *inventory.StockAlertsUseCase
	ReportsUC  *reports.UseCase
	Hub        *ws.Hub // nil desactiva /ws
	JWTSecret  string
}

// Router registra las rutas de la API.
//
// Permisos:
//   - ventas: admin, vendedor
//   - escritura de stock: admin, bodeguero
//   - catálogo, tiendas y tasa (escritura): admin
//   - lecturas: cualquier usuario autenticado
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := AuthMiddleware(deps.JWTSecret)
	admin := RequireRole(jwt.RoleAdmin)
	seller := RequireRole(jwt.RoleAdmin, jwt.RoleVendedor)
	warehouse := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)

	if deps.Hub != nil {
		app.Get("/ws", QueryToken, auth, ws.Upgrade, deps.Hub.Handler())
	}

	api := app.Group("/api", auth)

	// Ventas
	saleHandler := NewSaleHandler(deps.CreateSale, deps.SaleQuery, deps.SalePDF)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", seller, saleHandler.Create)
	salesGroup.Get("/", saleHandler.List)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/invoice", saleHandler.InvoicePDF)

	// Tasa de cambio
	fxHandler := NewFXHandler(deps.FX)
	fxGroup := api.Group("/fx")
	fxGroup.Get("/", fxHandler.Current)
	fxGroup.Get("/history", fxHandler.History)
	fxGroup.Post("/", admin, fxHandler.Record)

	// Productos
	productHandler := NewProductHandler(deps.ProductUC, deps.StockUC)
	products := api.Group("/products")
	products.Get("/", productHandler.List)
	products.Post("/", admin, productHandler.Create)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", admin, productHandler.Update)
	products.Get("/:id/stock", productHandler.Stocks)

	// Tiendas
	storeHandler := NewStoreHandler(deps.StoreUC)
	stores := api.Group("/stores")
	stores.Get("/", storeHandler.List)
	stores.Post("/", admin, storeHandler.Create)
	stores.Get("/:id", storeHandler.GetByID)

	// Stock
	stockHandler := NewStockHandler(deps.StockUC, deps.AlertsUC)
	stock := api.Group("/stock")
	stock.Get("/alerts", stockHandler.Alerts)
	stock.Post("/adjust", warehouse, stockHandler.Adjust)
	stock.Put("/", warehouse, stockHandler.Set)
	stock.Delete("/:product_id/:store_id", warehouse, stockHandler.Delete)

	// Reportes
	reportHandler := NewReportHandler(deps.ReportsUC)
	reportsGroup := api.Group("/reports")
	reportsGroup.Get("/stats", reportHandler.Stats)
	reportsGroup.Get("/top-sellers", reportHandler.TopSellers)
}
