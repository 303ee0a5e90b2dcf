package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/catalog"
	"github.com/jhoicas/tienda-api/internal/application/fx"
	"github.com/jhoicas/tienda-api/internal/application/inventory"
	"github.com/jhoicas/tienda-api/internal/application/reports"
	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
	"github.com/jhoicas/tienda-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/tienda-api/internal/infrastructure/pdf"
	"github.com/jhoicas/tienda-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/tienda-api/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/tienda-api/internal/interfaces/http"
	"github.com/jhoicas/tienda-api/internal/interfaces/ws"
	"github.com/jhoicas/tienda-api/pkg/config"
	"github.com/jhoicas/tienda-api/pkg/logger"
)

// txRunner transacciones de stock y de venta.
type txRunner interface {
	inventory.TxRunner
	sales.SaleTxRunner
}

// storage repositorios del backend elegido (postgres o memoria).
type storage struct {
	tx       txRunner
	products repository.ProductRepository
	stocks   repository.StockRepository
	stores   repository.StoreRepository
	rates    repository.ExchangeRateRepository
	sales    repository.SaleRepository
	reports  repository.ReportRepository
	close    func()
}

func openStorage(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*storage, error) {
	if cfg.Driver == config.StorageMemory {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		db := memory.New()
		return &storage{
			tx: db, products: db.Products(), stocks: db.Stocks(), stores: db.Stores(),
			rates: db.Rates(), sales: db.Sales(), reports: db.Reports(),
			close: func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	return &storage{
		tx:       postgres.NewTxRunner(pool),
		products: postgres.NewProductRepository(pool),
		stocks:   postgres.NewStockRepository(pool),
		stores:   postgres.NewStoreRepository(pool),
		rates:    postgres.NewExchangeRateRepository(pool),
		sales:    postgres.NewSaleRepository(pool),
		reports:  postgres.NewReportRepository(pool),
		close:    pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := openStorage(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer store.close()

	hub := ws.NewHub(log.Component("ws"))
	go hub.Run(ctx)

	// Tasa: Redis opcional delante del historial.
	var rateCache fx.RateCache = fx.NoopRateCache{}
	if cfg.Redis.Enabled() {
		rc := infraredis.NewRateCache(cfg.Redis, time.Duration(cfg.FX.CacheTTLSeconds)*time.Second)
		if err := rc.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, se usa solo el historial")
			_ = rc.Close()
		} else {
			rateCache = rc
			defer rc.Close()
		}
	}
	provider := fx.NewProvider(store.rates, rateCache, cfg.FX.USDToLocal, log.Component("fx")).WithPublisher(hub)
	if err := provider.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("fx: no se pudo cargar la tasa inicial")
	}

	vatRate, err := decimal.NewFromString(cfg.Sales.VATRate)
	if err != nil {
		log.Warn().Str("vat_rate", cfg.Sales.VATRate).Msg("VAT_RATE inválido, se usa 0.16")
		vatRate = sales.DefaultVATRate
	}

	ledger := inventory.NewLedger()
	createSaleUC := sales.NewCreateSaleUseCase(
		store.tx, ledger, provider,
		store.products, store.stores, store.sales,
		hub, vatRate, log.Component("sales"),
	)
	stockUC := inventory.NewStockUseCase(store.tx, ledger, store.products, store.stores, store.stocks, hub, log.Component("stock"))
	productUC := catalog.NewProductUseCase(store.tx, ledger, store.products, store.stores, store.stocks, hub, log.Component("catalog"))

	// PDF: comprobante de venta
	pdfGenerator := infrapdf.NewMarotoReceiptGenerator(cfg.App.Name)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    "Tienda API",
		}))
	} else {
		log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale: createSaleUC,
		SaleQuery:  sales.NewQueryUseCase(store.sales),
		SalePDF:    sales.NewPDFUseCase(store.sales, store.stores, pdfGenerator),
		FX:         provider,
		ProductUC:  productUC,
		StoreUC:    catalog.NewStoreUseCase(store.stores),
		StockUC:    stockUC,
		AlertsUC:   inventory.NewStockAlertsUseCase(store.products, store.stocks, cfg.Sales.LowStockThreshold),
		ReportsUC:  reports.NewUseCase(store.reports, provider),
		Hub:        hub,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	stop()

	log.Info().Msg("aplicación detenida")
}
