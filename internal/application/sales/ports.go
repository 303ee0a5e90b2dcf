package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/repository"
)

// SaleTxRunner ejecuta una función dentro de una transacción con repos de stock, productos y ventas.
// Si fn devuelve error se hace rollback completo: ni stock, ni venta, ni líneas.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// RateProvider tasa vigente Bs/USD. Nunca falla.
type RateProvider interface {
	CurrentRate(ctx context.Context) decimal.Decimal
}

// InvoiceRenderer genera el PDF de una venta confirmada. Solo lectura.
type InvoiceRenderer interface {
	RenderSale(sale *entity.Sale, store *entity.Store, currency string) ([]byte, error)
}
