package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ProductCounts conteo de productos por estado.
type ProductCounts struct {
	Total  int
	Active int
}

// StoreStockTotal stock total por código de tienda.
type StoreStockTotal struct {
	StoreCode string
	Total     int
}

// SalesSummary ventas agregadas de un período.
type SalesSummary struct {
	Count      int
	TotalLocal decimal.Decimal
}

// TopSellerRow unidades vendidas de un producto en un período.
type TopSellerRow struct {
	ProductID  string
	SKU        string
	Name       string
	TotalUnits int
	TotalLines int
}

// ReportRepository consultas de solo lectura sobre datos ya confirmados.
type ReportRepository interface {
	ProductCounts(ctx context.Context) (ProductCounts, error)
	StockByStore(ctx context.Context) ([]StoreStockTotal, error)
	SalesSince(ctx context.Context, since time.Time) (SalesSummary, error)
	// TopSellers ordena por unidades desc, líneas desc, nombre asc. Rango [start, end).
	TopSellers(ctx context.Context, start, end time.Time, limit int) ([]TopSellerRow, error)
}
