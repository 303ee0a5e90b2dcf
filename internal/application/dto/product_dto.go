package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InitialStockRequest stock inicial de un producto en una tienda.
type InitialStockRequest struct {
	StoreID      string `json:"store_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"min=0"`
	MinThreshold int    `json:"min_threshold" validate:"min=0"`
}

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	SKU           string                `json:"sku" validate:"required,max=64"`
	Name          string                `json:"name" validate:"required,max=200"`
	Description   string                `json:"description"`
	PriceUSD      decimal.Decimal       `json:"price_usd"`
	InitialStocks []InitialStockRequest `json:"initial_stocks" validate:"dive"`
}

// UpdateProductRequest body para PUT /api/products/:id. No modifica stock ni is_active.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description"`
	PriceUSD    *decimal.Decimal `json:"price_usd"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	PriceUSD    decimal.Decimal `json:"price_usd"`
	IsActive    bool            `json:"is_active"`
	TotalStock  *int            `json:"total_stock,omitempty"`
	Stocks      []StockResponse `json:"stocks,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
