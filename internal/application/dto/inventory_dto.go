package dto

import "time"

// AdjustStockRequest body para POST /api/stock/adjust. Delta con signo, distinto de 0.
type AdjustStockRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	StoreID   string `json:"store_id" validate:"required"`
	Delta     int    `json:"delta" validate:"ne=0"`
}

// SetStockRequest body para PUT /api/stock. Fija la cantidad absoluta.
type SetStockRequest struct {
	ProductID    string `json:"product_id" validate:"required"`
	StoreID      string `json:"store_id" validate:"required"`
	Quantity     int    `json:"quantity" validate:"min=0"`
	MinThreshold *int   `json:"min_threshold,omitempty" validate:"omitempty,min=0"`
}

// StockResponse stock de un producto en una tienda.
type StockResponse struct {
	ProductID     string    `json:"product_id"`
	StoreID       string    `json:"store_id"`
	Quantity      int       `json:"quantity"`
	MinThreshold  int       `json:"min_threshold"`
	ProductActive bool      `json:"product_active"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockAlertItem producto en una de las listas de alerta.
type StockAlertItem struct {
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	Name       string `json:"name"`
	TotalStock int    `json:"total_stock"`
	Threshold  int    `json:"threshold"`
	IsActive   bool   `json:"is_active"`
}

// StockAlertsResponse alertas de stock agrupadas.
type StockAlertsResponse struct {
	FallbackThreshold int              `json:"fallback_threshold"`
	Inactive          []StockAlertItem `json:"inactive"`
	OutOfStock        []StockAlertItem `json:"out_of_stock"`
	LowStock          []StockAlertItem `json:"low_stock"`
}
