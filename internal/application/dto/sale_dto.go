package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CustomerRequest datos del cliente. Nombre y documento son obligatorios si el pago causa IVA.
type CustomerRequest struct {
	Name    string `json:"name" validate:"max=200"`
	Address string `json:"address" validate:"max=255"`
	IDDoc   string `json:"id_doc" validate:"max=30"`
	Phone   string `json:"phone" validate:"max=30"`
}

// SaleItemRequest línea del carrito. Precio opcional: unit_price_usd > unit_price (Bs) > catálogo.
type SaleItemRequest struct {
	ProductID    string           `json:"product_id" validate:"required"`
	Quantity     int              `json:"quantity" validate:"gt=0"`
	UnitPriceUSD *decimal.Decimal `json:"unit_price_usd,omitempty"`
	UnitPrice    *decimal.Decimal `json:"unit_price,omitempty"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	StoreID          string            `json:"store_id" validate:"required"`
	PaymentMethod    string            `json:"payment_method"`
	PaymentReference string            `json:"payment_reference,omitempty"`
	PayCurrency      string            `json:"pay_currency,omitempty"`
	VATRate          *decimal.Decimal  `json:"vat_rate,omitempty"`
	Notes            string            `json:"notes,omitempty" validate:"max=1000"`
	Customer         CustomerRequest   `json:"customer"`
	Items            []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
}

// SaleLineResponse línea de venta con precios congelados.
type SaleLineResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	SKU            string          `json:"sku,omitempty"`
	Name           string          `json:"name,omitempty"`
	Quantity       int             `json:"quantity"`
	UnitPriceUSD   decimal.Decimal `json:"unit_price_usd"`
	UnitPriceLocal decimal.Decimal `json:"unit_price"`
	LineTotal      decimal.Decimal `json:"line_total"`
}

// CustomerResponse datos del cliente en la venta.
type CustomerResponse struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address,omitempty"`
	IDDoc   string `json:"id_doc,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

// SaleResponse venta confirmada.
type SaleResponse struct {
	ID               string             `json:"id"`
	StoreID          string             `json:"store_id"`
	CreatedBy        string             `json:"created_by"`
	CreatedAt        time.Time          `json:"created_at"`
	Customer         CustomerResponse   `json:"customer"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentReference string             `json:"payment_reference,omitempty"`
	PayCurrency      string             `json:"pay_currency,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	VATRate          decimal.Decimal    `json:"vat_rate"`
	SubtotalLocal    decimal.Decimal    `json:"subtotal_bs"`
	VATLocal         decimal.Decimal    `json:"vat_bs"`
	TotalLocal       decimal.Decimal    `json:"total_bs"`
	TotalUSD         decimal.Decimal    `json:"total_usd"`
	FXRateUsed       decimal.Decimal    `json:"fx_usd"`
	Lines            []SaleLineResponse `json:"lines,omitempty"`
}

// SaleListResponse lista paginada de ventas (sin líneas).
type SaleListResponse struct {
	Items []SaleResponse `json:"items"`
	Page  PageResponse   `json:"page"`
}
