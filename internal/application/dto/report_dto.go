package dto

import "github.com/shopspring/decimal"

// StatsResponse resumen del panel.
type StatsResponse struct {
	Products struct {
		Total    int `json:"total"`
		Active   int `json:"active"`
		Inactive int `json:"inactive"`
	} `json:"products"`
	Stock struct {
		Global  int              `json:"global"`
		ByStore []StoreStockItem `json:"by_store"`
	} `json:"stock"`
	SalesLast30d struct {
		Count int             `json:"count"`
		Total decimal.Decimal `json:"total"`
	} `json:"sales_last_30d"`
	FXUSD      decimal.Decimal `json:"fx_usd"`
	FXBase     string          `json:"fx_base"`
	FXCurrency string          `json:"fx_currency"`
}

// StoreStockItem stock total de una tienda.
type StoreStockItem struct {
	StoreCode string `json:"store_code"`
	Total     int    `json:"total"`
}

// TopSellerItem producto más vendido.
type TopSellerItem struct {
	ProductID       string `json:"product_id"`
	Name            string `json:"name"`
	SKU             string `json:"sku"`
	TotalUnits      int    `json:"total_units"`
	TotalSalesLines int    `json:"total_sales_lines"`
}

// TopSellersResponse ranking en un rango de fechas.
type TopSellersResponse struct {
	Range struct {
		Start string `json:"start"`
		End   string `json:"end"`
	} `json:"range"`
	PeriodUsed  string          `json:"period_used"`
	BestSeller  *TopSellerItem  `json:"best_seller"`
	TopProducts []TopSellerItem `json:"top_products"`
}
