package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordRateRequest body para POST /api/fx.
type RecordRateRequest struct {
	Rate decimal.Decimal `json:"rate"`
}

// CurrentRateResponse tasa vigente. Rate redondeada a 2 decimales para mostrar, RateRaw a 4.
type CurrentRateResponse struct {
	Base     string          `json:"base"`
	Currency string          `json:"currency"`
	Rate     decimal.Decimal `json:"rate"`
	RateRaw  decimal.Decimal `json:"rate_raw"`
}

// ExchangeRateResponse registro del historial de tasas.
type ExchangeRateResponse struct {
	ID            string          `json:"id"`
	Rate          decimal.Decimal `json:"rate"`
	EffectiveDate string          `json:"effective_date"` // YYYY-MM-DD
	CreatedBy     string          `json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
}
