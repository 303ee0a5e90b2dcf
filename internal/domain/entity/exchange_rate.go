package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate registro histórico de la tasa Bs por USD. Solo se agregan registros.
type ExchangeRate struct {
	ID            string
	Rate          decimal.Decimal // Bs por 1 USD, 4 decimales, > 0
	EffectiveDate time.Time       // fecha (sin hora) desde la que aplica
	CreatedBy     string
	CreatedAt     time.Time
}
