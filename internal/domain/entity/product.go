package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo, con precio de referencia en USD.
// IsActive es derivado: stock total (suma de todas las tiendas) > 0.
// Solo lo recalcula el libro de stock; el catálogo no lo expone para escritura.
type Product struct {
	ID          string
	SKU         string // único
	Name        string
	Description string
	PriceUSD    decimal.Decimal // >= 0, 2 decimales
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
