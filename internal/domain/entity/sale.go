package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod método de pago de una venta.
type PaymentMethod string

const (
	PaymentPagoMovil PaymentMethod = "PAGO_MOVIL" // transferencia móvil
	PaymentPunto     PaymentMethod = "PUNTO"      // punto de venta (tarjeta)
	PaymentDivisas   PaymentMethod = "DIVISAS"    // efectivo en divisas
	PaymentUSDT      PaymentMethod = "USDT"
)

// ParsePaymentMethod normaliza (mayúsculas, sin espacios) y valida el método.
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case PaymentPagoMovil, PaymentPunto, PaymentDivisas, PaymentUSDT:
		return m, true
	}
	return m, false
}

// AppliesVAT indica si el método de pago causa IVA (solo pagos en bolívares).
func (m PaymentMethod) AppliesVAT() bool {
	return m == PaymentPagoMovil || m == PaymentPunto
}

// RequiresReference indica si el método exige número de referencia.
func (m PaymentMethod) RequiresReference() bool {
	return m == PaymentPagoMovil
}

// Monedas de pago / impresión.
const (
	CurrencyUSD = "USD"
	CurrencyVES = "VES"
)

// Customer datos del cliente en la venta.
type Customer struct {
	Name    string
	Address string
	IDDoc   string // cédula / RIF
	Phone   string
}

// Sale cabecera de venta. Los montos se congelan al crearla y no se vuelven a calcular.
// SubtotalLocal + VATLocal == TotalLocal; TotalUSD == round(TotalLocal / FXRateUsed, 2).
type Sale struct {
	ID               string
	StoreID          string
	CreatedBy        string
	CreatedAt        time.Time
	Customer         Customer
	PaymentMethod    PaymentMethod
	PaymentReference string
	PayCurrency      string // USD | VES | vacío
	Notes            string
	VATRate          decimal.Decimal
	SubtotalLocal    decimal.Decimal // base imponible (Bs)
	VATLocal         decimal.Decimal // IVA (Bs)
	TotalLocal       decimal.Decimal // total cobrado (Bs)
	TotalUSD         decimal.Decimal
	FXRateUsed       decimal.Decimal // Bs por USD al momento de la venta
	Lines            []SaleLine
}

// SaleLine línea de venta con precios unitarios congelados.
// ProductSKU y ProductName se completan al leer (no se persisten en la línea).
type SaleLine struct {
	ID             string
	SaleID         string
	ProductID      string
	ProductSKU     string
	ProductName    string
	Quantity       int
	UnitPriceUSD   decimal.Decimal
	UnitPriceLocal decimal.Decimal
}

// TotalLocal total de la línea en Bs.
func (l SaleLine) TotalLocal() decimal.Decimal {
	return l.UnitPriceLocal.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// TotalUSD total de la línea en USD.
func (l SaleLine) TotalUSD() decimal.Decimal {
	return l.UnitPriceUSD.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
