// Package pricing congela precios de venta y calcula el desglose de IVA.
// Funciones puras: no leen ni escriben estado.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

// Escalas de redondeo (half-up, lejos de cero).
const (
	MoneyScale = 2
	RateScale  = 4
)

var one = decimal.NewFromInt(1)

// RoundMoney redondea a 2 decimales.
func RoundMoney(d decimal.Decimal) decimal.Decimal { return d.Round(MoneyScale) }

// RoundRate redondea una tasa (cambio o IVA) a 4 decimales.
func RoundRate(d decimal.Decimal) decimal.Decimal { return d.Round(RateScale) }

// EffectiveRate devuelve rate, o 1 si es cero o negativa (evita dividir entre cero).
func EffectiveRate(rate decimal.Decimal) decimal.Decimal {
	if !rate.IsPositive() {
		return one
	}
	return rate
}

// LineInput línea del carrito con los precios que la resuelven.
// Prioridad: UnitPriceUSD explícito > UnitPriceLocal explícito / tasa > CatalogPriceUSD.
type LineInput struct {
	ProductID       string
	Quantity        int
	UnitPriceUSD    *decimal.Decimal
	UnitPriceLocal  *decimal.Decimal
	CatalogPriceUSD decimal.Decimal
}

// PricedLine línea con precios unitarios congelados.
type PricedLine struct {
	ProductID      string
	Quantity       int
	UnitPriceUSD   decimal.Decimal
	UnitPriceLocal decimal.Decimal
	TotalLocal     decimal.Decimal
	// NonPositive marca precios resueltos <= 0. Se aceptan tal cual.
	NonPositive bool
}

// Breakdown resultado del cálculo para toda la venta.
type Breakdown struct {
	Lines         []PricedLine
	Rate          decimal.Decimal // tasa efectivamente usada
	VATRate       decimal.Decimal
	VATApplied    bool
	SubtotalLocal decimal.Decimal // base imponible
	VATLocal      decimal.Decimal
	TotalLocal    decimal.Decimal // total cobrado, IVA incluido
	TotalUSD      decimal.Decimal
}

// ResolveUnitPriceUSD aplica la prioridad de precios de una línea y redondea a 2 decimales.
func ResolveUnitPriceUSD(in LineInput, rate decimal.Decimal) decimal.Decimal {
	switch {
	case in.UnitPriceUSD != nil:
		return RoundMoney(*in.UnitPriceUSD)
	case in.UnitPriceLocal != nil:
		return in.UnitPriceLocal.DivRound(EffectiveRate(rate), MoneyScale)
	default:
		return RoundMoney(in.CatalogPriceUSD)
	}
}

// Calculate congela el precio de cada línea a la tasa dada y desglosa el IVA.
//
// Los precios incluyen IVA: si el método de pago lo causa, la base y el impuesto
// se extraen del total (base = total/(1+iva), iva = base*iva) y la diferencia de
// redondeo se suma al IVA para que base + iva == total exactamente.
func Calculate(lines []LineInput, rate decimal.Decimal, method entity.PaymentMethod, vatRate decimal.Decimal) Breakdown {
	rate = EffectiveRate(rate)
	vatRate = RoundRate(vatRate)

	out := Breakdown{
		Lines:   make([]PricedLine, 0, len(lines)),
		Rate:    rate,
		VATRate: vatRate,
	}

	total := decimal.Zero
	for _, in := range lines {
		usd := ResolveUnitPriceUSD(in, rate)
		local := RoundMoney(usd.Mul(rate))
		lineTotal := local.Mul(decimal.NewFromInt(int64(in.Quantity)))
		total = total.Add(lineTotal)

		out.Lines = append(out.Lines, PricedLine{
			ProductID:      in.ProductID,
			Quantity:       in.Quantity,
			UnitPriceUSD:   usd,
			UnitPriceLocal: local,
			TotalLocal:     lineTotal,
			NonPositive:    !usd.IsPositive(),
		})
	}
	total = RoundMoney(total)

	out.TotalLocal = total
	out.SubtotalLocal, out.VATLocal = SplitVAT(total, vatRate, method.AppliesVAT())
	out.VATApplied = method.AppliesVAT()
	out.TotalUSD = total.DivRound(rate, MoneyScale)
	return out
}

// SplitVAT separa un total con IVA incluido en base e impuesto.
// Sin IVA devuelve (total, 0).
func SplitVAT(total, vatRate decimal.Decimal, applies bool) (base, vat decimal.Decimal) {
	if !applies {
		return total, decimal.Zero
	}
	base = total.DivRound(one.Add(vatRate), MoneyScale)
	vat = RoundMoney(base.Mul(vatRate))
	if diff := total.Sub(base.Add(vat)); !diff.IsZero() {
		vat = vat.Add(diff)
	}
	return base, vat
}
