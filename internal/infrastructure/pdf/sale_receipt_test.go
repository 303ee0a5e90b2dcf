package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/tienda-api/internal/domain/entity"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// venta del escenario con IVA: 3 × $2.00 a 40 Bs/USD.
func sampleSale() *entity.Sale {
	return &entity.Sale{
		ID:               "3f2a9c1e-0000-4000-8000-000000000001",
		StoreID:          "w1",
		CreatedAt:        time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Customer:         entity.Customer{Name: "Ana Pérez", IDDoc: "V-12345678"},
		PaymentMethod:    entity.PaymentPunto,
		PaymentReference: "",
		VATRate:          dec("0.16"),
		SubtotalLocal:    dec("206.90"),
		VATLocal:         dec("33.10"),
		TotalLocal:       dec("240.00"),
		TotalUSD:         dec("6.00"),
		FXRateUsed:       dec("40"),
		Lines: []entity.SaleLine{{
			ID: "l1", ProductID: "p1", ProductSKU: "P1", ProductName: "Franela",
			Quantity: 3, UnitPriceUSD: dec("2.00"), UnitPriceLocal: dec("80.00"),
		}},
	}
}

func TestAmountsFor_VES(t *testing.T) {
	a := amountsFor(sampleSale(), entity.CurrencyVES)
	assert.Equal(t, "206.90", a.Base.StringFixed(2))
	assert.Equal(t, "33.10", a.VAT.StringFixed(2))
	assert.Equal(t, "240.00", a.Total.StringFixed(2))
	require.Len(t, a.Lines, 1)
	assert.Equal(t, "240.00", a.Lines[0].Total.StringFixed(2))
}

func TestAmountsFor_USD(t *testing.T) {
	a := amountsFor(sampleSale(), entity.CurrencyUSD)
	assert.Equal(t, "6.00", a.Total.StringFixed(2))
	assert.Equal(t, "0.83", a.VAT.StringFixed(2))
	assert.Equal(t, "5.17", a.Base.StringFixed(2))
	assert.True(t, a.Base.Add(a.VAT).Equal(a.Total))
	assert.Equal(t, "6.00", a.Lines[0].Total.StringFixed(2))
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "1.234.567,89", formatMoney(dec("1234567.891")))
	assert.Equal(t, "Bs 0,50", formatAmount("Bs", dec("0.5")))
}

func TestRenderSale_NoModificaLaVenta(t *testing.T) {
	sale := sampleSale()
	before := *sale

	pdf, err := NewMarotoReceiptGenerator("Mi Tienda").RenderSale(sale, &entity.Store{Name: "Principal", Code: "W1"}, entity.CurrencyUSD)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	assert.True(t, sale.TotalLocal.Equal(before.TotalLocal))
	assert.True(t, sale.VATLocal.Equal(before.VATLocal))
	assert.True(t, sale.FXRateUsed.Equal(before.FXRateUsed))
}
