// Package pdf genera el comprobante de venta en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + código      │  N° venta + Fecha            │
//	│  CLIENTE: Nombre + documento + contacto                      │
//	│  TABLA: Cant | Descripción | P.Unit | Total                  │
//	│  TOTALES: Base imponible / IVA / TOTAL                       │
//	│  PIE: método de pago + tasa + QR                             │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/tienda-api/internal/application/sales"
	"github.com/jhoicas/tienda-api/internal/domain/entity"
	"github.com/jhoicas/tienda-api/internal/domain/pricing"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var _ sales.InvoiceRenderer = (*MarotoReceiptGenerator)(nil)

// MarotoReceiptGenerator implementa sales.InvoiceRenderer usando Maroto v2.
type MarotoReceiptGenerator struct {
	companyName string
}

// NewMarotoReceiptGenerator construye el generador. companyName va en el encabezado.
func NewMarotoReceiptGenerator(companyName string) *MarotoReceiptGenerator {
	return &MarotoReceiptGenerator{companyName: companyName}
}

// lineAmounts montos de una línea en la moneda de impresión.
type lineAmounts struct {
	Quantity  int
	Name      string
	SKU       string
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// receiptAmounts montos a imprimir. Solo presentación: la venta no se modifica.
type receiptAmounts struct {
	Currency string
	Symbol   string
	Lines    []lineAmounts
	Base     decimal.Decimal
	VAT      decimal.Decimal
	Total    decimal.Decimal
}

// amountsFor en VES muestra los montos guardados; en USD convierte base e IVA con
// la tasa de la venta y muestra el total USD guardado.
func amountsFor(sale *entity.Sale, currency string) receiptAmounts {
	out := receiptAmounts{Currency: currency}
	if currency == entity.CurrencyVES {
		out.Symbol = "Bs"
		out.Base, out.VAT, out.Total = sale.SubtotalLocal, sale.VATLocal, sale.TotalLocal
		for _, l := range sale.Lines {
			out.Lines = append(out.Lines, lineAmounts{
				Quantity: l.Quantity, Name: l.ProductName, SKU: l.ProductSKU,
				UnitPrice: l.UnitPriceLocal, Total: l.TotalLocal(),
			})
		}
		return out
	}

	out.Symbol = "$"
	rate := pricing.EffectiveRate(sale.FXRateUsed)
	out.Total = sale.TotalUSD
	out.VAT = sale.VATLocal.DivRound(rate, pricing.MoneyScale)
	out.Base = out.Total.Sub(out.VAT)
	for _, l := range sale.Lines {
		out.Lines = append(out.Lines, lineAmounts{
			Quantity: l.Quantity, Name: l.ProductName, SKU: l.ProductSKU,
			UnitPrice: l.UnitPriceUSD, Total: l.TotalUSD(),
		})
	}
	return out
}

// RenderSale genera el PDF y devuelve sus bytes.
func (g *MarotoReceiptGenerator) RenderSale(sale *entity.Sale, store *entity.Store, currency string) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprobante de venta", true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)
	amounts := amountsFor(sale, currency)

	m.AddRows(g.headerRow(sale, store))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(customerRow(sale.Customer))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(amounts)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(sale, amounts))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow(sale))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

func (g *MarotoReceiptGenerator) headerRow(sale *entity.Sale, store *entity.Store) core.Row {
	storeLine := nonEmpty(store.Name, "—")
	if store.Code != "" {
		storeLine += " (" + store.Code + ")"
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(nonEmpty(g.companyName, "Tienda"), props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("Sede: "+storeLine, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(5).Add(
			text.New("COMPROBANTE DE VENTA", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New("N° "+shortID(sale.ID), props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+sale.CreatedAt.Format("02/01/2006 15:04"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

func customerRow(c entity.Customer) core.Row {
	return row.New(14).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1}),
			text.New(nonEmpty(c.Name, "Consumidor final"), props.Text{Style: fontstyle.Bold, Size: 10, Top: 6}),
			text.New(fmt.Sprintf("C.I./RIF: %s   |   Tel: %s   |   Dirección: %s",
				nonEmpty(c.IDDoc, "—"), nonEmpty(c.Phone, "—"), nonEmpty(c.Address, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	)
}

// tableHeaderRow cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Cant.", 1, align.Center),
		h("Descripción", 6, align.Left),
		h("Precio Unit.", 2, align.Right),
		h("Total", 3, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableDetailRows(a receiptAmounts) []core.Row {
	result := make([]core.Row, 0, len(a.Lines))
	for _, l := range a.Lines {
		desc := l.Name
		if l.SKU != "" {
			desc = l.SKU + " · " + l.Name
		}
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(fmt.Sprintf("%d", l.Quantity), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(6).Add(text.New(desc, props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1})),
			col.New(2).Add(text.New(formatAmount(a.Symbol, l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(3).Add(text.New(formatAmount(a.Symbol, l.Total), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

func totalsRow(sale *entity.Sale, a receiptAmounts) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	vatLabel := "IVA (" + sale.VATRate.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%):"
	if !sale.PaymentMethod.AppliesVAT() {
		vatLabel = "IVA (exento):"
	}
	return row.New(22).Add(
		col.New(6),
		col.New(3).Add(
			label("Base imponible:", 1),
			label(vatLabel, 6),
			text.New("TOTAL "+a.Currency+":", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 12,
			}),
		),
		col.New(3).Add(
			value(formatAmount(a.Symbol, a.Base), 1),
			value(formatAmount(a.Symbol, a.VAT), 6),
			text.New(formatAmount(a.Symbol, a.Total), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 12,
			}),
		),
	)
}

func footerRow(sale *entity.Sale) core.Row {
	payment := string(sale.PaymentMethod)
	if sale.PaymentReference != "" {
		payment += "  ref. " + sale.PaymentReference
	}
	qr := fmt.Sprintf("%s|%s|%s|%s", sale.ID, sale.CreatedAt.Format("2006-01-02"),
		sale.TotalLocal.StringFixed(2), sale.TotalUSD.StringFixed(2))
	return row.New(40).Add(
		col.New(3).Add(code.NewQr(qr, props.Rect{Percent: 95, Center: true})),
		col.New(9).Add(
			text.New("Pago: "+payment, props.Text{Size: 9, Top: 4, Left: 3}),
			text.New("Tasa: 1 USD = "+formatAmount("Bs", sale.FXRateUsed), props.Text{Size: 9, Top: 10, Left: 3}),
			text.New(fmt.Sprintf("Equivalente: %s  /  %s",
				formatAmount("Bs", sale.TotalLocal), formatAmount("$", sale.TotalUSD)),
				props.Text{Size: 8, Top: 16, Left: 3, Color: colorGray}),
			text.New(nonEmpty(sale.Notes, ""), props.Text{Size: 8, Top: 22, Left: 3, Color: colorGray}),
		),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
