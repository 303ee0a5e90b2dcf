package pdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formato venezolano: punto de miles y coma decimal.
var printer = message.NewPrinter(language.MustParse("es-VE"))

// formatMoney 1234567.891 -> "1.234.567,89". Solo presentación.
func formatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprint(number.Decimal(f, number.Scale(2)))
}

// formatAmount antepone el símbolo de moneda.
func formatAmount(symbol string, d decimal.Decimal) string {
	return symbol + " " + formatMoney(d)
}
