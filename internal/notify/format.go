package notify

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency formats amounts for notification texts, e.g. $1,234.50.
type Currency struct {
	Symbol  string
	printer *message.Printer
}

// NewCurrency returns a formatter using the symbol and US English digit
// grouping.
func NewCurrency(symbol string) Currency {
	return Currency{
		Symbol:  symbol,
		printer: message.NewPrinter(language.AmericanEnglish),
	}
}

// Amount formats the absolute value with two decimals.
func (c Currency) Amount(d decimal.Decimal) string {
	f, _ := d.Abs().Round(2).Float64()
	return c.p().Sprintf("%s%.2f", c.Symbol, f)
}

// Whole formats the value rounded to whole units.
func (c Currency) Whole(d decimal.Decimal) string {
	s := c.p().Sprintf("%s%d", c.Symbol, d.Abs().Round(0).IntPart())
	if d.Round(0).IsNegative() {
		return "-" + s
	}

	return s
}

func (c Currency) p() *message.Printer {
	if c.printer == nil {
		return message.NewPrinter(language.AmericanEnglish)
	}

	return c.printer
}
