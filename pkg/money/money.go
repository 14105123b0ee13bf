// Package money formats decimal amounts for display.
package money

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders amounts with a currency symbol, locale digit grouping and
// two fraction digits. Rounding happens only here, never in totals.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

func NewFormatter(symbol string, tag language.Tag) Formatter {
	return Formatter{symbol: symbol, printer: message.NewPrinter(tag)}
}

func (f Formatter) Format(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")

	grouped := whole
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil && f.printer != nil {
		grouped = f.printer.Sprintf("%d", n)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + f.symbol + grouped + "." + frac
}

// FormatOrFree renders zero as "Free", the way shipping is shown.
func (f Formatter) FormatOrFree(d decimal.Decimal) string {
	if d.IsZero() {
		return "Free"
	}
	return f.Format(d)
}
