// Package briefing turns positions, risk checks, phase records and news into the
// morning briefing: alert aggregation, run-to-run state, report compilation and rendering.
package briefing

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// q2 quantizes to 2 places, half away from zero
func q2(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// FormatCurrency renders a dollar amount as $1,234.56 or -$1,234.56
func FormatCurrency(v float64) string {
	d := q2(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return sign + "$" + printer.Sprintf("%.2f", d.Abs().InexactFloat64())
}

// FormatPercent renders a percentage with an explicit sign when positive: +1.23%, -0.50%, 0.00%
func FormatPercent(v float64) string {
	d := q2(v)
	if d.IsPositive() {
		return "+" + d.StringFixed(2) + "%"
	}
	return d.StringFixed(2) + "%"
}
