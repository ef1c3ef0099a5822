// Package risk evaluates stop proximity, portfolio drawdown and position
// concentration. All money and percent math runs on exact decimals.
package risk

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

func decPtr(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
