package positions

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/ternarybob/riskos/internal/models"
)

// number extracts a decimal from a JSON value that may be a number, a numeric
// string or an {"amount"|"value": ...} object.
func number(v interface{}) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case string:
		d, err := decimal.NewFromString(cleanNumber(t))
		return d, err == nil
	case map[string]interface{}:
		for _, key := range []string{"amount", "value"} {
			if inner, ok := t[key]; ok {
				return number(inner)
			}
		}
	}
	return decimal.Zero, false
}

// firstNumber returns the first key present with a numeric value
func firstNumber(m map[string]interface{}, keys ...string) (decimal.Decimal, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok && v != nil {
			if d, ok := number(v); ok {
				return d, true
			}
		}
	}
	return decimal.Zero, false
}

func cleanNumber(s string) string {
	return strings.NewReplacer(",", "", "%", "", "$", "").Replace(strings.TrimSpace(s))
}

// symbolOf reads a symbol from an instrument object ({symbol} or {ticker}) or a bare string
func symbolOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.ToUpper(strings.TrimSpace(t))
	case map[string]interface{}:
		for _, key := range []string{"symbol", "ticker"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.ToUpper(strings.TrimSpace(s))
			}
		}
	}
	return ""
}

func asMap(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

func asSlice(v interface{}) []interface{} {
	s, _ := v.([]interface{})
	return s
}

func floatPtr(d decimal.Decimal) *float64 {
	f := d.InexactFloat64()
	return &f
}

// NormalizePosition maps one upstream position object to the canonical record.
// Returns false when the row has no symbol or a net quantity <= 0.
func NormalizePosition(raw map[string]interface{}) (models.Position, bool) {
	symbol := symbolOf(raw["instrument"])
	if symbol == "" {
		symbol = symbolOf(raw["symbol"])
	}
	if symbol == "" {
		symbol = symbolOf(raw["ticker"])
	}
	if symbol == "" {
		return models.Position{}, false
	}

	long, _ := firstNumber(raw, "longQuantity", "quantity")
	short, _ := firstNumber(raw, "shortQuantity")
	qty := long.Sub(short).Truncate(0)
	if !qty.IsPositive() {
		return models.Position{}, false
	}

	p := models.Position{
		Ticker:    symbol,
		Quantity:  int(qty.IntPart()),
		Direction: models.DirectionLong,
	}

	avg, hasAvg := firstNumber(raw, "averagePrice", "costBasis")
	if hasAvg {
		p.AvgCost = floatPtr(avg)
	}

	mv, hasMV := firstNumber(raw, "marketValue", "currentMarketValue")
	if hasMV {
		p.MarketValue = floatPtr(mv)
		p.CurrentPrice = mv.Div(qty).RoundBank(2).InexactFloat64()
	} else if price, ok := firstNumber(raw, "currentPrice", "lastPrice"); ok {
		p.CurrentPrice = price.RoundBank(2).InexactFloat64()
	}

	if hasAvg && hasMV {
		cost := avg.Mul(qty)
		pnl := mv.Sub(cost)
		p.PnL = floatPtr(pnl.RoundBank(2))
		if cost.IsPositive() {
			p.PnLPct = floatPtr(pnl.Div(cost).Mul(decimal.NewFromInt(100)).RoundBank(2))
		}
	}

	return p, true
}

// NormalizePositions normalizes a list of upstream positions, dropping unusable rows
func NormalizePositions(raw []interface{}) []models.Position {
	positions := make([]models.Position, 0, len(raw))
	for _, item := range raw {
		if m := asMap(item); m != nil {
			if p, ok := NormalizePosition(m); ok {
				positions = append(positions, p)
			}
		}
	}
	return positions
}

// NormalizeBalances reads liquidation value and cash from currentBalances,
// falling back to initialBalances. The daily move is not reported by this shape.
func NormalizeBalances(account map[string]interface{}) models.PortfolioSummary {
	var summary models.PortfolioSummary
	for _, key := range []string{"currentBalances", "initialBalances"} {
		balances := asMap(account[key])
		if balances == nil {
			continue
		}
		total, hasTotal := firstNumber(balances, "liquidationValue")
		cash, hasCash := firstNumber(balances, "cashBalance")
		if !hasTotal && !hasCash {
			continue
		}
		summary.TotalValue = total.InexactFloat64()
		summary.Cash = cash.InexactFloat64()
		return summary
	}
	return summary
}

// ExtractStops returns the protective stop per ticker from working orders.
// Only orders whose status and type are in the given sets count; the highest stop wins.
func ExtractStops(orders []interface{}, activeStatuses, protectiveTypes []string) map[string]float64 {
	statuses := upperSet(activeStatuses)
	types := upperSet(protectiveTypes)

	stops := make(map[string]float64)
	for _, item := range orders {
		order := asMap(item)
		if order == nil {
			continue
		}
		status, _ := order["status"].(string)
		orderType, _ := order["orderType"].(string)
		if !statuses[strings.ToUpper(status)] || !types[strings.ToUpper(orderType)] {
			continue
		}

		stop, ok := firstNumber(order, "stopPrice")
		if !ok || !stop.IsPositive() {
			continue
		}
		price := stop.InexactFloat64()

		for _, leg := range asSlice(order["orderLegCollection"]) {
			symbol := symbolOf(asMap(leg)["instrument"])
			if symbol == "" {
				continue
			}
			if current, seen := stops[symbol]; !seen || price > current {
				stops[symbol] = price
			}
		}
	}
	return stops
}

func upperSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[strings.ToUpper(strings.TrimSpace(v))] = true
	}
	return set
}

// ApplyStops sets Stop on positions found in stops. Existing stops are kept unless overwrite is set.
// Returns the number of positions updated.
func ApplyStops(positions []models.Position, stops map[string]float64, overwrite bool) int {
	applied := 0
	for i := range positions {
		stop, ok := stops[strings.ToUpper(positions[i].Ticker)]
		if !ok || (positions[i].Stop != nil && !overwrite) {
			continue
		}
		s := stop
		positions[i].Stop = &s
		applied++
	}
	return applied
}

// sortPositions orders positions by ticker for stable snapshots
func sortPositions(positions []models.Position) {
	sort.SliceStable(positions, func(i, j int) bool {
		return positions[i].Ticker < positions[j].Ticker
	})
}
