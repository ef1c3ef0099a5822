// Package signals derives trend indicators and phase classifications from daily closes.
package signals

// Decimal places applied to indicator outputs and to the reported price
const (
	IndicatorPrecision = 4
	PricePrecision     = 2
)

// SMA returns the arithmetic mean of the trailing period prices.
// With fewer than period prices it returns the latest price unrounded (0 for an empty series).
func SMA(prices []float64, period int) float64 {
	period = normalizePeriod(period)
	if len(prices) < period {
		return latest(prices)
	}
	return round(rawSMA(prices, period), IndicatorPrecision)
}

// EMA returns the exponential moving average seeded with the SMA of the first
// period prices, then k = 2/(period+1) applied to every later price in order.
func EMA(prices []float64, period int) float64 {
	period = normalizePeriod(period)
	if len(prices) < period {
		return latest(prices)
	}

	k := 2.0 / float64(period+1)
	sum := 0.0
	for _, p := range prices[:period] {
		sum += p
	}
	ema := sum / float64(period)
	for _, p := range prices[period:] {
		ema = (p-ema)*k + ema
	}
	return round(ema, IndicatorPrecision)
}

// WMA returns the weighted mean of the trailing period prices with weights
// 1..period, the most recent price carrying weight period.
func WMA(prices []float64, period int) float64 {
	period = normalizePeriod(period)
	if len(prices) < period {
		return latest(prices)
	}

	window := prices[len(prices)-period:]
	weighted := 0.0
	for i, p := range window {
		weighted += float64(i+1) * p
	}
	weights := float64(period*(period+1)) / 2
	return round(weighted/weights, IndicatorPrecision)
}

// HMA returns the Hull moving average: WMA(2*WMA(n/2) - WMA(n), floor(sqrt(n))).
// Each raw point i (from period-1 onward) is computed over the prefix ending at i.
// Requires period + floor(sqrt(period)) prices, otherwise returns the latest price.
func HMA(prices []float64, period int) float64 {
	period = normalizePeriod(period)
	half := period / 2
	if half < 1 {
		half = 1
	}
	sqrtPeriod := isqrt(period)

	if len(prices) < period+sqrtPeriod {
		return round(latest(prices), IndicatorPrecision)
	}

	raw := make([]float64, 0, len(prices)-period+1)
	for i := period - 1; i < len(prices); i++ {
		prefix := prices[:i+1]
		raw = append(raw, 2*WMA(prefix, half)-WMA(prefix, period))
	}
	return WMA(raw, sqrtPeriod)
}

func rawSMA(prices []float64, period int) float64 {
	sum := 0.0
	for _, p := range prices[len(prices)-period:] {
		sum += p
	}
	return sum / float64(period)
}

func normalizePeriod(period int) int {
	if period < 1 {
		return 1
	}
	return period
}
