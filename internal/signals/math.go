package signals

import "math"

// round rounds to specified decimal places (half away from zero)
func round(value float64, places int) float64 {
	mult := math.Pow(10, float64(places))
	return math.Round(value*mult) / mult
}

// latest returns the most recent value, or 0 for an empty series
func latest(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

// isqrt returns floor(sqrt(n)) with a minimum of 1
func isqrt(n int) int {
	if n <= 1 {
		return 1
	}
	r := int(math.Sqrt(float64(n)))
	// Guard against float error at perfect squares
	for (r+1)*(r+1) <= n {
		r++
	}
	for r*r > n {
		r--
	}
	if r < 1 {
		return 1
	}
	return r
}
