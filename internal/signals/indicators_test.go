package signals

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func linearSeries(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func constantSeries(n int, value float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestSMA(t *testing.T) {
	assert.Equal(t, 4.0, SMA([]float64{1, 2, 3, 4, 5}, 3))
	assert.Equal(t, 3.0, SMA([]float64{1, 2, 3, 4, 5}, 5))
	assert.Equal(t, 33.3333, SMA([]float64{0, 0, 100}, 3))
}

func TestEMA_SeededWithSMA(t *testing.T) {
	// seed = mean(1,2,3) = 2, k = 0.5: 4 -> 3, 5 -> 4
	assert.Equal(t, 4.0, EMA([]float64{1, 2, 3, 4, 5}, 3))
	// exactly period prices is the seed itself
	assert.Equal(t, 2.0, EMA([]float64{1, 2, 3}, 3))
}

func TestWMA(t *testing.T) {
	// (1*1 + 2*2 + 3*3) / 6
	assert.Equal(t, 2.3333, WMA([]float64{1, 2, 3}, 3))
	// only the trailing window counts
	assert.Equal(t, 2.3333, WMA([]float64{50, 1, 2, 3}, 3))
}

func TestIndicators_ShortSeriesFallBackToLatest(t *testing.T) {
	short := []float64{10, 12.34567}

	// only the Hull rounds its fallback
	assert.Equal(t, 12.34567, SMA(short, 3))
	assert.Equal(t, 12.34567, EMA(short, 3))
	assert.Equal(t, 12.34567, WMA(short, 3))
	assert.Equal(t, 12.3457, HMA(short, 3))

	assert.Equal(t, 0.0, SMA(nil, 3))
	assert.Equal(t, 0.0, EMA(nil, 3))
	assert.Equal(t, 0.0, WMA(nil, 3))
	assert.Equal(t, 0.0, HMA(nil, 3))
}

func TestIndicators_ConstantSeries(t *testing.T) {
	closes := constantSeries(60, 42.5)

	assert.Equal(t, 42.5, SMA(closes, 30))
	assert.Equal(t, 42.5, EMA(closes, 10))
	assert.Equal(t, 42.5, WMA(closes, 30))
	assert.Equal(t, 42.5, HMA(closes, 30))
}

func TestHMA_LengthThreshold(t *testing.T) {
	// period 4 needs 4 + floor(sqrt(4)) = 6 points
	five := linearSeries(5, 1, 1)
	assert.Equal(t, 5.0, HMA(five, 4), "one point short returns the latest price")

	six := linearSeries(6, 1, 1)
	assert.InDelta(t, 6.0, HMA(six, 4), 1e-3, "Hull tracks a linear series without lag")
}

func TestHMA_TracksLinearTrend(t *testing.T) {
	closes := linearSeries(60, 100, 0.5)
	// even period with a non-square root: the Hull lags one step
	assert.InDelta(t, closes[len(closes)-1]-0.5, HMA(closes, 30), 1e-2)
}

func TestIsqrt(t *testing.T) {
	tests := []struct {
		n    int
		want int
	}{
		{0, 1}, {1, 1}, {3, 1}, {4, 2}, {8, 2}, {9, 3}, {30, 5}, {36, 6},
	}
	for _, tt := range tests {
		if got := isqrt(tt.n); got != tt.want {
			t.Errorf("isqrt(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestRound_HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, round(0.125, 2))
	assert.Equal(t, -0.13, round(-0.125, 2))
	assert.Equal(t, 3.0, round(2.5, 0))
}
