package signals

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyPhase(t *testing.T) {
	tests := []struct {
		name string
		snap IndicatorSnapshot
		want int
	}{
		{
			name: "strong trend with Hull turning down",
			snap: IndicatorSnapshot{Close: 110, EMAShort: 105, SMALong: 100, Hull: 104, HullPrev: 105},
			want: 4,
		},
		{
			name: "strong trend with Hull rising",
			snap: IndicatorSnapshot{Close: 110, EMAShort: 105, SMALong: 100, Hull: 106, HullPrev: 105},
			want: 3,
		},
		{
			name: "above both with EMA under SMA and Hull falling",
			snap: IndicatorSnapshot{Close: 110, EMAShort: 100, SMALong: 105, Hull: 104, HullPrev: 105},
			want: 3,
		},
		{
			name: "below both averages",
			snap: IndicatorSnapshot{Close: 90, EMAShort: 95, SMALong: 100, Hull: 94, HullPrev: 95},
			want: 1,
		},
		{
			name: "above EMA but below SMA",
			snap: IndicatorSnapshot{Close: 97, EMAShort: 95, SMALong: 100, Hull: 96, HullPrev: 95},
			want: 2,
		},
		{
			name: "pullback below EMA while above SMA",
			snap: IndicatorSnapshot{Close: 98, EMAShort: 100, SMALong: 95, Hull: 99, HullPrev: 100},
			want: 5,
		},
		{
			name: "price equal to EMA",
			snap: IndicatorSnapshot{Close: 100, EMAShort: 100, SMALong: 90, Hull: 99, HullPrev: 98},
			want: 5,
		},
		{
			name: "price equal to both",
			snap: IndicatorSnapshot{Close: 100, EMAShort: 100, SMALong: 100, Hull: 100, HullPrev: 100},
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyPhase(tt.snap))
		})
	}
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, HullRising, TrendOf(101, 100))
	assert.Equal(t, HullFalling, TrendOf(99, 100))
	assert.Equal(t, HullFlat, TrendOf(100, 100))
}

func TestCrossOf(t *testing.T) {
	tests := []struct {
		name                             string
		prevClose, price, hull, hullPrev float64
		want                             HullCross
	}{
		{"close moves up through Hull", 99, 102, 100, 100, CrossBullish},
		{"close starts on Hull and rises above", 100, 102, 101, 100, CrossBullish},
		{"close moves down through Hull", 101, 98, 100, 100, CrossBearish},
		{"close starts on Hull and drops below", 100, 98, 99, 100, CrossBearish},
		{"stays above", 105, 106, 100, 100, CrossNeutral},
		{"stays below", 95, 94, 100, 100, CrossNeutral},
		{"lands exactly on Hull", 99, 100, 100, 100, CrossNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CrossOf(tt.prevClose, tt.price, tt.hull, tt.hullPrev))
		})
	}
}

func TestAnalyze_InsufficientData(t *testing.T) {
	analyzer := NewPhaseAnalyzer(DefaultPhaseConfig())

	record := analyzer.Analyze("abc", linearSeries(29, 10, 1))
	assert.False(t, record.OK())
	assert.Equal(t, "ABC", record.Ticker)
	assert.Equal(t, ErrInsufficientData, record.Error)

	record = analyzer.Analyze("XYZ", nil)
	assert.Equal(t, ErrInsufficientData, record.Error)
}

func TestAnalyze_SteadyUptrendIsPhase3(t *testing.T) {
	analyzer := NewPhaseAnalyzer(DefaultPhaseConfig())

	record := analyzer.Analyze("AAA", linearSeries(60, 50, 1))
	require.True(t, record.OK())

	assert.Equal(t, 3, record.Phase)
	assert.Equal(t, 109.0, record.Price)
	assert.Equal(t, HullRising, record.HullTrend)
	assert.Less(t, record.EMAShort, record.Price)
	assert.Less(t, record.SMALong, record.EMAShort)
	assert.Equal(t, 94.5, record.SMALong)
}

func TestAnalyze_ClassifiesOnRawClose(t *testing.T) {
	closes := constantSeries(29, 100)
	closes = append(closes, 100.004)

	record := NewPhaseAnalyzer(DefaultPhaseConfig()).Analyze("AAA", closes)
	require.Empty(t, record.Error)
	// Reported price rounds to the averages, the raw close sits above both
	assert.Equal(t, 100.0, record.Price)
	assert.Greater(t, record.EMAShort, record.SMALong)
	assert.Equal(t, HullRising, record.HullTrend)
	assert.Equal(t, 3, record.Phase)
}

func TestAnalyze_DowntrendIsPhase1(t *testing.T) {
	analyzer := NewPhaseAnalyzer(DefaultPhaseConfig())

	record := analyzer.Analyze("BBB", linearSeries(60, 200, -1))
	require.True(t, record.OK())

	assert.Equal(t, 1, record.Phase)
	assert.Equal(t, HullFalling, record.HullTrend)
}

func TestAnalyze_RolloverAfterRally(t *testing.T) {
	// rally, then the price stalls while staying above both averages
	closes := append(linearSeries(50, 100, 1), constantSeries(10, 150)...)

	record := NewPhaseAnalyzer(DefaultPhaseConfig()).Analyze("CCC", closes)
	require.True(t, record.OK())

	assert.Equal(t, HullFalling, record.HullTrend)
	assert.Equal(t, 4, record.Phase)
}

func TestAnalyzer_HullPeriodDefaultsToLongest(t *testing.T) {
	closes := linearSeries(60, 10, 0.5)
	analyzer := NewPhaseAnalyzer(PhaseConfig{EMAPeriod: 10, SMAPeriod: 30})

	snap := analyzer.Snapshot(closes)
	assert.Equal(t, HMA(closes, 30), snap.Hull)
	assert.Equal(t, HMA(closes[:59], 30), snap.HullPrev)
	assert.Equal(t, closes[58], snap.PrevClose)

	custom := NewPhaseAnalyzer(PhaseConfig{EMAPeriod: 10, SMAPeriod: 30, HMAPeriod: 9})
	assert.Equal(t, HMA(closes, 9), custom.Snapshot(closes).Hull)
}

func TestAnalyzeAll_SortedByTicker(t *testing.T) {
	records := NewPhaseAnalyzer(DefaultPhaseConfig()).AnalyzeAll(map[string][]float64{
		"MSFT": linearSeries(40, 300, 1),
		"AAPL": linearSeries(40, 150, 1),
		"TINY": {1, 2, 3},
	})

	require.Len(t, records, 3)
	assert.Equal(t, "AAPL", records[0].Ticker)
	assert.Equal(t, "MSFT", records[1].Ticker)
	assert.Equal(t, "TINY", records[2].Ticker)
	assert.False(t, records[2].OK())
}

func TestPhaseRecord_MarshalJSON(t *testing.T) {
	data, err := json.Marshal(PhaseRecord{Ticker: "ABC", Error: ErrInsufficientData})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ticker":"ABC","error":"Insufficient data"}`, string(data))

	data, err = json.Marshal(PhaseRecord{
		Ticker: "AAA", Phase: 3, Price: 10, EMAShort: 9, SMALong: 8,
		Hull: 9.5, HullPrev: 9.4, HullTrend: HullRising, HullCross: CrossNeutral,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "rising", decoded["hmaTrend"])
	assert.Equal(t, 8.0, decoded["smaLong"])
	assert.NotContains(t, decoded, "previousPhase")
	assert.NotContains(t, decoded, "error")
}
