package signals

import (
	"sort"
	"strings"
)

// PhaseConfig holds the moving average periods used for classification
type PhaseConfig struct {
	EMAPeriod int
	SMAPeriod int
	HMAPeriod int // 0 = max(EMAPeriod, SMAPeriod)
}

// DefaultPhaseConfig returns the 10 EMA / 30 SMA configuration
func DefaultPhaseConfig() PhaseConfig {
	return PhaseConfig{EMAPeriod: 10, SMAPeriod: 30}
}

func (c PhaseConfig) hullPeriod() int {
	if c.HMAPeriod > 0 {
		return c.HMAPeriod
	}
	if c.EMAPeriod > c.SMAPeriod {
		return c.EMAPeriod
	}
	return c.SMAPeriod
}

// ClassifyPhase maps a snapshot to phase 1-5 using a fixed priority: 4, 1, 2, 3, 5.
// Anything left over (including exact equalities) resolves to phase 5.
func ClassifyPhase(s IndicatorSnapshot) int {
	aboveBoth := s.Close > s.EMAShort && s.Close > s.SMALong
	hullFalling := s.Hull < s.HullPrev

	switch {
	// Strong trend, but Hull turning down
	case aboveBoth && s.EMAShort > s.SMALong && hullFalling:
		return 4
	case s.Close < s.EMAShort && s.Close < s.SMALong:
		return 1
	case s.Close > s.EMAShort && s.Close < s.SMALong:
		return 2
	case aboveBoth:
		return 3
	default:
		// Pullback below the short EMA while above the long SMA, or a tie
		return 5
	}
}

// TrendOf compares the current Hull value with the previous one
func TrendOf(hull, hullPrev float64) HullTrend {
	switch {
	case hull < hullPrev:
		return HullFalling
	case hull > hullPrev:
		return HullRising
	default:
		return HullFlat
	}
}

// CrossOf detects the close traversing the Hull average: the previous close is compared
// with the previous Hull value and the current close with the current Hull value.
func CrossOf(prevClose, price, hull, hullPrev float64) HullCross {
	switch {
	case prevClose <= hullPrev && price > hull:
		return CrossBullish
	case prevClose >= hullPrev && price < hull:
		return CrossBearish
	default:
		return CrossNeutral
	}
}

// PhaseAnalyzer computes indicator snapshots and phase records from closes
type PhaseAnalyzer struct {
	config PhaseConfig
}

// NewPhaseAnalyzer creates an analyzer; zero periods fall back to the defaults
func NewPhaseAnalyzer(config PhaseConfig) *PhaseAnalyzer {
	defaults := DefaultPhaseConfig()
	if config.EMAPeriod <= 0 {
		config.EMAPeriod = defaults.EMAPeriod
	}
	if config.SMAPeriod <= 0 {
		config.SMAPeriod = defaults.SMAPeriod
	}
	return &PhaseAnalyzer{config: config}
}

// Snapshot computes the indicator values for the latest close.
// The previous Hull value is the Hull over the series without its last point.
func (a *PhaseAnalyzer) Snapshot(closes []float64) IndicatorSnapshot {
	hullPeriod := a.config.hullPeriod()
	price := latest(closes)

	snap := IndicatorSnapshot{
		Close:     price,
		Price:     round(price, PricePrecision),
		PrevClose: price,
		EMAShort:  EMA(closes, a.config.EMAPeriod),
		SMALong:   SMA(closes, a.config.SMAPeriod),
		Hull:      HMA(closes, hullPeriod),
	}
	snap.HullPrev = snap.Hull
	if len(closes) > 1 {
		snap.PrevClose = closes[len(closes)-2]
		snap.HullPrev = HMA(closes[:len(closes)-1], hullPeriod)
	}
	return snap
}

// Analyze classifies one ticker. A series shorter than the long SMA period
// yields an error record instead of a classification.
func (a *PhaseAnalyzer) Analyze(ticker string, closes []float64) PhaseRecord {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if len(closes) == 0 || len(closes) < a.config.SMAPeriod {
		return PhaseRecord{Ticker: ticker, Error: ErrInsufficientData}
	}

	snap := a.Snapshot(closes)
	return PhaseRecord{
		Ticker:    ticker,
		Phase:     ClassifyPhase(snap),
		Price:     snap.Price,
		EMAShort:  snap.EMAShort,
		SMALong:   snap.SMALong,
		Hull:      snap.Hull,
		HullPrev:  snap.HullPrev,
		HullTrend: TrendOf(snap.Hull, snap.HullPrev),
		HullCross: CrossOf(snap.PrevClose, snap.Close, snap.Hull, snap.HullPrev),
	}
}

// AnalyzeAll classifies every ticker in the map, returning records sorted by ticker
func (a *PhaseAnalyzer) AnalyzeAll(series map[string][]float64) []PhaseRecord {
	tickers := make([]string, 0, len(series))
	for ticker := range series {
		tickers = append(tickers, ticker)
	}
	sort.Strings(tickers)

	records := make([]PhaseRecord, 0, len(tickers))
	for _, ticker := range tickers {
		records = append(records, a.Analyze(ticker, series[ticker]))
	}
	return records
}
