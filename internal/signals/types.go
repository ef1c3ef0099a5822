package signals

import "encoding/json"

// HullTrend is the direction of the Hull moving average between the last two closes
type HullTrend string

const (
	HullRising  HullTrend = "rising"
	HullFalling HullTrend = "falling"
	HullFlat    HullTrend = "flat"
)

// HullCross describes the latest close traversing the Hull moving average
type HullCross string

const (
	CrossBullish HullCross = "bullish"
	CrossBearish HullCross = "bearish"
	CrossNeutral HullCross = "neutral"
)

// ErrInsufficientData is the per-ticker error recorded when a series is shorter than the long SMA period
const ErrInsufficientData = "Insufficient data"

// IndicatorSnapshot holds the indicator values for the latest close of one ticker.
// Close is the raw latest close the phase is decided on. Price is Close rounded
// to 2 places for display, indicators are rounded to 4. PrevClose is the close before Close.
type IndicatorSnapshot struct {
	Close     float64
	Price     float64
	PrevClose float64
	EMAShort  float64
	SMALong   float64
	Hull      float64
	HullPrev  float64
}

// PhaseRecord is the per-ticker phase classification for one run.
// PreviousPhase is populated only when the prior run classified the ticker.
// A non-empty Error marks an unclassifiable ticker; such records carry only Ticker and Error.
type PhaseRecord struct {
	Ticker        string    `json:"ticker"`
	Phase         int       `json:"phase"`
	Price         float64   `json:"price"`
	EMAShort      float64   `json:"emaShort"`
	SMALong       float64   `json:"smaLong"`
	Hull          float64   `json:"hma"`
	HullPrev      float64   `json:"hmaPrev"`
	HullTrend     HullTrend `json:"hmaTrend"`
	HullCross     HullCross `json:"hmaCross"`
	PreviousPhase *int      `json:"previousPhase,omitempty"`
	Error         string    `json:"error,omitempty"`
}

// OK reports whether the record holds a classification
func (r PhaseRecord) OK() bool {
	return r.Error == ""
}

// MarshalJSON renders error records as {"ticker": ..., "error": ...}
func (r PhaseRecord) MarshalJSON() ([]byte, error) {
	if r.Error != "" {
		return json.Marshal(struct {
			Ticker string `json:"ticker"`
			Error  string `json:"error"`
		}{r.Ticker, r.Error})
	}
	type plain PhaseRecord
	return json.Marshal(plain(r))
}
