package models

// Headline scores, in priority order
const (
	ScoreAdversarial = "adversarial"
	ScoreMajor       = "major"
	ScoreMacro       = "macro"
	ScoreRelevant    = "relevant"
)

// Headline is a scored news item tied to a held ticker.
// PublishedAt is an RFC 3339 UTC string ("" when the provider omits it).
type Headline struct {
	Ticker      string `json:"ticker"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`
	PublishedAt string `json:"publishedAt"`
	Score       string `json:"score"`
}

// IsExternalEvent reports whether the headline is material enough for the external events section
func (h Headline) IsExternalEvent() bool {
	switch h.Score {
	case ScoreAdversarial, ScoreMajor, ScoreMacro:
		return true
	}
	return false
}

// CacheStats describes news cache usage for one fetch
type CacheStats struct {
	Enabled    bool `json:"enabled"`
	TTLMinutes int  `json:"ttlMinutes"`
	Hits       int  `json:"hits"`
}

// NewsResult is the news source payload. Alerts are pre-formatted lines for
// adversarial/major headlines. Error and Status describe an unavailable provider.
type NewsResult struct {
	Headlines []Headline `json:"headlines"`
	Alerts    []string   `json:"alerts"`
	Source    string     `json:"source,omitempty"`
	Since     string     `json:"since,omitempty"`
	Cache     CacheStats `json:"cache"`
	Errors    []string   `json:"errors,omitempty"`
	Error     string     `json:"error,omitempty"`
	Status    string     `json:"status,omitempty"`
}

// SeriesResult is the price-history payload for one ticker.
// Closes are chronological; Error is set when the series could not be fetched.
type SeriesResult struct {
	Ticker   string    `json:"ticker"`
	Closes   []float64 `json:"-"`
	Points   int       `json:"points"`
	LastDate string    `json:"lastDate,omitempty"`
	Stale    bool      `json:"stale,omitempty"`
	Error    string    `json:"error,omitempty"`
}
