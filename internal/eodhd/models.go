package eodhd

import "time"

// EODData represents a single day's end-of-day price data.
type EODData struct {
	Date          time.Time `json:"-"`
	DateStr       string    `json:"date"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Close         float64   `json:"close"`
	AdjustedClose float64   `json:"adjusted_close"`
	Volume        int64     `json:"volume"`
}

// ClosePrice returns the adjusted close when present, otherwise the raw close
func (d EODData) ClosePrice() float64 {
	if d.AdjustedClose > 0 {
		return d.AdjustedClose
	}
	return d.Close
}

// EODResponse is a slice of EODData.
type EODResponse []EODData

// Closes returns the close series in response order
func (r EODResponse) Closes() []float64 {
	closes := make([]float64, 0, len(r))
	for _, d := range r {
		if c := d.ClosePrice(); c > 0 {
			closes = append(closes, c)
		}
	}
	return closes
}

// NewsItem represents a single news article.
type NewsItem struct {
	Date      time.Time      `json:"-"`
	DateStr   string         `json:"date"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Link      string         `json:"link"`
	Symbols   []string       `json:"symbols"`
	Tags      []string       `json:"tags"`
	Sentiment *NewsSentiment `json:"sentiment,omitempty"`
}

// NewsSentiment represents sentiment analysis data for news.
type NewsSentiment struct {
	Polarity float64 `json:"polarity"`
	Neg      float64 `json:"neg"`
	Neu      float64 `json:"neu"`
	Pos      float64 `json:"pos"`
}

// NewsResponse is a slice of NewsItem.
type NewsResponse []NewsItem
