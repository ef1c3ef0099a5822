package common

import (
	"strings"
)

// Ticker represents a parsed, optionally exchange-qualified ticker.
// Accepted formats: "AAPL", "NASDAQ:AAPL", "AAPL.US", "BRK-B", "BRK.B".
type Ticker struct {
	// Exchange is the exchange or EODHD suffix code (e.g. "US", "NASDAQ", "AU")
	Exchange string
	// Code is the security code (e.g. "AAPL")
	Code string
	// Raw is the original ticker string
	Raw string
}

// ExchangeToSuffix maps exchange codes to EODHD API suffixes.
var ExchangeToSuffix = map[string]string{
	"US":     ".US",
	"NYSE":   ".US",
	"NASDAQ": ".US",
	"AMEX":   ".US",
	"ARCA":   ".US",
	"ASX":    ".AU",
	"AU":     ".AU",
	"LSE":    ".LSE",
	"TSX":    ".TO",
	"TO":     ".TO",
	"XETRA":  ".XETRA",
}

// DefaultExchange is the exchange assumed for bare tickers.
var DefaultExchange = "US"

// SetDefaultExchange sets the default exchange for parsing tickers.
func SetDefaultExchange(exchange string) {
	if exchange != "" {
		DefaultExchange = strings.ToUpper(exchange)
	}
}

// ParseTicker parses a ticker string.
//   - "NASDAQ:AAPL" -> Exchange="NASDAQ", Code="AAPL"
//   - "AAPL.US"     -> Exchange="US", Code="AAPL" (EODHD CODE.SUFFIX form, known suffixes only)
//   - "brk.b"       -> Exchange=DefaultExchange, Code="BRK.B"
func ParseTicker(ticker string) Ticker {
	ticker = strings.TrimSpace(ticker)
	if ticker == "" {
		return Ticker{}
	}

	if idx := strings.Index(ticker, ":"); idx > 0 {
		return Ticker{
			Exchange: strings.ToUpper(ticker[:idx]),
			Code:     strings.ToUpper(strings.TrimSpace(ticker[idx+1:])),
			Raw:      ticker,
		}
	}

	// CODE.SUFFIX only when the suffix is a known exchange; "BRK.B" stays a share class
	if idx := strings.LastIndex(ticker, "."); idx > 0 {
		suffix := strings.ToUpper(ticker[idx+1:])
		if _, ok := ExchangeToSuffix[suffix]; ok {
			return Ticker{
				Exchange: suffix,
				Code:     strings.ToUpper(ticker[:idx]),
				Raw:      ticker,
			}
		}
	}

	return Ticker{
		Exchange: DefaultExchange,
		Code:     strings.ToUpper(ticker),
		Raw:      ticker,
	}
}

// String returns the bare upper-case code used as the portfolio key
func (t Ticker) String() string {
	return t.Code
}

// EODHDSymbol returns the EODHD API symbol format.
// Example: "NASDAQ:AAPL" -> "AAPL.US", "BRK.B" -> "BRK-B.US"
func (t Ticker) EODHDSymbol() string {
	if t.Code == "" {
		return ""
	}
	suffix, ok := ExchangeToSuffix[t.Exchange]
	if !ok {
		suffix = ".US"
	}
	return strings.ReplaceAll(t.Code, ".", "-") + suffix
}

// NormalizeTickers upper-cases, trims and de-duplicates tickers, preserving first-seen order
func NormalizeTickers(tickers []string) []string {
	seen := make(map[string]bool, len(tickers))
	result := make([]string, 0, len(tickers))
	for _, t := range tickers {
		code := strings.ToUpper(strings.TrimSpace(t))
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		result = append(result, code)
	}
	return result
}
