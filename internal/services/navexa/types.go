package navexa

// Portfolio represents a Navexa portfolio from the /v1/portfolios endpoint.
type Portfolio struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	DateCreated      string `json:"dateCreated"`
	BaseCurrencyCode string `json:"baseCurrencyCode"`
}

// TotalReturnInfo represents the return details object in performance responses.
type TotalReturnInfo struct {
	TotalValue   float64 `json:"totalValue"`
	TotalCost    float64 `json:"totalCost"`
	CostBasis    float64 `json:"costBasis"`
	CapitalGain  float64 `json:"capitalGain"`
	Dividends    float64 `json:"dividends"`
	CurrencyGain float64 `json:"currencyGain"`
	ReturnPct    float64 `json:"returnPercent"`
}

// PerformanceHolding represents a holding with performance data from the performance API.
type PerformanceHolding struct {
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Exchange      string          `json:"exchange"`
	TotalQuantity float64         `json:"totalQuantity"`
	HoldingWeight float64         `json:"holdingWeight"`
	CurrencyCode  string          `json:"currencyCode"`
	TotalReturn   TotalReturnInfo `json:"totalReturn"`
}

// PerformanceResponse represents the raw performance API response.
type PerformanceResponse struct {
	Holdings         []PerformanceHolding `json:"holdings"`
	BaseCurrencyCode string               `json:"baseCurrencyCode"`
	TotalValue       float64              `json:"totalValue"`
	TotalCost        float64              `json:"totalCost"`
	TotalReturn      TotalReturnInfo      `json:"totalReturn"`
}

// PortfolioWithHoldings represents a portfolio with its holdings enriched with performance data.
type PortfolioWithHoldings struct {
	Portfolio Portfolio
	Holdings  []EnrichedHolding
	FetchedAt string
}

// TotalValue sums the current value of every holding
func (p *PortfolioWithHoldings) TotalValue() float64 {
	total := 0.0
	for _, h := range p.Holdings {
		total += h.CurrentValue
	}
	return total
}

// EnrichedHolding combines holding info with derived per-unit prices.
type EnrichedHolding struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Exchange     string  `json:"exchange"`
	Quantity     float64 `json:"quantity"`
	CurrentPrice float64 `json:"currentPrice"`
	AvgCost      float64 `json:"avgCost"`
	CurrentValue float64 `json:"currentValue"`
	TotalCost    float64 `json:"totalCost"`
	ReturnPct    float64 `json:"returnPct"`
	CurrencyCode string  `json:"currencyCode"`
}
