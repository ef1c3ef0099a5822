// Package eodhd provides a client for the EODHD (End of Day Historical Data) API.
package eodhd

import (
	"net/url"
	"strconv"
	"time"
)

// QueryOption represents an optional parameter for API queries.
type QueryOption func(*queryParams)

// queryParams holds optional query parameters.
type queryParams struct {
	From   time.Time
	To     time.Time
	Period string // d, w, m
	Order  string // a (asc), d (desc)
	Limit  int
}

func (p *queryParams) values() url.Values {
	v := url.Values{}
	if !p.From.IsZero() {
		v.Set("from", p.From.Format("2006-01-02"))
	}
	if !p.To.IsZero() {
		v.Set("to", p.To.Format("2006-01-02"))
	}
	if p.Period != "" {
		v.Set("period", p.Period)
	}
	if p.Order != "" {
		v.Set("order", p.Order)
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	return v
}

// WithDateRange sets the date range for the query.
func WithDateRange(from, to time.Time) QueryOption {
	return func(p *queryParams) {
		p.From = from
		p.To = to
	}
}

// WithPeriod sets the period (d=daily, w=weekly, m=monthly).
func WithPeriod(period string) QueryOption {
	return func(p *queryParams) {
		p.Period = period
	}
}

// WithOrder sets the order (a=ascending, d=descending).
func WithOrder(order string) QueryOption {
	return func(p *queryParams) {
		p.Order = order
	}
}

// WithLimit sets the maximum number of results.
func WithLimit(limit int) QueryOption {
	return func(p *queryParams) {
		p.Limit = limit
	}
}
