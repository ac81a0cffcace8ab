// Package domain provides core domain models and types.
package domain

import (
	"math"
	"time"
)

// PortfolioAsset is the synthetic asset name under which a simulated
// portfolio joins the analytics of its constituents.
const PortfolioAsset = "Portfolio"

// Price fields exposed by the price source.
const (
	PriceFieldOpen     = "Open"
	PriceFieldHigh     = "High"
	PriceFieldLow      = "Low"
	PriceFieldClose    = "Close"
	PriceFieldAdjClose = "Adj Close"
	PriceFieldVolume   = "Volume"
)

// Fundamentals holds the raw per-ticker fields returned by the fundamentals source.
// A nil field is absent; a zero field is present and zero.
type Fundamentals struct {
	MarketCap    *float64 `json:"market_cap,omitempty" msgpack:"market_cap"`
	CurrentPrice *float64 `json:"current_price,omitempty" msgpack:"current_price"`
	FloatShares  *float64 `json:"float_shares,omitempty" msgpack:"float_shares"`
}

// FreeFloatRecord is the validated free-float view of one ticker.
type FreeFloatRecord struct {
	Ticker                    string   `json:"ticker"`
	ImpliedSharesOutstandingB *float64 `json:"implied_shares_outstanding_b"`
	FreeFloatB                *float64 `json:"free_float_b"`
	FreeFloatPct              *float64 `json:"free_float_pct"`
	Valid                     bool     `json:"valid"`
	FetchError                string   `json:"fetch_error,omitempty"`
}

// FreeFloatTable has one record per requested ticker, in request order.
type FreeFloatTable []FreeFloatRecord

// Tickers returns the tickers of the table in order.
func (t FreeFloatTable) Tickers() []string {
	out := make([]string, len(t))
	for i, r := range t {
		out[i] = r.Ticker
	}
	return out
}

// ValidCount returns the number of valid records.
func (t FreeFloatTable) ValidCount() int {
	n := 0
	for _, r := range t {
		if r.Valid {
			n++
		}
	}
	return n
}

// WeightMap maps ticker to portfolio weight.
type WeightMap map[string]float64

// Sum returns the total weight.
func (w WeightMap) Sum() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// PriceRow holds the prices of one trading day. A ticker without a price
// that day has no entry.
type PriceRow struct {
	Date   time.Time          `json:"date" msgpack:"date"`
	Prices map[string]float64 `json:"prices" msgpack:"prices"`
}

// PriceTable is a date-ordered table of prices, columns = Tickers.
type PriceTable struct {
	Tickers []string   `json:"tickers" msgpack:"tickers"`
	Rows    []PriceRow `json:"rows" msgpack:"rows"`
}

// Len returns the number of dates.
func (p PriceTable) Len() int {
	return len(p.Rows)
}

// Dates returns the row dates in order.
func (p PriceTable) Dates() []time.Time {
	out := make([]time.Time, len(p.Rows))
	for i, r := range p.Rows {
		out[i] = r.Date
	}
	return out
}

// HasTicker reports whether ticker is a column of the table.
func (p PriceTable) HasTicker(ticker string) bool {
	for _, t := range p.Tickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// Column returns the prices of ticker in date order, NaN where missing.
func (p PriceTable) Column(ticker string) []float64 {
	out := make([]float64, len(p.Rows))
	for i, r := range p.Rows {
		if v, ok := r.Prices[ticker]; ok {
			out[i] = v
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// PortfolioPoint is one day of a simulated portfolio.
type PortfolioPoint struct {
	Date    time.Time          `json:"date"`
	Value   float64            `json:"portfolio_value"`
	Returns map[string]float64 `json:"returns"`
}

// PortfolioSeries is the date-ordered output of a simulation.
type PortfolioSeries []PortfolioPoint

// Values returns the portfolio values in date order.
func (s PortfolioSeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
