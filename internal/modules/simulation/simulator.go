// Package simulation compounds a fixed-weight portfolio over a price table.
package simulation

import (
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/pkg/formulas"
)

// DailyReturns returns the per-ticker daily percentage changes of prices.
// The first row is 0 and any undefined return (missing price on either day)
// is 0.
func DailyReturns(prices domain.PriceTable) map[string][]float64 {
	out := make(map[string][]float64, len(prices.Tickers))
	for _, ticker := range prices.Tickers {
		r := formulas.PctChange(prices.Column(ticker))
		for i, v := range r {
			if !formulas.IsFinite(v) {
				r[i] = 0
			}
		}
		out[ticker] = r
	}
	return out
}

// Simulate compounds initialInvestment over prices with fixed weights.
//
// value(t0) = initialInvestment and value(t) = value(t-1) * (1 + sum(w*r)).
// Weights for tickers absent from prices are ignored; tickers without a
// weight contribute nothing. With no weights the series stays constant.
func Simulate(prices domain.PriceTable, weights domain.WeightMap, initialInvestment float64) domain.PortfolioSeries {
	returns := DailyReturns(prices)
	series := make(domain.PortfolioSeries, prices.Len())

	value := initialInvestment
	for i, row := range prices.Rows {
		daily := 0.0
		rowReturns := make(map[string]float64, len(prices.Tickers))
		for _, ticker := range prices.Tickers {
			r := returns[ticker][i]
			rowReturns[ticker] = r
			daily += weights[ticker] * r
		}

		if i > 0 {
			value *= 1 + daily
		}
		series[i] = domain.PortfolioPoint{
			Date:    row.Date,
			Value:   value,
			Returns: rowReturns,
		}
	}
	return series
}
