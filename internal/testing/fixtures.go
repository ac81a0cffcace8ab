package testing

import (
	"math"
	"time"

	"github.com/aristath/freefloat/internal/domain"
)

// Day returns midnight UTC of the given day in January 2024.
func Day(d int) time.Time {
	return time.Date(2024, time.January, d, 0, 0, 0, 0, time.UTC)
}

// NewPriceTable builds a table with one row per day starting at start.
// NaN values are left out of the row.
func NewPriceTable(start time.Time, tickers []string, columns map[string][]float64) domain.PriceTable {
	n := 0
	for _, col := range columns {
		if len(col) > n {
			n = len(col)
		}
	}

	table := domain.PriceTable{Tickers: append([]string(nil), tickers...)}
	for i := 0; i < n; i++ {
		prices := make(map[string]float64, len(tickers))
		for _, t := range tickers {
			col := columns[t]
			if i < len(col) && !math.IsNaN(col[i]) {
				prices[t] = col[i]
			}
		}
		table.Rows = append(table.Rows, domain.PriceRow{
			Date:   start.AddDate(0, 0, i),
			Prices: prices,
		})
	}
	return table
}

// NewScenarioPrices returns the AAPL/MSFT three-day fixture:
// AAPL 100, 110, 121 and MSFT 50, 45, 49.5.
func NewScenarioPrices() domain.PriceTable {
	return NewPriceTable(Day(2), []string{"AAPL", "MSFT"}, map[string][]float64{
		"AAPL": {100, 110, 121},
		"MSFT": {50, 45, 49.5},
	})
}

// NewFundamentals builds fundamentals from market cap, price and float shares.
func NewFundamentals(marketCap, price, floatShares float64) domain.Fundamentals {
	return domain.Fundamentals{
		MarketCap:    domain.Float(marketCap),
		CurrentPrice: domain.Float(price),
		FloatShares:  domain.Float(floatShares),
	}
}
