// Package analytics computes correlation and volatility diagnostics over the
// daily returns of a price table and, optionally, a simulated portfolio.
package analytics

import (
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/pkg/formulas"
)

// Report bundles both diagnostics for one input.
type Report struct {
	Correlations domain.CorrelationMatrix `json:"correlations"`
	Volatility   domain.VolatilityVector  `json:"volatility"`
}

// Correlations returns the Pearson correlation matrix of daily returns.
// When series is non-nil its returns join as "Portfolio" on common dates.
// The diagonal is exactly 1; pairs with zero variance are NaN.
func Correlations(prices domain.PriceTable, series *domain.PortfolioSeries) domain.CorrelationMatrix {
	return correlations(buildFrame(prices, series))
}

// AnnualizedVolatility returns the sample standard deviation of daily
// returns scaled by sqrt(252), per asset. Fewer than two observations give NaN.
func AnnualizedVolatility(prices domain.PriceTable, series *domain.PortfolioSeries) domain.VolatilityVector {
	return volatility(buildFrame(prices, series))
}

// Analyze computes both diagnostics from a single returns alignment.
func Analyze(prices domain.PriceTable, series *domain.PortfolioSeries) Report {
	f := buildFrame(prices, series)
	return Report{
		Correlations: correlations(f),
		Volatility:   volatility(f),
	}
}

func correlations(f frame) domain.CorrelationMatrix {
	n := len(f.assets)
	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
	}

	for i := 0; i < n; i++ {
		values[i][i] = 1.0
		for j := i + 1; j < n; j++ {
			c := formulas.Correlation(f.cols[i], f.cols[j])
			values[i][j] = c
			values[j][i] = c
		}
	}

	return domain.CorrelationMatrix{
		Assets: append([]string(nil), f.assets...),
		Values: values,
	}
}

func volatility(f frame) domain.VolatilityVector {
	values := make([]float64, len(f.assets))
	for i, col := range f.cols {
		values[i] = formulas.AnnualizedVolatility(col)
	}
	return domain.VolatilityVector{
		Assets: append([]string(nil), f.assets...),
		Values: values,
	}
}
