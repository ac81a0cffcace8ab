// Package formulas holds the numeric building blocks shared by the simulation and analytics modules.
package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

// TradingDaysPerYear is the fixed annualisation convention.
const TradingDaysPerYear = 252

// StdDev calculates the sample standard deviation (n-1 denominator).
// Returns NaN when fewer than two observations are available.
func StdDev(data []float64) float64 {
	if len(data) < 2 {
		return math.NaN()
	}
	return stat.StdDev(data, nil)
}

// AnnualizedVolatility calculates annualized volatility from daily returns
// Formula: Std Dev of Daily Returns × sqrt(252 trading days)
func AnnualizedVolatility(dailyReturns []float64) float64 {
	return StdDev(dailyReturns) * math.Sqrt(TradingDaysPerYear)
}

// Correlation calculates the Pearson correlation coefficient between two datasets.
// Returns NaN when the lengths differ, fewer than two observations exist,
// or either series has zero variance.
func Correlation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 2 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}

// PctChange converts a price column into daily percentage changes.
// out[0] is 0. A NaN price (missing) yields NaN on that day and the next;
// a zero previous price yields 0.
func PctChange(prices []float64) []float64 {
	if len(prices) == 0 {
		return []float64{}
	}
	return talib.Rocp(prices, 1)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Round rounds v to the given number of decimal places, half away from zero,
// on the shortest decimal representation of v.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}
