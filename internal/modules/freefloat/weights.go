package freefloat

import (
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/pkg/formulas"
)

// Normalize converts a free-float table into weights proportional to free
// float. Only valid records with a free float take part, and a ticker listed
// more than once counts once, by its first qualifying record. The result is
// empty when no record qualifies or the total free float is not positive.
func Normalize(table domain.FreeFloatTable) domain.WeightMap {
	freeFloat := make(map[string]float64, len(table))
	total := 0.0
	for _, rec := range table {
		if !rec.Valid || rec.FreeFloatB == nil {
			continue
		}
		if _, dup := freeFloat[rec.Ticker]; dup {
			continue
		}
		freeFloat[rec.Ticker] = *rec.FreeFloatB
		total += *rec.FreeFloatB
	}

	weights := make(domain.WeightMap, len(freeFloat))
	if len(freeFloat) == 0 || total <= 0 {
		return weights
	}

	for ticker, ff := range freeFloat {
		weights[ticker] = formulas.Round(ff/total, 6)
	}
	return weights
}

// WeightedTickers returns the tickers of table that carry a non-zero weight,
// in table order.
func WeightedTickers(table domain.FreeFloatTable, weights domain.WeightMap) []string {
	out := make([]string, 0, len(weights))
	seen := make(map[string]bool, len(weights))
	for _, rec := range table {
		if w, ok := weights[rec.Ticker]; ok && w != 0 && !seen[rec.Ticker] {
			out = append(out, rec.Ticker)
			seen[rec.Ticker] = true
		}
	}
	return out
}
