package analytics

import (
	"time"

	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/pkg/formulas"
)

// frame is a date-aligned set of daily return columns.
type frame struct {
	assets []string
	dates  []time.Time
	cols   [][]float64
}

// priceFrame computes daily returns for every price column, dropping the
// first row and any row where some column has no defined return.
func priceFrame(prices domain.PriceTable) frame {
	f := frame{assets: append([]string(nil), prices.Tickers...)}
	f.cols = make([][]float64, len(f.assets))

	raw := make([][]float64, len(f.assets))
	for i, ticker := range f.assets {
		raw[i] = formulas.PctChange(prices.Column(ticker))
	}

	for row := 1; row < prices.Len(); row++ {
		if !rowDefined(raw, row) {
			continue
		}
		f.dates = append(f.dates, prices.Rows[row].Date)
		for i := range raw {
			f.cols[i] = append(f.cols[i], raw[i][row])
		}
	}
	return f
}

func rowDefined(cols [][]float64, row int) bool {
	for _, col := range cols {
		if !formulas.IsFinite(col[row]) {
			return false
		}
	}
	return true
}

// seriesFrame computes the daily returns of the portfolio values.
func seriesFrame(series domain.PortfolioSeries) frame {
	f := frame{assets: []string{domain.PortfolioAsset}, cols: make([][]float64, 1)}
	r := formulas.PctChange(series.Values())
	for i := 1; i < len(series); i++ {
		if !formulas.IsFinite(r[i]) {
			continue
		}
		f.dates = append(f.dates, series[i].Date)
		f.cols[0] = append(f.cols[0], r[i])
	}
	return f
}

// merge inner-joins other onto f by date, keeping f's row order.
func (f frame) merge(other frame) frame {
	if len(f.assets) == 0 {
		return other
	}

	index := make(map[int64]int, len(other.dates))
	for i, d := range other.dates {
		index[d.Unix()] = i
	}

	out := frame{
		assets: append(append([]string(nil), f.assets...), other.assets...),
		cols:   make([][]float64, len(f.assets)+len(other.assets)),
	}
	for row, d := range f.dates {
		j, ok := index[d.Unix()]
		if !ok {
			continue
		}
		out.dates = append(out.dates, d)
		for i := range f.cols {
			out.cols[i] = append(out.cols[i], f.cols[i][row])
		}
		for i := range other.cols {
			out.cols[len(f.cols)+i] = append(out.cols[len(f.cols)+i], other.cols[i][j])
		}
	}
	return out
}

func buildFrame(prices domain.PriceTable, series *domain.PortfolioSeries) frame {
	f := priceFrame(prices)
	if series != nil {
		f = f.merge(seriesFrame(*series))
	}
	return f
}
