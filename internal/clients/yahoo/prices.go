package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/domain"
)

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  interface{}   `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		GMTOffset int64 `json:"gmtoffset"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []struct {
			Open   []*float64 `json:"open"`
			High   []*float64 `json:"high"`
			Low    []*float64 `json:"low"`
			Close  []*float64 `json:"close"`
			Volume []*float64 `json:"volume"`
		} `json:"quote"`
		AdjClose []struct {
			AdjClose []*float64 `json:"adjclose"`
		} `json:"adjclose"`
	} `json:"indicators"`
}

// bar is one daily observation of every field.
type bar struct {
	Date   time.Time           `msgpack:"date"`
	Fields map[string]*float64 `msgpack:"fields"`
}

// history is the cached daily history of one ticker.
type history struct {
	Bars []bar `msgpack:"bars"`
}

// priceFields returns the fields available for the adjustment mode.
func priceFields(autoAdjust bool) []string {
	fields := []string{
		domain.PriceFieldOpen,
		domain.PriceFieldHigh,
		domain.PriceFieldLow,
		domain.PriceFieldClose,
		domain.PriceFieldVolume,
	}
	if !autoAdjust {
		fields = append(fields, domain.PriceFieldAdjClose)
	}
	return fields
}

func validField(field string, autoAdjust bool) bool {
	for _, f := range priceFields(autoAdjust) {
		if f == field {
			return true
		}
	}
	return false
}

// FetchPrices implements domain.PriceSource.
func (c *Client) FetchPrices(ctx context.Context, q domain.PriceQuery) (domain.PriceTable, error) {
	if !validField(q.Field, q.AutoAdjust) {
		return domain.PriceTable{}, fmt.Errorf("%w: %q (auto_adjust=%t)", domain.ErrUnknownPriceField, q.Field, q.AutoAdjust)
	}

	columns := make(map[string]map[int64]float64)
	var tickers []string
	seen := make(map[string]bool, len(q.Tickers))

	for _, ticker := range q.Tickers {
		if seen[ticker] {
			continue
		}
		seen[ticker] = true

		h, err := c.fetchHistory(ctx, ticker, q.Start, q.End, q.AutoAdjust)
		if err != nil {
			return domain.PriceTable{}, err
		}

		col := make(map[int64]float64)
		for _, b := range h.Bars {
			if b.Date.Before(q.Start) || !b.Date.Before(q.End) {
				continue
			}
			if v := b.Fields[q.Field]; v != nil {
				col[b.Date.Unix()] = *v
			}
		}
		if len(col) == 0 {
			c.log.Debug().Str("ticker", ticker).Msg("No price data")
			continue
		}
		tickers = append(tickers, ticker)
		columns[ticker] = col
	}

	return assembleTable(tickers, columns), nil
}

// assembleTable aligns the columns on the union of their dates and
// forward-fills gaps. Leading gaps stay missing.
func assembleTable(tickers []string, columns map[string]map[int64]float64) domain.PriceTable {
	dateSet := make(map[int64]bool)
	for _, col := range columns {
		for d := range col {
			dateSet[d] = true
		}
	}
	dates := make([]int64, 0, len(dateSet))
	for d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	table := domain.PriceTable{Tickers: tickers, Rows: make([]domain.PriceRow, 0, len(dates))}
	last := make(map[string]float64, len(tickers))
	for _, d := range dates {
		prices := make(map[string]float64, len(tickers))
		for _, t := range tickers {
			if v, ok := columns[t][d]; ok {
				last[t] = v
			}
			if v, ok := last[t]; ok {
				prices[t] = v
			}
		}
		table.Rows = append(table.Rows, domain.PriceRow{Date: time.Unix(d, 0).UTC(), Prices: prices})
	}
	return table
}

func (c *Client) fetchHistory(ctx context.Context, ticker string, start, end time.Time, autoAdjust bool) (history, error) {
	key := fmt.Sprintf("%s|%d|%d|%t", ticker, start.Unix(), end.Unix(), autoAdjust)

	var h history
	if c.cached(clientdata.TableYahooPrices, key, &h) {
		return h, nil
	}

	query := url.Values{
		"interval": {"1d"},
		"period1":  {strconv.FormatInt(start.Unix(), 10)},
		"period2":  {strconv.FormatInt(end.Unix(), 10)},
		"events":   {"div,splits"},
	}

	var resp chartResponse
	found, err := c.getJSON(ctx, "/v8/finance/chart/"+url.PathEscape(ticker), query, &resp)
	if err != nil {
		return history{}, fmt.Errorf("failed to fetch prices for %s: %w", ticker, err)
	}
	if found && len(resp.Chart.Result) > 0 {
		h = historyFromChart(resp.Chart.Result[0], autoAdjust)
	}

	c.store(clientdata.TableYahooPrices, key, h, clientdata.TTLPrices)
	return h, nil
}

func historyFromChart(r chartResult, autoAdjust bool) history {
	if len(r.Indicators.Quote) == 0 {
		return history{}
	}
	quote := r.Indicators.Quote[0]
	var adj []*float64
	if len(r.Indicators.AdjClose) > 0 {
		adj = r.Indicators.AdjClose[0].AdjClose
	}

	h := history{Bars: make([]bar, 0, len(r.Timestamp))}
	for i, ts := range r.Timestamp {
		local := time.Unix(ts+r.Meta.GMTOffset, 0).UTC()
		date := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

		fields := map[string]*float64{
			domain.PriceFieldOpen:     at(quote.Open, i),
			domain.PriceFieldHigh:     at(quote.High, i),
			domain.PriceFieldLow:      at(quote.Low, i),
			domain.PriceFieldClose:    at(quote.Close, i),
			domain.PriceFieldVolume:   at(quote.Volume, i),
			domain.PriceFieldAdjClose: at(adj, i),
		}
		if autoAdjust {
			adjust(fields)
		}
		h.Bars = append(h.Bars, bar{Date: date, Fields: fields})
	}
	return h
}

// adjust scales OHLC by adjclose/close and drops the adjusted close column.
func adjust(fields map[string]*float64) {
	closePrice, adjClose := fields[domain.PriceFieldClose], fields[domain.PriceFieldAdjClose]
	delete(fields, domain.PriceFieldAdjClose)
	if closePrice == nil || adjClose == nil || *closePrice == 0 {
		return
	}
	ratio := *adjClose / *closePrice
	for _, name := range []string{domain.PriceFieldOpen, domain.PriceFieldHigh, domain.PriceFieldLow, domain.PriceFieldClose} {
		if v := fields[name]; v != nil {
			fields[name] = domain.Float(*v * ratio)
		}
	}
}

func at(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}
