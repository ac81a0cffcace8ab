package testing

import (
	"context"
	"sync"

	"github.com/aristath/freefloat/internal/domain"
)

// MockFundamentalsSource is an in-memory domain.FundamentalsSource.
type MockFundamentalsSource struct {
	mu           sync.Mutex
	fundamentals map[string]domain.Fundamentals
	errs         map[string]error
	calls        map[string]int
}

// NewMockFundamentalsSource creates an empty mock; unknown tickers return
// empty fundamentals.
func NewMockFundamentalsSource() *MockFundamentalsSource {
	return &MockFundamentalsSource{
		fundamentals: make(map[string]domain.Fundamentals),
		errs:         make(map[string]error),
		calls:        make(map[string]int),
	}
}

// Set registers the fundamentals returned for ticker.
func (m *MockFundamentalsSource) Set(ticker string, f domain.Fundamentals) *MockFundamentalsSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fundamentals[ticker] = f
	return m
}

// SetError makes lookups of ticker fail with err.
func (m *MockFundamentalsSource) SetError(ticker string, err error) *MockFundamentalsSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[ticker] = err
	return m
}

// Calls returns how many times ticker was looked up.
func (m *MockFundamentalsSource) Calls(ticker string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[ticker]
}

// FetchFundamentals implements domain.FundamentalsSource.
func (m *MockFundamentalsSource) FetchFundamentals(ctx context.Context, ticker string) (domain.Fundamentals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[ticker]++
	if err, ok := m.errs[ticker]; ok {
		return domain.Fundamentals{}, err
	}
	return m.fundamentals[ticker], nil
}

// MockPriceSource is an in-memory domain.PriceSource backed by a full table.
// It narrows the table to the requested tickers and records every query.
type MockPriceSource struct {
	mu      sync.Mutex
	table   domain.PriceTable
	err     error
	queries []domain.PriceQuery
}

// NewMockPriceSource creates a mock serving table.
func NewMockPriceSource(table domain.PriceTable) *MockPriceSource {
	return &MockPriceSource{table: table}
}

// SetError makes every fetch fail with err.
func (m *MockPriceSource) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Queries returns the recorded queries.
func (m *MockPriceSource) Queries() []domain.PriceQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.PriceQuery, len(m.queries))
	copy(out, m.queries)
	return out
}

// FetchPrices implements domain.PriceSource.
func (m *MockPriceSource) FetchPrices(ctx context.Context, q domain.PriceQuery) (domain.PriceTable, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, q)
	if m.err != nil {
		return domain.PriceTable{}, m.err
	}

	var tickers []string
	for _, t := range q.Tickers {
		if m.table.HasTicker(t) {
			tickers = append(tickers, t)
		}
	}

	out := domain.PriceTable{Tickers: tickers}
	for _, row := range m.table.Rows {
		if !q.Start.IsZero() && row.Date.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && !row.Date.Before(q.End) {
			continue
		}
		prices := make(map[string]float64, len(tickers))
		for _, t := range tickers {
			if v, ok := row.Prices[t]; ok {
				prices[t] = v
			}
		}
		if len(prices) == 0 {
			continue
		}
		out.Rows = append(out.Rows, domain.PriceRow{Date: row.Date, Prices: prices})
	}
	return out, nil
}
