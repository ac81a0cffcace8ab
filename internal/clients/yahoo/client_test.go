package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/metrics"
	testingpkg "github.com/aristath/freefloat/internal/testing"
)

const aaplSummary = `{"quoteSummary":{"result":[{
	"price":{"marketCap":{"raw":2.9e12},"regularMarketPrice":{"raw":190.0}},
	"summaryDetail":{"marketCap":{"raw":3.0e12,"fmt":"3T"}},
	"financialData":{"currentPrice":{"raw":200.0}},
	"defaultKeyStatistics":{"floatShares":{"raw":1.45e10}}
}],"error":null}}`

const fallbackSummary = `{"quoteSummary":{"result":[{
	"price":{"marketCap":{"raw":1.0e11},"regularMarketPrice":{"raw":50.0}},
	"summaryDetail":{},
	"financialData":{"currentPrice":{}},
	"defaultKeyStatistics":{}
}],"error":null}}`

// ts returns a US market open timestamp for the given January day.
func ts(day int) int64 {
	return testingpkg.Day(day).Add(14*time.Hour + 30*time.Minute).Unix()
}

func chartJSON(days []int, closes, adj []string) string {
	stamps := make([]string, len(days))
	for i, d := range days {
		stamps[i] = fmt.Sprint(ts(d))
	}
	c := strings.Join(closes, ",")
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"gmtoffset":-18000},"timestamp":[%s],
		"indicators":{"quote":[{"open":[%s],"high":[%s],"low":[%s],"close":[%s],"volume":[%s]}],
		"adjclose":[{"adjclose":[%s]}]}}],"error":null}}`,
		strings.Join(stamps, ","), c, c, c, c, c, strings.Join(adj, ","))
}

type fakeYahoo struct {
	hits     atomic.Int64
	handlers map[string]func(w http.ResponseWriter, r *http.Request)
}

func newFakeYahoo(t *testing.T) (*fakeYahoo, *httptest.Server) {
	f := &fakeYahoo{handlers: make(map[string]func(http.ResponseWriter, *http.Request))}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		if h, ok := f.handlers[r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeYahoo) respond(path, body string) {
	f.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func (f *fakeYahoo) fail(path string, status int) {
	f.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func newTestClient(url string, cache *clientdata.Repository, m *metrics.Registry) *Client {
	return NewClient(Config{BaseURL: url, Timeout: 5 * time.Second, RateLimit: 1000}, cache, m, zerolog.Nop())
}

func TestFetchFundamentals(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.respond("/v10/finance/quoteSummary/AAPL", aaplSummary)
	var gotQuery, gotAgent string
	inner := fake.handlers["/v10/finance/quoteSummary/AAPL"]
	fake.handlers["/v10/finance/quoteSummary/AAPL"] = func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("modules")
		gotAgent = r.Header.Get("User-Agent")
		inner(w, r)
	}

	f, err := newTestClient(server.URL, nil, nil).FetchFundamentals(context.Background(), "AAPL")
	require.NoError(t, err)

	require.NotNil(t, f.MarketCap)
	require.NotNil(t, f.CurrentPrice)
	require.NotNil(t, f.FloatShares)
	assert.Equal(t, 3.0e12, *f.MarketCap)
	assert.Equal(t, 200.0, *f.CurrentPrice)
	assert.Equal(t, 1.45e10, *f.FloatShares)
	assert.Equal(t, quoteSummaryModules, gotQuery)
	assert.Contains(t, gotAgent, "Mozilla")
}

func TestFetchFundamentals_FallsBackToPriceModule(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.respond("/v10/finance/quoteSummary/SAP", fallbackSummary)

	f, err := newTestClient(server.URL, nil, nil).FetchFundamentals(context.Background(), "SAP")
	require.NoError(t, err)

	assert.Equal(t, 1.0e11, *f.MarketCap)
	assert.Equal(t, 50.0, *f.CurrentPrice)
	assert.Nil(t, f.FloatShares)
}

func TestFetchFundamentals_UnknownTicker(t *testing.T) {
	_, server := newFakeYahoo(t)

	f, err := newTestClient(server.URL, nil, nil).FetchFundamentals(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, domain.Fundamentals{}, f)
}

func TestFetchFundamentals_UpstreamErrors(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.fail("/v10/finance/quoteSummary/DOWN", http.StatusServiceUnavailable)
	fake.respond("/v10/finance/quoteSummary/BAD", `{"quoteSummary":`)

	client := newTestClient(server.URL, nil, nil)

	_, err := client.FetchFundamentals(context.Background(), "DOWN")
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)

	_, err = client.FetchFundamentals(context.Background(), "BAD")
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)
}

func TestFetchFundamentals_UsesCache(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.respond("/v10/finance/quoteSummary/AAPL", aaplSummary)

	db := testingpkg.NewTestDB(t, "client_data")
	m := metrics.NewRegistry()
	client := newTestClient(server.URL, clientdata.NewRepository(db.Conn()), m)

	first, err := client.FetchFundamentals(context.Background(), "AAPL")
	require.NoError(t, err)
	second, err := client.FetchFundamentals(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fake.hits.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits.WithLabelValues(clientdata.TableYahooFundamentals)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses.WithLabelValues(clientdata.TableYahooFundamentals)))
}

func TestFetchPrices(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.respond("/v8/finance/chart/AAPL", chartJSON(
		[]int{2, 3, 4, 5},
		[]string{"100", "null", "121", "130"},
		[]string{"100", "null", "121", "130"},
	))
	fake.respond("/v8/finance/chart/MSFT", chartJSON(
		[]int{3, 4},
		[]string{"45", "49.5"},
		[]string{"45", "49.5"},
	))

	table, err := newTestClient(server.URL, nil, nil).FetchPrices(context.Background(), domain.PriceQuery{
		Tickers:    []string{"MSFT", "AAPL", "MISSING", "AAPL"},
		Start:      testingpkg.Day(2),
		End:        testingpkg.Day(5),
		Field:      domain.PriceFieldClose,
		AutoAdjust: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"MSFT", "AAPL"}, table.Tickers)
	assert.Equal(t, []time.Time{testingpkg.Day(2), testingpkg.Day(3), testingpkg.Day(4)}, table.Dates())

	// MSFT has no data on day 2 and is not back-filled.
	_, ok := table.Rows[0].Prices["MSFT"]
	assert.False(t, ok)
	assert.Equal(t, 100.0, table.Rows[0].Prices["AAPL"])
	// AAPL is null on day 3 and forward-filled.
	assert.Equal(t, 100.0, table.Rows[1].Prices["AAPL"])
	assert.Equal(t, 45.0, table.Rows[1].Prices["MSFT"])
	assert.Equal(t, 121.0, table.Rows[2].Prices["AAPL"])
}

func TestFetchPrices_AutoAdjust(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.respond("/v8/finance/chart/KO", chartJSON(
		[]int{2, 3},
		[]string{"60", "62"},
		[]string{"30", "31"},
	))
	client := newTestClient(server.URL, nil, nil)
	q := domain.PriceQuery{
		Tickers: []string{"KO"},
		Start:   testingpkg.Day(1),
		End:     testingpkg.Day(10),
		Field:   domain.PriceFieldClose,
	}

	t.Run("adjusted", func(t *testing.T) {
		q.AutoAdjust = true
		table, err := client.FetchPrices(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []float64{30, 31}, table.Column("KO"))
	})

	t.Run("raw", func(t *testing.T) {
		q.AutoAdjust = false
		table, err := client.FetchPrices(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []float64{60, 62}, table.Column("KO"))
	})

	t.Run("adjusted close without auto adjust", func(t *testing.T) {
		q.AutoAdjust = false
		q.Field = domain.PriceFieldAdjClose
		table, err := client.FetchPrices(context.Background(), q)
		require.NoError(t, err)
		assert.Equal(t, []float64{30, 31}, table.Column("KO"))
	})
}

func TestFetchPrices_UnknownField(t *testing.T) {
	_, server := newFakeYahoo(t)
	client := newTestClient(server.URL, nil, nil)

	for _, q := range []domain.PriceQuery{
		{Tickers: []string{"AAPL"}, Field: "Bogus", AutoAdjust: false},
		{Tickers: []string{"AAPL"}, Field: domain.PriceFieldAdjClose, AutoAdjust: true},
	} {
		_, err := client.FetchPrices(context.Background(), q)
		assert.ErrorIs(t, err, domain.ErrUnknownPriceField)
	}
}

func TestFetchPrices_UpstreamFailure(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.fail("/v8/finance/chart/AAPL", http.StatusBadGateway)

	_, err := newTestClient(server.URL, nil, nil).FetchPrices(context.Background(), domain.PriceQuery{
		Tickers:    []string{"AAPL"},
		Start:      testingpkg.Day(2),
		End:        testingpkg.Day(5),
		Field:      domain.PriceFieldClose,
		AutoAdjust: true,
	})
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)
}

func TestFetchPrices_BreakerOpens(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.fail("/v8/finance/chart/AAPL", http.StatusInternalServerError)
	client := newTestClient(server.URL, nil, nil)
	q := domain.PriceQuery{Tickers: []string{"AAPL"}, Start: testingpkg.Day(2), End: testingpkg.Day(5), Field: domain.PriceFieldClose}

	for i := 0; i < 5; i++ {
		_, err := client.FetchPrices(context.Background(), q)
		require.ErrorIs(t, err, domain.ErrUpstreamFetch)
	}
	hits := fake.hits.Load()

	_, err := client.FetchPrices(context.Background(), q)
	assert.ErrorIs(t, err, domain.ErrUpstreamFetch)
	assert.Equal(t, hits, fake.hits.Load())
}

func TestFetchPrices_UsesCache(t *testing.T) {
	fake, server := newFakeYahoo(t)
	fake.respond("/v8/finance/chart/AAPL", chartJSON([]int{2, 3}, []string{"100", "110"}, []string{"100", "110"}))

	db := testingpkg.NewTestDB(t, "client_data")
	client := newTestClient(server.URL, clientdata.NewRepository(db.Conn()), nil)
	q := domain.PriceQuery{Tickers: []string{"AAPL"}, Start: testingpkg.Day(2), End: testingpkg.Day(5), Field: domain.PriceFieldClose, AutoAdjust: true}

	first, err := client.FetchPrices(context.Background(), q)
	require.NoError(t, err)
	second, err := client.FetchPrices(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), fake.hits.Load())
}
