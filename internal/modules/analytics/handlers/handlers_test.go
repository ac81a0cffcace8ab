package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/freefloat/internal/api"
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/modules/freefloat"
	"github.com/aristath/freefloat/internal/modules/portfolio"
	testingpkg "github.com/aristath/freefloat/internal/testing"
)

func newPrices() *testingpkg.MockPriceSource {
	return testingpkg.NewMockPriceSource(testingpkg.NewPriceTable(testingpkg.Day(2), []string{"A", "B"}, map[string][]float64{
		"A": {100, 110, 99, 108.9},
		"B": {100, 90, 99, 89.1},
	}))
}

func setupRouter(prices *testingpkg.MockPriceSource) *chi.Mux {
	return setupRouterWith(prices, testingpkg.NewMockFundamentalsSource().
		Set("A", testingpkg.NewFundamentals(1e11, 10, 6e9)).
		Set("B", testingpkg.NewFundamentals(1e11, 10, 4e9)))
}

func setupRouterWith(prices *testingpkg.MockPriceSource, fundamentals *testingpkg.MockFundamentalsSource) *chi.Mux {
	log := zerolog.Nop()
	builder := portfolio.NewBuilder(freefloat.NewResolver(fundamentals, 2, nil, log), prices, nil, log)

	router := chi.NewRouter()
	router.Route("/api", NewHandler(builder, prices, api.Defaults{}, log).RegisterRoutes)
	return router
}

func post(t *testing.T, router http.Handler, path, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, strings.NewReader(body)))

	var env map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func TestHandleCorrelations_WithPortfolio(t *testing.T) {
	code, env := post(t, setupRouter(newPrices()), "/api/analytics/correlations",
		`{"tickers":["A","B"],"start":"2024-01-02","end":"2024-01-10"}`)
	require.Equal(t, http.StatusOK, code)

	var m struct {
		Assets []string     `json:"assets"`
		Values [][]*float64 `json:"values"`
	}
	require.NoError(t, json.Unmarshal(env["data"], &m))

	assert.Equal(t, []string{"A", "B", domain.PortfolioAsset}, m.Assets)
	require.Len(t, m.Values, 3)
	for i := range m.Values {
		require.NotNil(t, m.Values[i][i])
		assert.Equal(t, 1.0, *m.Values[i][i])
	}
	assert.InDelta(t, -1.0, *m.Values[0][1], 1e-9)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(env["metadata"], &meta))
	assert.NotEmpty(t, meta["run_id"])
	assert.Equal(t, portfolio.StatusSimulated, meta["status"])
	assert.NotContains(t, meta, "reason")
}

func TestHandleAnalytics_DegradedPortfolioIsSignalled(t *testing.T) {
	for _, path := range []string{"/api/analytics/volatility", "/api/analytics/correlations"} {
		t.Run(path, func(t *testing.T) {
			router := setupRouterWith(newPrices(), testingpkg.NewMockFundamentalsSource())
			code, env := post(t, router, path, `{"tickers":["A","B"],"start":"2024-01-02","end":"2024-01-10"}`)
			require.Equal(t, http.StatusOK, code)

			var meta map[string]string
			require.NoError(t, json.Unmarshal(env["metadata"], &meta))
			assert.Equal(t, portfolio.StatusDegraded, meta["status"])
			assert.Equal(t, portfolio.ReasonNoValidWeights, meta["reason"])
			assert.NotEmpty(t, meta["run_id"])
		})
	}
}

func TestHandleVolatility_WithoutPortfolio(t *testing.T) {
	prices := newPrices()
	code, env := post(t, setupRouter(prices), "/api/analytics/volatility",
		`{"tickers":["A","B"],"start":"2024-01-02","end":"2024-01-10","include_portfolio":false}`)
	require.Equal(t, http.StatusOK, code)

	var v map[string]*float64
	require.NoError(t, json.Unmarshal(env["data"], &v))
	assert.Len(t, v, 2)
	assert.NotContains(t, v, domain.PortfolioAsset)
	assert.InDelta(t, 1.8330302779823, *v["A"], 1e-9)

	require.Len(t, prices.Queries(), 1)
	assert.Equal(t, []string{"A", "B"}, prices.Queries()[0].Tickers)

	var meta map[string]string
	require.NoError(t, json.Unmarshal(env["metadata"], &meta))
	assert.NotContains(t, meta, "status")
}

func TestHandleAnalytics_Errors(t *testing.T) {
	code, _ := post(t, setupRouter(newPrices()), "/api/analytics/volatility", `{"tickers":["A"]}`)
	assert.Equal(t, http.StatusBadRequest, code)

	prices := newPrices()
	prices.SetError(domain.ErrUpstreamFetch)
	code, _ = post(t, setupRouter(prices), "/api/analytics/correlations",
		`{"tickers":["A"],"start":"2024-01-02","end":"2024-01-10","include_portfolio":false}`)
	assert.Equal(t, http.StatusBadGateway, code)
}
