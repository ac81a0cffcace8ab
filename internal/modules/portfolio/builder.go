// Package portfolio assembles a free-float weighted portfolio simulation from
// fundamentals and prices.
package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/metrics"
	"github.com/aristath/freefloat/internal/modules/freefloat"
	"github.com/aristath/freefloat/internal/modules/simulation"
)

// Defaults applied to zero-valued request fields.
const (
	DefaultInitialInvestment = 1000.0
	DefaultPriceField        = domain.PriceFieldClose
)

// Build outcomes.
const (
	StatusSimulated = "simulated"
	StatusDegraded  = "degraded"

	ReasonNoValidWeights = "no_valid_weights"
)

// BuildRequest describes one portfolio build.
type BuildRequest struct {
	Tickers           []string
	Start             time.Time
	End               time.Time // exclusive
	InitialInvestment float64
	PriceField        string
	AutoAdjust        bool
}

// BuildResult is the output of a build. When Status is StatusDegraded the
// series is constant at the initial investment and Weights is empty.
type BuildResult struct {
	RunID   string                 `json:"run_id"`
	Status  string                 `json:"status"`
	Reason  string                 `json:"reason,omitempty"`
	Table   domain.FreeFloatTable  `json:"free_float"`
	Weights domain.WeightMap       `json:"weights"`
	Prices  domain.PriceTable      `json:"-"`
	Series  domain.PortfolioSeries `json:"series"`
}

// Degraded reports whether no valid weights could be derived.
func (r *BuildResult) Degraded() bool {
	return r.Status == StatusDegraded
}

// Builder runs resolve -> normalize -> fetch prices -> simulate.
type Builder struct {
	resolver *freefloat.Resolver
	prices   domain.PriceSource
	metrics  *metrics.Registry
	log      zerolog.Logger
}

// NewBuilder creates a new portfolio builder. m may be nil.
func NewBuilder(resolver *freefloat.Resolver, prices domain.PriceSource, m *metrics.Registry, log zerolog.Logger) *Builder {
	return &Builder{
		resolver: resolver,
		prices:   prices,
		metrics:  m,
		log:      log.With().Str("component", "portfolio_builder").Logger(),
	}
}

// NewRequest returns a request over tickers with the default investment,
// price field and auto adjustment.
func NewRequest(tickers []string, start, end time.Time) BuildRequest {
	return BuildRequest{
		Tickers:           tickers,
		Start:             start,
		End:               end,
		InitialInvestment: DefaultInitialInvestment,
		PriceField:        DefaultPriceField,
		AutoAdjust:        true,
	}
}

// Validate checks the request and fills the default price field.
func (req *BuildRequest) Validate() error {
	if len(req.Tickers) == 0 {
		return fmt.Errorf("%w: no tickers", domain.ErrInvalidRequest)
	}
	if !req.End.After(req.Start) {
		return fmt.Errorf("%w: end %s is not after start %s", domain.ErrInvalidRequest,
			req.End.Format(time.DateOnly), req.Start.Format(time.DateOnly))
	}
	if req.InitialInvestment <= 0 {
		return fmt.Errorf("%w: initial investment must be positive", domain.ErrInvalidRequest)
	}
	if req.PriceField == "" {
		req.PriceField = DefaultPriceField
	}
	return nil
}

// Build runs the pipeline for req.
//
// Missing fundamentals never fail a build: with no valid weights the result
// is degraded and the prices of all requested tickers are still fetched.
// Only price source failures are returned.
func (b *Builder) Build(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := b.log.With().Str("run_id", runID).Logger()

	table := b.resolver.Resolve(ctx, req.Tickers)
	weights := freefloat.Normalize(table)

	result := &BuildResult{
		RunID:   runID,
		Status:  StatusSimulated,
		Table:   table,
		Weights: weights,
	}

	fetch := freefloat.WeightedTickers(table, weights)
	if len(weights) == 0 {
		log.Warn().
			Strs("tickers", req.Tickers).
			Msg("No valid free-float data, returning constant portfolio")
		result.Status = StatusDegraded
		result.Reason = ReasonNoValidWeights
		fetch = req.Tickers
	}

	prices, err := b.fetchPrices(ctx, req, fetch)
	if err != nil {
		b.metrics.ObserveBuild(metrics.ResultError)
		return nil, err
	}
	result.Prices = prices
	result.Series = simulation.Simulate(prices, weights, req.InitialInvestment)

	b.metrics.ObserveBuild(result.Status)
	log.Info().
		Str("status", result.Status).
		Int("weighted", len(weights)).
		Int("days", len(result.Series)).
		Msg("Portfolio built")

	return result, nil
}

func (b *Builder) fetchPrices(ctx context.Context, req BuildRequest, tickers []string) (domain.PriceTable, error) {
	start := time.Now()
	prices, err := b.prices.FetchPrices(ctx, domain.PriceQuery{
		Tickers:    tickers,
		Start:      req.Start,
		End:        req.End,
		Field:      req.PriceField,
		AutoAdjust: req.AutoAdjust,
	})
	b.metrics.ObservePriceFetch(start, err)
	if err != nil {
		return domain.PriceTable{}, fmt.Errorf("failed to fetch prices: %w", err)
	}
	return prices, nil
}
