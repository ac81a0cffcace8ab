// Package freefloat turns raw fundamentals into validated free-float records
// and normalized portfolio weights.
package freefloat

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/metrics"
	"github.com/aristath/freefloat/pkg/formulas"
)

const (
	// DefaultConcurrency bounds the number of in-flight fundamentals lookups.
	DefaultConcurrency = 4

	billion = 1e9
)

// Resolver builds free-float tables from a fundamentals source.
type Resolver struct {
	source      domain.FundamentalsSource
	concurrency int
	metrics     *metrics.Registry
	log         zerolog.Logger
}

// NewResolver creates a new free-float resolver.
// concurrency <= 0 falls back to DefaultConcurrency; m may be nil.
func NewResolver(source domain.FundamentalsSource, concurrency int, m *metrics.Registry, log zerolog.Logger) *Resolver {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Resolver{
		source:      source,
		concurrency: concurrency,
		metrics:     m,
		log:         log.With().Str("component", "freefloat_resolver").Logger(),
	}
}

// Resolve returns one record per ticker, in input order.
//
// Lookups run concurrently. A failed lookup yields an invalid record with
// FetchError set and never affects the other tickers.
func (r *Resolver) Resolve(ctx context.Context, tickers []string) domain.FreeFloatTable {
	table := make(domain.FreeFloatTable, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			table[i] = r.resolveOne(gctx, ticker)
			return nil
		})
	}
	_ = g.Wait()

	r.log.Info().
		Int("tickers", len(tickers)).
		Int("valid", table.ValidCount()).
		Msg("Resolved free-float table")

	return table
}

func (r *Resolver) resolveOne(ctx context.Context, ticker string) domain.FreeFloatRecord {
	f, err := r.source.FetchFundamentals(ctx, ticker)
	if err != nil {
		r.log.Warn().Err(err).Str("ticker", ticker).Msg("Failed to fetch fundamentals")
		r.metrics.ObserveFundamentals(metrics.ResultError)
		return domain.FreeFloatRecord{Ticker: ticker, FetchError: err.Error()}
	}

	rec := BuildRecord(ticker, f)
	if rec.Valid {
		r.metrics.ObserveFundamentals(metrics.ResultValid)
	} else {
		r.metrics.ObserveFundamentals(metrics.ResultInvalid)
		r.log.Debug().
			Str("ticker", ticker).
			Bool("has_market_cap", f.MarketCap != nil).
			Bool("has_price", f.CurrentPrice != nil).
			Bool("has_float", f.FloatShares != nil).
			Msg("Free-float data incomplete or inconsistent")
	}
	return rec
}

// BuildRecord derives a free-float record from the raw fundamentals of ticker.
func BuildRecord(ticker string, f domain.Fundamentals) domain.FreeFloatRecord {
	rec := domain.FreeFloatRecord{Ticker: ticker}

	var implied *float64
	if f.MarketCap != nil && f.CurrentPrice != nil && *f.CurrentPrice != 0 {
		implied = domain.Float(*f.MarketCap / *f.CurrentPrice)
	}

	if implied != nil {
		rec.ImpliedSharesOutstandingB = domain.Float(formulas.Round(*implied/billion, 3))
	}
	if f.FloatShares != nil {
		rec.FreeFloatB = domain.Float(formulas.Round(*f.FloatShares/billion, 3))
	}

	if implied != nil && f.FloatShares != nil {
		if *implied != 0 {
			rec.FreeFloatPct = domain.Float(formulas.Round(*f.FloatShares / *implied * 100, 2))
		}
		rec.Valid = *f.FloatShares <= *implied
	}

	return rec
}
