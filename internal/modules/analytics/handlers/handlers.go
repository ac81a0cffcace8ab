// Package handlers provides HTTP handlers for return analytics.
package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/api"
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/modules/analytics"
	"github.com/aristath/freefloat/internal/modules/portfolio"
)

// Handler handles analytics HTTP requests
type Handler struct {
	builder  *portfolio.Builder
	prices   domain.PriceSource
	defaults api.Defaults
	log      zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(builder *portfolio.Builder, prices domain.PriceSource, defaults api.Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		builder:  builder,
		prices:   prices,
		defaults: defaults,
		log:      log.With().Str("handler", "analytics").Logger(),
	}
}

// inputs gathers the price table and, when requested, the simulated series.
// The returned metadata carries the build status so a degraded portfolio
// column is never reported as a regular one.
func (h *Handler) inputs(ctx context.Context, body api.PortfolioRequest) (domain.PriceTable, *domain.PortfolioSeries, api.Metadata, error) {
	req, err := body.BuildRequest(h.defaults)
	if err != nil {
		return domain.PriceTable{}, nil, api.Metadata{}, err
	}

	if body.WantsPortfolio() {
		result, err := h.builder.Build(ctx, req)
		if err != nil {
			return domain.PriceTable{}, nil, api.Metadata{}, err
		}
		if result.Degraded() {
			h.log.Warn().
				Str("run_id", result.RunID).
				Str("reason", result.Reason).
				Msg("Analytics computed on a degraded portfolio")
		}
		return result.Prices, &result.Series, api.RunMetadata(result), nil
	}

	prices, err := h.prices.FetchPrices(ctx, domain.PriceQuery{
		Tickers:    req.Tickers,
		Start:      req.Start,
		End:        req.End,
		Field:      req.PriceField,
		AutoAdjust: req.AutoAdjust,
	})
	if err != nil {
		return domain.PriceTable{}, nil, api.Metadata{}, err
	}
	return prices, nil, api.Metadata{}, nil
}

// HandleCorrelations handles POST /api/analytics/correlations
func (h *Handler) HandleCorrelations(w http.ResponseWriter, r *http.Request) {
	var body api.PortfolioRequest
	if err := api.Decode(r, &body); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	prices, series, meta, err := h.inputs(r.Context(), body)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteDataWith(w, h.log, analytics.Correlations(prices, series), meta)
}

// HandleVolatility handles POST /api/analytics/volatility
func (h *Handler) HandleVolatility(w http.ResponseWriter, r *http.Request) {
	var body api.PortfolioRequest
	if err := api.Decode(r, &body); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	prices, series, meta, err := h.inputs(r.Context(), body)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	api.WriteDataWith(w, h.log, analytics.AnnualizedVolatility(prices, series), meta)
}
