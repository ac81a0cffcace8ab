// Package handlers provides HTTP handlers for free-float lookups.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/api"
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/modules/freefloat"
	"github.com/aristath/freefloat/internal/utils"
)

// Handler handles free-float HTTP requests
type Handler struct {
	resolver *freefloat.Resolver
	log      zerolog.Logger
}

// NewHandler creates a new free-float handler
func NewHandler(resolver *freefloat.Resolver, log zerolog.Logger) *Handler {
	return &Handler{
		resolver: resolver,
		log:      log.With().Str("handler", "freefloat").Logger(),
	}
}

// tableResponse is the data of a free-float response.
type tableResponse struct {
	FreeFloat domain.FreeFloatTable `json:"free_float"`
	Weights   domain.WeightMap      `json:"weights"`
}

// HandleGetTable handles GET /api/freefloat?tickers=A,B
func (h *Handler) HandleGetTable(w http.ResponseWriter, r *http.Request) {
	tickers := utils.NormalizeTickers(utils.ParseCSV(r.URL.Query().Get("tickers")))
	if len(tickers) == 0 {
		api.WriteError(w, h.log, fmt.Errorf("%w: tickers query parameter is required", domain.ErrInvalidRequest))
		return
	}

	table := h.resolver.Resolve(r.Context(), tickers)
	api.WriteData(w, h.log, tableResponse{
		FreeFloat: table,
		Weights:   freefloat.Normalize(table),
	}, "")
}
