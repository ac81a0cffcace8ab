// Package handlers provides HTTP handlers for portfolio builds.
package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/api"
	"github.com/aristath/freefloat/internal/modules/analytics"
	"github.com/aristath/freefloat/internal/modules/portfolio"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	builder  *portfolio.Builder
	defaults api.Defaults
	log      zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(builder *portfolio.Builder, defaults api.Defaults, log zerolog.Logger) *Handler {
	return &Handler{
		builder:  builder,
		defaults: defaults,
		log:      log.With().Str("handler", "portfolio").Logger(),
	}
}

// buildResponse is the data of a build response.
type buildResponse struct {
	*portfolio.BuildResult
	Analytics *analytics.Report `json:"analytics,omitempty"`
}

// HandleBuild handles POST /api/portfolio/build
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	var body api.PortfolioRequest
	if err := api.Decode(r, &body); err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	req, err := body.BuildRequest(h.defaults)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	result, err := h.builder.Build(r.Context(), req)
	if err != nil {
		api.WriteError(w, h.log, err)
		return
	}

	resp := buildResponse{BuildResult: result}
	if body.IncludeAnalytics {
		report := analytics.Analyze(result.Prices, &result.Series)
		resp.Analytics = &report
	}

	api.WriteDataWith(w, h.log, resp, api.RunMetadata(result))
}
