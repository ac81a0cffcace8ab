// Package api holds the request decoding, validation and response envelope
// shared by the module HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/modules/portfolio"
	"github.com/aristath/freefloat/internal/utils"
)

var validate = validator.New()

// Envelope is the response shape of every API endpoint.
type Envelope struct {
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Metadata Metadata    `json:"metadata"`
}

// Metadata accompanies every response. Status and Reason are set when the
// data came from a portfolio build.
type Metadata struct {
	Timestamp string `json:"timestamp"`
	RunID     string `json:"run_id,omitempty"`
	Status    string `json:"status,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// RunMetadata describes the build behind a response.
func RunMetadata(result *portfolio.BuildResult) Metadata {
	if result == nil {
		return Metadata{}
	}
	return Metadata{RunID: result.RunID, Status: result.Status, Reason: result.Reason}
}

// Defaults are applied to omitted request fields.
type Defaults struct {
	InitialInvestment float64
	PriceField        string
}

// PortfolioRequest is the JSON body of the build and analytics endpoints.
type PortfolioRequest struct {
	Tickers           []string `json:"tickers" validate:"required,min=1,dive,required"`
	Start             string   `json:"start" validate:"required,datetime=2006-01-02"`
	End               string   `json:"end" validate:"required,datetime=2006-01-02"`
	InitialInvestment *float64 `json:"initial_investment" validate:"omitempty,gt=0"`
	PriceField        string   `json:"price_field"`
	AutoAdjust        *bool    `json:"auto_adjust"`
	IncludeAnalytics  bool     `json:"include_analytics"`
	IncludePortfolio  *bool    `json:"include_portfolio"`
}

// BuildRequest converts the body into a portfolio build request.
func (p PortfolioRequest) BuildRequest(d Defaults) (portfolio.BuildRequest, error) {
	start, err := utils.ParseDate(p.Start)
	if err != nil {
		return portfolio.BuildRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	end, err := utils.ParseDate(p.End)
	if err != nil {
		return portfolio.BuildRequest{}, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}

	req := portfolio.NewRequest(utils.NormalizeTickers(p.Tickers), start, end)
	if d.InitialInvestment > 0 {
		req.InitialInvestment = d.InitialInvestment
	}
	if d.PriceField != "" {
		req.PriceField = d.PriceField
	}
	if p.InitialInvestment != nil {
		req.InitialInvestment = *p.InitialInvestment
	}
	if p.PriceField != "" {
		req.PriceField = p.PriceField
	}
	if p.AutoAdjust != nil {
		req.AutoAdjust = *p.AutoAdjust
	}
	return req, req.Validate()
}

// WantsPortfolio reports whether the portfolio should join the analytics.
func (p PortfolioRequest) WantsPortfolio() bool {
	return p.IncludePortfolio == nil || *p.IncludePortfolio
}

// Decode reads a JSON body into v and validates its struct tags.
func Decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed body: %v", domain.ErrInvalidRequest, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

// StatusFor maps a pipeline error to an HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest), errors.Is(err, domain.ErrUnknownPriceField):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUpstreamFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// WriteData writes data in the response envelope.
func WriteData(w http.ResponseWriter, log zerolog.Logger, data interface{}, runID string) {
	WriteDataWith(w, log, data, Metadata{RunID: runID})
}

// WriteDataWith writes data in the response envelope with meta stamped
// with the current time.
func WriteDataWith(w http.ResponseWriter, log zerolog.Logger, data interface{}, meta Metadata) {
	meta.Timestamp = time.Now().Format(time.RFC3339)
	WriteJSON(w, log, http.StatusOK, Envelope{Data: data, Metadata: meta})
}

// WriteError writes err with the status StatusFor picks.
func WriteError(w http.ResponseWriter, log zerolog.Logger, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Int("status", status).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int("status", status).Msg("Request rejected")
	}
	WriteJSON(w, log, status, Envelope{Error: err.Error(), Metadata: newMetadata("")})
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, log zerolog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func newMetadata(runID string) Metadata {
	return Metadata{
		Timestamp: time.Now().Format(time.RFC3339),
		RunID:     runID,
	}
}
