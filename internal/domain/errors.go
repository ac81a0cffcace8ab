package domain

import "errors"

var (
	// ErrUnknownPriceField is returned when the price source has no such field.
	ErrUnknownPriceField = errors.New("unknown price field")
	// ErrUpstreamFetch is returned when a market data collaborator cannot be reached.
	ErrUpstreamFetch = errors.New("upstream fetch failed")
	// ErrInvalidRequest is returned for malformed build requests.
	ErrInvalidRequest = errors.New("invalid request")
)
