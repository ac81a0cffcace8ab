package domain

import (
	"context"
	"time"
)

// PriceQuery describes a price download.
type PriceQuery struct {
	Tickers    []string
	Start      time.Time
	End        time.Time // exclusive
	Field      string
	AutoAdjust bool
}

// PriceSource downloads daily prices.
//
// Returned columns are the requested tickers that had any data, rows are
// ascending by date and missing values are forward-filled. An unknown field
// fails with ErrUnknownPriceField.
type PriceSource interface {
	FetchPrices(ctx context.Context, q PriceQuery) (PriceTable, error)
}

// FundamentalsSource fetches the fundamentals of a single ticker.
type FundamentalsSource interface {
	FetchFundamentals(ctx context.Context, ticker string) (Fundamentals, error)
}
