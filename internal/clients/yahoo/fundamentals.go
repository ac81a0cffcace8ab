package yahoo

import (
	"context"
	"fmt"
	"net/url"

	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/domain"
)

const quoteSummaryModules = "price,summaryDetail,financialData,defaultKeyStatistics"

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  interface{}          `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		MarketCap          rawValue `json:"marketCap"`
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
	} `json:"price"`
	SummaryDetail struct {
		MarketCap rawValue `json:"marketCap"`
	} `json:"summaryDetail"`
	FinancialData struct {
		CurrentPrice rawValue `json:"currentPrice"`
	} `json:"financialData"`
	DefaultKeyStatistics struct {
		FloatShares rawValue `json:"floatShares"`
	} `json:"defaultKeyStatistics"`
}

// FetchFundamentals implements domain.FundamentalsSource.
// An unknown ticker yields empty fundamentals.
func (c *Client) FetchFundamentals(ctx context.Context, ticker string) (domain.Fundamentals, error) {
	var f domain.Fundamentals
	if c.cached(clientdata.TableYahooFundamentals, ticker, &f) {
		return f, nil
	}

	var resp quoteSummaryResponse
	found, err := c.getJSON(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(ticker),
		url.Values{"modules": {quoteSummaryModules}}, &resp)
	if err != nil {
		return domain.Fundamentals{}, fmt.Errorf("failed to fetch fundamentals for %s: %w", ticker, err)
	}

	if found && len(resp.QuoteSummary.Result) > 0 {
		f = fundamentalsFromSummary(resp.QuoteSummary.Result[0])
	} else {
		c.log.Debug().Str("ticker", ticker).Msg("No quote summary")
	}

	c.store(clientdata.TableYahooFundamentals, ticker, f, clientdata.TTLFundamentals)
	return f, nil
}

func fundamentalsFromSummary(r quoteSummaryResult) domain.Fundamentals {
	return domain.Fundamentals{
		MarketCap:    firstPresent(r.SummaryDetail.MarketCap.Raw, r.Price.MarketCap.Raw),
		CurrentPrice: firstPresent(r.FinancialData.CurrentPrice.Raw, r.Price.RegularMarketPrice.Raw),
		FloatShares:  r.DefaultKeyStatistics.FloatShares.Raw,
	}
}

func firstPresent(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}
