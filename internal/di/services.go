package di

import (
	"github.com/rs/zerolog"

	"github.com/aristath/freefloat/internal/api"
	"github.com/aristath/freefloat/internal/clients/yahoo"
	"github.com/aristath/freefloat/internal/config"
	"github.com/aristath/freefloat/internal/metrics"
	"github.com/aristath/freefloat/internal/modules/freefloat"
	"github.com/aristath/freefloat/internal/modules/portfolio"
)

// InitializeServices creates the market data client and the pipeline services.
func InitializeServices(container *Container, cfg *config.Config, log zerolog.Logger) {
	container.Metrics = metrics.NewRegistry()

	container.YahooClient = yahoo.NewClient(yahoo.Config{
		BaseURL:   cfg.Yahoo.BaseURL,
		Timeout:   cfg.Yahoo.Timeout,
		RateLimit: cfg.Yahoo.RateLimit,
	}, container.ClientDataRepo, container.Metrics, log)

	container.Resolver = freefloat.NewResolver(
		container.YahooClient,
		cfg.FundamentalsConcurrency,
		container.Metrics,
		log,
	)

	container.Builder = portfolio.NewBuilder(
		container.Resolver,
		container.YahooClient,
		container.Metrics,
		log,
	)

	container.Defaults = api.Defaults{
		InitialInvestment: cfg.Portfolio.DefaultInitialInvestment,
		PriceField:        cfg.Portfolio.DefaultPriceField,
	}
}
