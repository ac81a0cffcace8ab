package di

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/config"
)

func testConfig(t *testing.T, cacheEnabled bool) *config.Config {
	return &config.Config{
		DataDir:                 t.TempDir(),
		Port:                    8001,
		FundamentalsConcurrency: 2,
		CacheEnabled:            cacheEnabled,
		Yahoo: config.YahooConfig{
			BaseURL:   "http://127.0.0.1:0",
			Timeout:   time.Second,
			RateLimit: 10,
		},
		Portfolio: config.PortfolioConfig{
			DefaultInitialInvestment: 1000,
			DefaultPriceField:        "Close",
		},
	}
}

func TestWire(t *testing.T) {
	cfg := testConfig(t, true)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)
	defer container.Close()

	assert.NotNil(t, container.ClientDataDB)
	assert.NotNil(t, container.ClientDataRepo)
	assert.NotNil(t, container.YahooClient)
	assert.NotNil(t, container.Metrics)
	assert.NotNil(t, container.Resolver)
	assert.NotNil(t, container.Builder)
	assert.Equal(t, 1000.0, container.Defaults.InitialInvestment)
	assert.Equal(t, "Close", container.Defaults.PriceField)
	assert.FileExists(t, filepath.Join(cfg.DataDir, "client_data.db"))

	// schema applied
	require.NoError(t, container.ClientDataRepo.Store(clientdata.TableYahooFundamentals, "AAPL", map[string]int{"n": 1}, time.Hour))
}

func TestWire_CacheDisabled(t *testing.T) {
	cfg := testConfig(t, false)

	container, err := Wire(cfg, zerolog.Nop())
	require.NoError(t, err)

	assert.Nil(t, container.ClientDataDB)
	assert.Nil(t, container.ClientDataRepo)
	assert.NotNil(t, container.Builder)
	assert.NoError(t, container.Close())
	assert.NoFileExists(t, filepath.Join(cfg.DataDir, "client_data.db"))
}
