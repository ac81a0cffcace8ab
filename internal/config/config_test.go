package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"FREEFLOAT_DATA_DIR", "GO_PORT", "DEV_MODE", "LOG_LEVEL", "YAHOO_BASE_URL",
		"YAHOO_TIMEOUT", "YAHOO_RATE_LIMIT", "FUNDAMENTALS_CONCURRENCY", "CACHE_ENABLED",
		"DEFAULT_INITIAL_INVESTMENT", "DEFAULT_PRICE_FIELD",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, len(cfg.DataDir) > 0 && cfg.DataDir[0] == '/')
	assert.Equal(t, 8001, cfg.Port)
	assert.False(t, cfg.DevMode)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://query2.finance.yahoo.com", cfg.Yahoo.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, 5.0, cfg.Yahoo.RateLimit)
	assert.Equal(t, 4, cfg.FundamentalsConcurrency)
	assert.True(t, cfg.CacheEnabled)
	assert.Equal(t, 1000.0, cfg.Portfolio.DefaultInitialInvestment)
	assert.Equal(t, "Close", cfg.Portfolio.DefaultPriceField)
}

func TestLoad_FromEnvironment(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FREEFLOAT_DATA_DIR", dir)
	t.Setenv("GO_PORT", "9090")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("YAHOO_TIMEOUT", "5s")
	t.Setenv("YAHOO_RATE_LIMIT", "2.5")
	t.Setenv("FUNDAMENTALS_CONCURRENCY", "8")
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("DEFAULT_INITIAL_INVESTMENT", "2500")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, 9090, cfg.Port)
	assert.True(t, cfg.DevMode)
	assert.Equal(t, 5*time.Second, cfg.Yahoo.Timeout)
	assert.Equal(t, 2.5, cfg.Yahoo.RateLimit)
	assert.Equal(t, 8, cfg.FundamentalsConcurrency)
	assert.False(t, cfg.CacheEnabled)
	assert.Equal(t, 2500.0, cfg.Portfolio.DefaultInitialInvestment)
	assert.Equal(t, dir+"/client_data.db", cfg.CachePath())
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"GO_PORT":                    "0",
		"FUNDAMENTALS_CONCURRENCY":   "-1",
		"YAHOO_RATE_LIMIT":           "0",
		"DEFAULT_INITIAL_INVESTMENT": "-10",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers_IgnoreMalformedValues(t *testing.T) {
	t.Setenv("FREEFLOAT_TEST_INT", "abc")
	t.Setenv("FREEFLOAT_TEST_DURATION", "soon")

	assert.Equal(t, 7, getEnvAsInt("FREEFLOAT_TEST_INT", 7))
	assert.Equal(t, time.Minute, getEnvAsDuration("FREEFLOAT_TEST_DURATION", time.Minute))
}
