// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir   string // Base directory for the cache database (always absolute)
	LogLevel  string
	Port      int
	DevMode   bool
	Yahoo     YahooConfig
	Portfolio PortfolioConfig

	FundamentalsConcurrency int
	CacheEnabled            bool
}

// YahooConfig holds the market data client settings
type YahooConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// PortfolioConfig holds build defaults
type PortfolioConfig struct {
	DefaultInitialInvestment float64
	DefaultPriceField        string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	absDataDir, err := filepath.Abs(getEnv("FREEFLOAT_DATA_DIR", "./data"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	cfg := &Config{
		DataDir:  absDataDir,
		Port:     getEnvAsInt("GO_PORT", 8001),
		DevMode:  getEnvAsBool("DEV_MODE", false),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Yahoo: YahooConfig{
			BaseURL:   getEnv("YAHOO_BASE_URL", "https://query2.finance.yahoo.com"),
			Timeout:   getEnvAsDuration("YAHOO_TIMEOUT", 30*time.Second),
			RateLimit: getEnvAsFloat("YAHOO_RATE_LIMIT", 5),
		},
		Portfolio: PortfolioConfig{
			DefaultInitialInvestment: getEnvAsFloat("DEFAULT_INITIAL_INVESTMENT", 1000),
			DefaultPriceField:        getEnv("DEFAULT_PRICE_FIELD", "Close"),
		},
		FundamentalsConcurrency: getEnvAsInt("FUNDAMENTALS_CONCURRENCY", 4),
		CacheEnabled:            getEnvAsBool("CACHE_ENABLED", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that numeric settings are usable
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid GO_PORT %d", c.Port)
	}
	if c.FundamentalsConcurrency <= 0 {
		return fmt.Errorf("FUNDAMENTALS_CONCURRENCY must be positive, got %d", c.FundamentalsConcurrency)
	}
	if c.Yahoo.RateLimit <= 0 {
		return fmt.Errorf("YAHOO_RATE_LIMIT must be positive, got %g", c.Yahoo.RateLimit)
	}
	if c.Yahoo.Timeout <= 0 {
		return fmt.Errorf("YAHOO_TIMEOUT must be positive, got %s", c.Yahoo.Timeout)
	}
	if c.Portfolio.DefaultInitialInvestment <= 0 {
		return fmt.Errorf("DEFAULT_INITIAL_INVESTMENT must be positive, got %g", c.Portfolio.DefaultInitialInvestment)
	}
	return nil
}

// CachePath returns the location of the market data cache database.
func (c *Config) CachePath() string {
	return filepath.Join(c.DataDir, "client_data.db")
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
