// Package yahoo implements the fundamentals and price sources over the
// Yahoo Finance HTTP API.
package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/aristath/freefloat/internal/clientdata"
	"github.com/aristath/freefloat/internal/domain"
	"github.com/aristath/freefloat/internal/metrics"
)

const (
	DefaultBaseURL   = "https://query2.finance.yahoo.com"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5.0

	userAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36"
)

// Config holds the client settings. Zero values fall back to the defaults.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second
}

// Client is a Yahoo Finance API client.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   *clientdata.Repository
	metrics *metrics.Registry
	log     zerolog.Logger
}

// NewClient creates a new Yahoo Finance client. cache and m may be nil.
func NewClient(cfg Config, cache *clientdata.Repository, m *metrics.Registry, log zerolog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultRateLimit
	}

	c := &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		cache:   cache,
		metrics: m,
		log:     log.With().Str("client", "yahoo").Logger(),
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     "yahoo",
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})
	return c
}

// getJSON issues a GET and decodes the body into out.
// A 404 reports found=false without error.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) (bool, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, endpoint)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return false, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
		}
		return false, err
	}
	if body == nil {
		return false, nil
	}

	if err := json.Unmarshal(body.([]byte), out); err != nil {
		return false, fmt.Errorf("%w: failed to decode %s: %v", domain.ErrUpstreamFetch, path, err)
	}
	return true, nil
}

// do performs one request. It returns a nil body for 404.
func (c *Client) do(ctx context.Context, endpoint string) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrUpstreamFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: yahoo returned status %d", domain.ErrUpstreamFetch, resp.StatusCode)
	}
	return body, nil
}

// cached loads key from table into out when a fresh entry exists.
func (c *Client) cached(table, key string, out interface{}) bool {
	if c.cache == nil {
		return false
	}
	hit, err := c.cache.GetIfFresh(table, key, out)
	if err != nil {
		c.log.Debug().Err(err).Str("table", table).Str("key", key).Msg("Cache read failed")
		hit = false
	}
	c.metrics.ObserveCache(table, hit)
	return hit
}

func (c *Client) store(table, key string, value interface{}, ttl time.Duration) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Store(table, key, value, ttl); err != nil {
		c.log.Warn().Err(err).Str("table", table).Str("key", key).Msg("Cache write failed")
	}
}

// rawValue is Yahoo's {"raw": 1.0, "fmt": "1.00"} number wrapper.
type rawValue struct {
	Raw *float64 `json:"raw"`
}
