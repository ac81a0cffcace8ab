// Package metrics exposes the Prometheus instruments of the pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch results recorded for fundamentals lookups.
const (
	ResultValid   = "valid"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Registry holds all Prometheus metrics. A nil *Registry records nothing.
type Registry struct {
	reg *prometheus.Registry

	FundamentalsFetches *prometheus.CounterVec
	Builds              *prometheus.CounterVec
	PriceFetchDuration  *prometheus.HistogramVec
	CacheHits           *prometheus.CounterVec
	CacheMisses         *prometheus.CounterVec
}

// NewRegistry creates a registry with all pipeline metrics registered.
func NewRegistry() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		FundamentalsFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freefloat_fundamentals_fetch_total",
				Help: "Fundamentals lookups by outcome",
			},
			[]string{"result"},
		),

		Builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freefloat_builds_total",
				Help: "Portfolio builds by status (simulated or degraded)",
			},
			[]string{"status"},
		),

		PriceFetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "freefloat_price_fetch_duration_seconds",
				Help:    "Duration of price downloads",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
			[]string{"result"},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freefloat_cache_hits_total",
				Help: "Client data cache hits by table",
			},
			[]string{"table"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "freefloat_cache_misses_total",
				Help: "Client data cache misses by table",
			},
			[]string{"table"},
		),
	}

	r.reg.MustRegister(
		r.FundamentalsFetches,
		r.Builds,
		r.PriceFetchDuration,
		r.CacheHits,
		r.CacheMisses,
	)

	return r
}

// Gatherer returns the underlying registry for the /metrics handler.
func (r *Registry) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.reg
}

// ObserveFundamentals counts one fundamentals lookup.
func (r *Registry) ObserveFundamentals(result string) {
	if r == nil {
		return
	}
	r.FundamentalsFetches.WithLabelValues(result).Inc()
}

// ObserveBuild counts one portfolio build.
func (r *Registry) ObserveBuild(status string) {
	if r == nil {
		return
	}
	r.Builds.WithLabelValues(status).Inc()
}

// ObservePriceFetch records the duration of one price download.
func (r *Registry) ObservePriceFetch(start time.Time, err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.PriceFetchDuration.WithLabelValues(result).Observe(time.Since(start).Seconds())
}

// ObserveCache counts a cache lookup on table.
func (r *Registry) ObserveCache(table string, hit bool) {
	if r == nil {
		return
	}
	if hit {
		r.CacheHits.WithLabelValues(table).Inc()
		return
	}
	r.CacheMisses.WithLabelValues(table).Inc()
}
