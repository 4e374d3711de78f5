// Package metrics holds the process-wide Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FallbackStepsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holemap_fallback_steps_total",
		Help: "Camera targets chosen by the location fallback chain, by step",
	}, []string{"step"})
	HoleLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holemap_hole_loads_total",
		Help: "Hole document loads by result (found, absent, error)",
	}, []string{"result"})
	HoleSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holemap_hole_saves_total",
		Help: "Hole document saves by result (ok, invalid, error)",
	}, []string{"result"})
	SearchRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holemap_search_requests_total",
		Help: "Course search requests by result (ok, error, cache_hit)",
	}, []string{"result"})
	SearchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "holemap_search_duration_ms",
		Help:    "Remote course search duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "holemap_http_requests_total",
		Help: "HTTP API requests by route and status",
	}, []string{"route", "status"})
	IndexedPins = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "holemap_indexed_pins",
		Help: "Tee and green pins currently held in the hole index",
	})
)

func init() {
	prometheus.MustRegister(FallbackStepsTotal)
	prometheus.MustRegister(HoleLoadsTotal)
	prometheus.MustRegister(HoleSavesTotal)
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDurationMs)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(IndexedPins)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
