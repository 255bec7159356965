package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	CatalogRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "catalog_requests_total",
		Help:      "Total catalog requests by catalog, operation and result status.",
	}, []string{"catalog", "operation", "status"})

	CatalogRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "cinemabot",
		Name:      "catalog_request_duration_seconds",
		Help:      "Catalog request duration in seconds.",
		Buckets:   []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 10, 20},
	}, []string{"catalog", "operation"})

	UpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "cinemabot",
		Name:      "updates_total",
		Help:      "Total handled chat updates by kind and outcome.",
	}, []string{"kind", "outcome"})

	PendingSearches = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "cinemabot",
		Name:      "pending_delayed_searches",
		Help:      "Number of delayed searches waiting to run.",
	})
)

// Register adds all collectors to reg.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		CatalogRequestsTotal,
		CatalogRequestDuration,
		UpdatesTotal,
		PendingSearches,
	)
}
