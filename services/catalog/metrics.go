package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_requests_total",
			Help: "Catalog page requests by how they were answered",
		},
		[]string{"outcome"}, // hit, refreshed, failed
	)

	refreshPages = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_refresh_pages_total",
			Help: "Upstream discover pages accumulated by refreshes",
		},
	)

	enrichLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_enrich_lookups_total",
			Help: "External id resolutions by outcome",
		},
		[]string{"outcome"}, // memo, resolved, unresolved
	)
)
