package cachestore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_store_errors_total",
			Help: "Total number of catalog cache store failures",
		},
		[]string{"backend", "operation"}, // operation: load, decode, encode, save
	)

	cachedItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_cache_items",
			Help: "Number of items in the last saved catalog cache record",
		},
	)
)
