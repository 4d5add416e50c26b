package tmdb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var upstreamRequests = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_tmdb_requests_total",
		Help: "Total number of TMDB calls by endpoint and outcome",
	},
	[]string{"endpoint", "outcome"}, // endpoint: discover, external_ids; outcome: ok, error
)
