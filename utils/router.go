package utils

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"popularmovies/api"
	"popularmovies/handlers"
)

// NewRouter constructs the base mux router with common routes.
func NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.Use(corsMiddleware, api.RequestID(), api.AccessLog())
	// mux only runs middleware on matched routes, so preflight requests need
	// a route of their own.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

// AddonRoutes groups the handlers behind the add-on endpoints.
type AddonRoutes struct {
	Catalog  *handlers.CatalogHandler
	Manifest *handlers.ManifestHandler
	// Limiter guards the catalog routes when set.
	Limiter *api.IPRateLimiter
}

// MountAddon registers the manifest, version and catalog routes on r.
func MountAddon(r *mux.Router, routes AddonRoutes) {
	r.HandleFunc("/manifest.json", routes.Manifest.GetManifest).Methods(http.MethodGet)
	r.HandleFunc("/version", routes.Manifest.GetVersion).Methods(http.MethodGet)

	cat := r.PathPrefix("/catalog/movie").Subrouter()
	if routes.Limiter != nil {
		cat.Use(routes.Limiter.Middleware())
	}
	cat.HandleFunc("/"+handlers.CatalogID+".json", routes.Catalog.PopularMovies).Methods(http.MethodGet)
	cat.HandleFunc("/"+handlers.CatalogID+"/skip={skip}.json", routes.Catalog.PopularMovies).Methods(http.MethodGet)
}
