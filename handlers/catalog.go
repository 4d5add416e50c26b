package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"popularmovies/models"
	"popularmovies/services/catalog"
)

// CatalogID is the id the popular movies catalog is published under.
const CatalogID = "popular_movies"

type catalogService interface {
	PopularMovies(ctx context.Context, skip int) []models.CatalogItem
}

var _ catalogService = (*catalog.Service)(nil)

type CatalogHandler struct {
	Service catalogService
}

func NewCatalogHandler(s catalogService) *CatalogHandler {
	return &CatalogHandler{Service: s}
}

// PopularMovies serves /catalog/movie/popular_movies.json and the
// skip={N}.json variant. It always answers 200 with a metas array.
func (h *CatalogHandler) PopularMovies(w http.ResponseWriter, r *http.Request) {
	skip := parseSkip(mux.Vars(r)["skip"])

	metas := h.Service.PopularMovies(r.Context(), skip)
	if metas == nil {
		metas = []models.CatalogItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(models.CatalogResponse{Metas: metas}); err != nil {
		log.Printf("[http] encode catalog response: %v", err)
	}
}

// parseSkip treats anything that is not a non-negative integer as 0.
func parseSkip(raw string) int {
	if raw == "" {
		return 0
	}
	skip, err := strconv.Atoi(raw)
	if err != nil || skip < 0 {
		return 0
	}
	return skip
}
