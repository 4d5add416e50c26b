package models

import "time"

// MediaTypeMovie is the only content type this add-on serves.
const MediaTypeMovie = "movie"

// CatalogItem is a single movie entry as served to clients and as persisted in
// the catalog cache. Items are immutable once cached.
type CatalogItem struct {
	ID          string  `json:"id"`   // IMDb id (tt...)
	Type        string  `json:"type"` // always "movie"
	Name        string  `json:"name"`
	Poster      *string `json:"poster"`
	Background  *string `json:"background"`
	Description string  `json:"description"`
	Year        *int    `json:"year"`
}

// CatalogResponse is the body returned by the catalog endpoints.
type CatalogResponse struct {
	Metas []CatalogItem `json:"metas"`
}

// CacheRecord is the persisted catalog cache. Count always equals len(Movies)
// for a record that was loaded successfully.
type CacheRecord struct {
	Movies      []CatalogItem `json:"movies"`
	LastUpdated time.Time     `json:"last_updated"`
	Count       int           `json:"count"`
}

// DiscoverMovie is one raw result from the TMDB discover listing. It only
// lives for the duration of a refresh.
type DiscoverMovie struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Overview     string `json:"overview"`
	PosterPath   string `json:"poster_path"`
	BackdropPath string `json:"backdrop_path"`
	ReleaseDate  string `json:"release_date"`
}

// PageWindow describes the slice of the catalog a caller asked for.
type PageWindow struct {
	Skip     int
	PageSize int
}
