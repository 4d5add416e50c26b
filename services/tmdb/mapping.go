package tmdb

import (
	"strconv"
	"strings"

	"popularmovies/models"
)

const (
	imageBaseURL = "https://image.tmdb.org/t/p/"
	posterSize   = "w500"
	backdropSize = "w780"
)

// ToCatalogItem builds the served catalog entry for a discover result whose
// IMDb id has been resolved.
func ToCatalogItem(movie models.DiscoverMovie, imdbID string) models.CatalogItem {
	return models.CatalogItem{
		ID:          imdbID,
		Type:        models.MediaTypeMovie,
		Name:        movie.Title,
		Poster:      buildImageURL(movie.PosterPath, posterSize),
		Background:  buildImageURL(movie.BackdropPath, backdropSize),
		Description: movie.Overview,
		Year:        parseReleaseYear(movie.ReleaseDate),
	}
}

func buildImageURL(path, size string) *string {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := imageBaseURL + size + path
	return &u
}

// parseReleaseYear reads the year from a YYYY-MM-DD date; nil when unknown.
func parseReleaseYear(date string) *int {
	date = strings.TrimSpace(date)
	if len(date) < 4 {
		return nil
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}
