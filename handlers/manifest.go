package handlers

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strings"

	"popularmovies/models"
)

// BuildVersion is stamped at link time with
// -ldflags "-X popularmovies/handlers.BuildVersion=...".
var BuildVersion = ""

// BackendVersion is the stamped build version, else the module version
// recorded by `go install`, else "dev".
func BackendVersion() string {
	if v := strings.TrimSpace(BuildVersion); v != "" {
		return v
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		if v := info.Main.Version; v != "" && v != "(devel)" {
			return v
		}
	}
	return "dev"
}

// ManifestHandler serves the add-on manifest and its version.
type ManifestHandler struct {
	manifest models.Manifest
}

// NewManifestHandler builds the add-on manifest once. An empty version falls
// back to BackendVersion.
func NewManifestHandler(id, name, version string) *ManifestHandler {
	if version == "" {
		version = BackendVersion()
	}
	return &ManifestHandler{manifest: models.Manifest{
		ID:          id,
		Version:     version,
		Name:        name,
		Description: "Popular movies from TMDB, listed by IMDb id.",
		Resources:   []string{"catalog"},
		Types:       []string{models.MediaTypeMovie},
		IDPrefixes:  []string{"tt"},
		Catalogs: []models.ManifestCatalog{{
			Type:  models.MediaTypeMovie,
			ID:    CatalogID,
			Name:  name,
			Extra: []models.ManifestExtra{{Name: "skip"}},
		}},
	}}
}

func (h *ManifestHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.manifest)
}

func (h *ManifestHandler) GetVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"version": h.manifest.Version})
}
