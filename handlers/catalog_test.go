package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"popularmovies/models"
)

type fakeCatalogService struct {
	items    []models.CatalogItem
	lastSkip int
	calls    int
}

func (f *fakeCatalogService) PopularMovies(_ context.Context, skip int) []models.CatalogItem {
	f.calls++
	f.lastSkip = skip
	return f.items
}

func catalogRouter(h *CatalogHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/catalog/movie/popular_movies.json", h.PopularMovies)
	r.HandleFunc("/catalog/movie/popular_movies/skip={skip}.json", h.PopularMovies)
	return r
}

func TestCatalogHandler_PopularMovies(t *testing.T) {
	year := 2024
	fake := &fakeCatalogService{items: []models.CatalogItem{
		{ID: "tt0000001", Type: "movie", Name: "First", Year: &year},
	}}
	router := catalogRouter(NewCatalogHandler(fake))

	req := httptest.NewRequest(http.MethodGet, "/catalog/movie/popular_movies.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content-type %q", got)
	}
	if fake.lastSkip != 0 {
		t.Fatalf("expected skip 0, got %d", fake.lastSkip)
	}

	var payload models.CatalogResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if len(payload.Metas) != 1 || payload.Metas[0].ID != "tt0000001" || *payload.Metas[0].Year != 2024 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCatalogHandler_SkipFromPath(t *testing.T) {
	fake := &fakeCatalogService{}
	router := catalogRouter(NewCatalogHandler(fake))

	req := httptest.NewRequest(http.MethodGet, "/catalog/movie/popular_movies/skip=40.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if fake.lastSkip != 40 {
		t.Fatalf("expected skip 40, got %d", fake.lastSkip)
	}
}

func TestCatalogHandler_EmptyResultIsEmptyArray(t *testing.T) {
	fake := &fakeCatalogService{items: nil}
	router := catalogRouter(NewCatalogHandler(fake))

	req := httptest.NewRequest(http.MethodGet, "/catalog/movie/popular_movies/skip=9999.json", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}
	if body := rec.Body.String(); body != "{\"metas\":[]}\n" {
		t.Fatalf("expected empty metas array, got %q", body)
	}
}

func TestParseSkip(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"", 0},
		{"0", 0},
		{"20", 20},
		{"-5", 0},
		{"abc", 0},
		{"99999999999999999999999", 0},
	}
	for _, tt := range tests {
		if got := parseSkip(tt.raw); got != tt.want {
			t.Errorf("parseSkip(%q) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestManifestHandler_GetManifest(t *testing.T) {
	h := NewManifestHandler("community.popularmovies", "Popular Movies", "1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/manifest.json", nil)
	rec := httptest.NewRecorder()
	h.GetManifest(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}

	var m models.Manifest
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if m.ID != "community.popularmovies" || m.Version != "1.2.3" {
		t.Fatalf("unexpected manifest identity: %+v", m)
	}
	if len(m.Catalogs) != 1 || m.Catalogs[0].ID != CatalogID || m.Catalogs[0].Type != "movie" {
		t.Fatalf("unexpected catalogs: %+v", m.Catalogs)
	}
	if len(m.Catalogs[0].Extra) != 1 || m.Catalogs[0].Extra[0].Name != "skip" {
		t.Fatalf("expected skip extra, got %+v", m.Catalogs[0].Extra)
	}
	if len(m.IDPrefixes) != 1 || m.IDPrefixes[0] != "tt" {
		t.Fatalf("unexpected id prefixes: %v", m.IDPrefixes)
	}
}

func TestManifestHandler_GetVersion(t *testing.T) {
	rec := httptest.NewRecorder()
	NewManifestHandler("community.popularmovies", "Popular Movies", "1.2.3").
		GetVersion(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if resp["version"] != "1.2.3" {
		t.Fatalf("expected version 1.2.3, got %q", resp["version"])
	}
}

func TestManifestHandler_DefaultsToBuildVersion(t *testing.T) {
	old := BuildVersion
	BuildVersion = "v9.9.9"
	t.Cleanup(func() { BuildVersion = old })

	h := NewManifestHandler("community.popularmovies", "Popular Movies", "")
	rec := httptest.NewRecorder()
	h.GetVersion(rec, httptest.NewRequest(http.MethodGet, "/version", nil))

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode version: %v", err)
	}
	if resp["version"] != "v9.9.9" {
		t.Fatalf("expected stamped build version, got %q", resp["version"])
	}
}
