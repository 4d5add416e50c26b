package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no key in the
// environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("TMDB_API_KEY", "")
	t.Setenv("POPULARMOVIES_TMDB_API_KEY", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, ":7000", s.Server.Addr)
	assert.Equal(t, 15*time.Second, s.TMDB.ListTimeout)
	assert.Equal(t, 5*time.Second, s.TMDB.LookupTimeout)
	assert.Equal(t, "file", s.Cache.Backend)
	assert.Equal(t, "movie_cache.json", s.Cache.Path)
	assert.Empty(t, s.TMDB.APIKey)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "popularmovies.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":8080"
tmdb:
  language: pt-BR
  list_timeout: 20s
catalog:
  page_size: 50
cache:
  backend: bolt
  path: /var/lib/popularmovies/cache.db
`), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", s.Server.Addr)
	assert.Equal(t, "pt-BR", s.TMDB.Language)
	assert.Equal(t, 20*time.Second, s.TMDB.ListTimeout)
	assert.Equal(t, 50, s.Catalog.PageSize)
	assert.Equal(t, 5, s.Catalog.PagesPerRefresh)
	assert.Equal(t, "bolt", s.Cache.Backend)
	assert.Equal(t, "/var/lib/popularmovies/cache.db", s.StoreOptions().Path)
}

func TestLoadMissingFileFails(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestLoadReadsAPIKeyFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("TMDB_API_KEY", "  abc123  ")
	t.Setenv("POPULARMOVIES_CATALOG_PAGES_PER_REFRESH", "3")

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "abc123", s.TMDB.APIKey)
	assert.Equal(t, "abc123", s.TMDBOptions().APIKey)
	assert.Equal(t, 3, s.CatalogConfig().PagesPerRefresh)
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("TMDB_API_KEY=fromdotenv\nPOPULARMOVIES_SERVER_ADDR=:9000\n"), 0o600))

	s, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "fromdotenv", s.TMDB.APIKey)
	assert.Equal(t, ":9000", s.Server.Addr)
}

func TestEnvironmentWinsOverDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("TMDB_API_KEY=fromdotenv\n"), 0o600))
	t.Setenv("TMDB_API_KEY", "fromenv")

	s, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "fromenv", s.TMDB.APIKey)
}

func TestCatalogConfigMirrorsSettings(t *testing.T) {
	s := DefaultSettings()
	s.Catalog.CacheMaxAgeHours = 6
	s.Catalog.EnrichmentConcurrency = 4

	c := s.CatalogConfig()
	assert.Equal(t, 6, c.CacheMaxAgeHours)
	assert.Equal(t, 4, c.EnrichmentConcurrency)
	assert.Equal(t, 20, c.PageSize)
	assert.Equal(t, 10000, c.IDMemoSize)
}
