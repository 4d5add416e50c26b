package catalog

import "time"

const (
	DefaultCacheMaxAgeHours      = 24
	DefaultPageSize              = 20
	DefaultPagesPerRefresh       = 5
	DefaultEnrichmentConcurrency = 10
	DefaultIDMemoSize            = 10000

	// idMemoTTLMultiplier stretches the memo TTL relative to the catalog
	// staleness window; TMDB to IMDb mappings rarely change.
	idMemoTTLMultiplier = 7
)

// Config holds the catalog tuning knobs. Zero values fall back to defaults.
type Config struct {
	CacheMaxAgeHours      int
	PageSize              int
	PagesPerRefresh       int
	EnrichmentConcurrency int
	IDMemoSize            int
}

func DefaultConfig() Config {
	return Config{
		CacheMaxAgeHours:      DefaultCacheMaxAgeHours,
		PageSize:              DefaultPageSize,
		PagesPerRefresh:       DefaultPagesPerRefresh,
		EnrichmentConcurrency: DefaultEnrichmentConcurrency,
		IDMemoSize:            DefaultIDMemoSize,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.CacheMaxAgeHours <= 0 {
		c.CacheMaxAgeHours = d.CacheMaxAgeHours
	}
	if c.PageSize <= 0 {
		c.PageSize = d.PageSize
	}
	if c.PagesPerRefresh <= 0 {
		c.PagesPerRefresh = d.PagesPerRefresh
	}
	if c.EnrichmentConcurrency <= 0 {
		c.EnrichmentConcurrency = d.EnrichmentConcurrency
	}
	if c.IDMemoSize <= 0 {
		c.IDMemoSize = d.IDMemoSize
	}
	return c
}

func (c Config) maxAge() time.Duration {
	return time.Duration(c.CacheMaxAgeHours) * time.Hour
}
