package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"popularmovies/services/cachestore"
	"popularmovies/services/catalog"
	"popularmovies/services/tmdb"
)

// Settings holds all service configuration.
type Settings struct {
	Server  ServerSettings  `mapstructure:"server"`
	TMDB    TMDBSettings    `mapstructure:"tmdb"`
	Catalog CatalogSettings `mapstructure:"catalog"`
	Cache   CacheSettings   `mapstructure:"cache"`
	Logging LoggingSettings `mapstructure:"logging"`
	Addon   AddonSettings   `mapstructure:"addon"`
}

type ServerSettings struct {
	Addr               string `mapstructure:"addr"`
	RateLimitPerMinute int    `mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

type TMDBSettings struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Language          string        `mapstructure:"language"`
	ListTimeout       time.Duration `mapstructure:"list_timeout"`
	LookupTimeout     time.Duration `mapstructure:"lookup_timeout"`
	RetryAttempts     uint          `mapstructure:"retry_attempts"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

type CatalogSettings struct {
	CacheMaxAgeHours      int `mapstructure:"cache_max_age_hours"`
	PageSize              int `mapstructure:"page_size"`
	PagesPerRefresh       int `mapstructure:"pages_per_refresh"`
	EnrichmentConcurrency int `mapstructure:"enrichment_concurrency"`
	IDMemoSize            int `mapstructure:"id_memo_size"`
}

// CacheSettings selects where the catalog record is persisted.
type CacheSettings struct {
	Backend   string `mapstructure:"backend"` // file, bolt, sqlite or redis
	Path      string `mapstructure:"path"`
	RedisAddr string `mapstructure:"redis_addr"`
	RedisKey  string `mapstructure:"redis_key"`
}

// LoggingSettings configures the optional rotating log file. An empty File
// keeps logging on stderr only.
type LoggingSettings struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

type AddonSettings struct {
	ID      string `mapstructure:"id"`
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// DefaultSettings returns the built-in configuration.
func DefaultSettings() Settings {
	cat := catalog.DefaultConfig()
	return Settings{
		Server: ServerSettings{
			Addr:               ":7000",
			RateLimitPerMinute: 120,
			RateLimitBurst:     30,
		},
		TMDB: TMDBSettings{
			BaseURL:           tmdb.DefaultBaseURL,
			Language:          "en-US",
			ListTimeout:       15 * time.Second,
			LookupTimeout:     5 * time.Second,
			RetryAttempts:     2,
			RequestsPerSecond: 40,
		},
		Catalog: CatalogSettings{
			CacheMaxAgeHours:      cat.CacheMaxAgeHours,
			PageSize:              cat.PageSize,
			PagesPerRefresh:       cat.PagesPerRefresh,
			EnrichmentConcurrency: cat.EnrichmentConcurrency,
			IDMemoSize:            cat.IDMemoSize,
		},
		Cache: CacheSettings{
			Backend:  "file",
			Path:     "movie_cache.json",
			RedisKey: cachestore.DefaultRedisKey,
		},
		Logging: LoggingSettings{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
		Addon: AddonSettings{
			ID:   "community.popularmovies",
			Name: "Popular Movies",
		},
	}
}

// Load reads configuration from the optional file at path, an optional .env
// file in the working directory and the environment, in increasing order of
// precedence.
func Load(path string) (Settings, error) {
	v := viper.New()
	setDefaults(v, DefaultSettings())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := applyDotEnv(v, ".env"); err != nil {
		return Settings{}, err
	}

	v.SetEnvPrefix("POPULARMOVIES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The add-on has always read the key from this unprefixed variable.
	if err := v.BindEnv("tmdb.api_key", "POPULARMOVIES_TMDB_API_KEY", "TMDB_API_KEY"); err != nil {
		return Settings{}, fmt.Errorf("bind TMDB_API_KEY: %w", err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("parse config: %w", err)
	}
	s.TMDB.APIKey = strings.TrimSpace(s.TMDB.APIKey)
	return s, nil
}

// applyDotEnv folds KEY=VALUE pairs from a .env file into v. Only keys the
// service knows about are honored; a missing file is not an error.
func applyDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	// viper lowercases keys read from env files. Real environment variables
	// still take precedence over the file.
	if key := env.GetString("tmdb_api_key"); key != "" && !inEnv("TMDB_API_KEY", "POPULARMOVIES_TMDB_API_KEY") {
		v.Set("tmdb.api_key", key)
	}
	for _, k := range v.AllKeys() {
		envKey := "popularmovies_" + strings.ReplaceAll(k, ".", "_")
		if env.IsSet(envKey) && !inEnv(strings.ToUpper(envKey)) {
			v.Set(k, env.Get(envKey))
		}
	}
	return nil
}

func inEnv(names ...string) bool {
	for _, name := range names {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper, d Settings) {
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.rate_limit_per_minute", d.Server.RateLimitPerMinute)
	v.SetDefault("server.rate_limit_burst", d.Server.RateLimitBurst)

	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.base_url", d.TMDB.BaseURL)
	v.SetDefault("tmdb.language", d.TMDB.Language)
	v.SetDefault("tmdb.list_timeout", d.TMDB.ListTimeout)
	v.SetDefault("tmdb.lookup_timeout", d.TMDB.LookupTimeout)
	v.SetDefault("tmdb.retry_attempts", d.TMDB.RetryAttempts)
	v.SetDefault("tmdb.requests_per_second", d.TMDB.RequestsPerSecond)

	v.SetDefault("catalog.cache_max_age_hours", d.Catalog.CacheMaxAgeHours)
	v.SetDefault("catalog.page_size", d.Catalog.PageSize)
	v.SetDefault("catalog.pages_per_refresh", d.Catalog.PagesPerRefresh)
	v.SetDefault("catalog.enrichment_concurrency", d.Catalog.EnrichmentConcurrency)
	v.SetDefault("catalog.id_memo_size", d.Catalog.IDMemoSize)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.redis_addr", d.Cache.RedisAddr)
	v.SetDefault("cache.redis_key", d.Cache.RedisKey)

	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("logging.compress", d.Logging.Compress)

	v.SetDefault("addon.id", d.Addon.ID)
	v.SetDefault("addon.name", d.Addon.Name)
	v.SetDefault("addon.version", d.Addon.Version)
}

// CatalogConfig derives the orchestrator configuration.
func (s Settings) CatalogConfig() catalog.Config {
	return catalog.Config{
		CacheMaxAgeHours:      s.Catalog.CacheMaxAgeHours,
		PageSize:              s.Catalog.PageSize,
		PagesPerRefresh:       s.Catalog.PagesPerRefresh,
		EnrichmentConcurrency: s.Catalog.EnrichmentConcurrency,
		IDMemoSize:            s.Catalog.IDMemoSize,
	}
}

func (s Settings) StoreOptions() cachestore.Options {
	return cachestore.Options{
		Backend:   s.Cache.Backend,
		Path:      s.Cache.Path,
		RedisAddr: s.Cache.RedisAddr,
		RedisKey:  s.Cache.RedisKey,
	}
}

func (s Settings) TMDBOptions() tmdb.Options {
	return tmdb.Options{
		APIKey:            s.TMDB.APIKey,
		BaseURL:           s.TMDB.BaseURL,
		Language:          s.TMDB.Language,
		ListTimeout:       s.TMDB.ListTimeout,
		LookupTimeout:     s.TMDB.LookupTimeout,
		RetryAttempts:     s.TMDB.RetryAttempts,
		RequestsPerSecond: s.TMDB.RequestsPerSecond,
	}
}
