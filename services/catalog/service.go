package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"popularmovies/models"
	"popularmovies/services/cachestore"
	"popularmovies/services/tmdb"
)

// Upstream is the slice of the TMDB client the catalog depends on.
type Upstream interface {
	DiscoverPage(ctx context.Context, page int, asOf time.Time) ([]models.DiscoverMovie, error)
	IDResolver
}

// Store persists the accumulated catalog as a single record.
type Store interface {
	Load(ctx context.Context) *models.CacheRecord
	Save(ctx context.Context, items []models.CatalogItem, now time.Time) error
}

// Service serves the popular movies catalog from the cache, refreshing it
// incrementally when the cache is stale or too shallow for the request.
type Service struct {
	cfg      Config
	store    Store
	upstream Upstream
	enricher *Enricher
	now      func() time.Time

	// refreshMu serializes load-fetch-merge-save so concurrent refreshes
	// never compute increments from the same base.
	refreshMu sync.Mutex
}

func NewService(cfg Config, store Store, upstream Upstream) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		cfg:      cfg,
		store:    store,
		upstream: upstream,
		enricher: NewEnricher(upstream, cfg.EnrichmentConcurrency, cfg.IDMemoSize, cfg.maxAge()*idMemoTTLMultiplier),
		now:      time.Now,
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// PopularMovies returns the catalog page starting at skip. It never fails:
// upstream or storage problems degrade to a shorter or empty page.
func (s *Service) PopularMovies(ctx context.Context, skip int) []models.CatalogItem {
	if skip < 0 {
		skip = 0
	}
	pageSize := s.cfg.PageSize

	record := s.store.Load(ctx)
	if cachestore.IsUsable(record, skip, s.now(), s.cfg.maxAge()) {
		catalogRequests.WithLabelValues("hit").Inc()
		return Paginate(record.Movies, skip, pageSize)
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// A refresh outlives the request that triggered it: a client hanging up
	// must not fail the pending lookups and persist a catalog with gaps.
	// Each upstream call stays bounded by its own timeout.
	refreshCtx := context.WithoutCancel(ctx)

	// Another request may have refreshed while we waited for the lock.
	record = s.store.Load(refreshCtx)
	if cachestore.IsUsable(record, skip, s.now(), s.cfg.maxAge()) {
		catalogRequests.WithLabelValues("hit").Inc()
		return Paginate(record.Movies, skip, pageSize)
	}

	items, ok := s.refresh(refreshCtx, record)
	if !ok {
		catalogRequests.WithLabelValues("failed").Inc()
		return []models.CatalogItem{}
	}
	catalogRequests.WithLabelValues("refreshed").Inc()
	return Paginate(items, skip, pageSize)
}

// refresh fetches the next increment of discover pages after what record
// already holds, enriches and appends it, and persists the result. It
// reports false only when the first page of the increment could not be
// fetched.
func (s *Service) refresh(ctx context.Context, record *models.CacheRecord) ([]models.CatalogItem, bool) {
	var prior []models.CatalogItem
	if record != nil {
		prior = record.Movies
	}
	now := s.now()
	startPage := len(prior)/s.cfg.PageSize + 1

	var raw []models.DiscoverMovie
	fetched := 0
	for i := 0; i < s.cfg.PagesPerRefresh; i++ {
		page := startPage + i
		movies, err := s.upstream.DiscoverPage(ctx, page, now)
		if err != nil {
			if i == 0 {
				log.Printf("[catalog] refresh aborted: first page %d failed: %v", page, err)
				return nil, false
			}
			log.Printf("[catalog] refresh truncated at page %d: %v", page, err)
			break
		}
		if len(movies) == 0 {
			log.Printf("[catalog] discover listing exhausted at page %d", page)
			break
		}
		raw = append(raw, movies...)
		fetched++
	}
	refreshPages.Add(float64(fetched))

	if len(raw) == 0 {
		return prior, true
	}

	ids := s.enricher.Enrich(ctx, raw)
	merged, added := mergeItems(prior, raw, ids)
	log.Printf("[catalog] refresh from page %d: fetched %d pages, %d movies, appended %d (total %d)",
		startPage, fetched, len(raw), added, len(merged))

	if added > 0 {
		if err := s.store.Save(ctx, merged, now); err != nil {
			log.Printf("[catalog] failed to persist catalog cache: %v", err)
		}
	}
	return merged, true
}

// mergeItems appends the resolved raw movies after prior, in upstream order.
// prior is never modified; movies without an id or already present are
// skipped.
func mergeItems(prior []models.CatalogItem, raw []models.DiscoverMovie, ids map[int64]string) ([]models.CatalogItem, int) {
	merged := make([]models.CatalogItem, len(prior), len(prior)+len(raw))
	copy(merged, prior)

	seen := make(map[string]struct{}, len(prior)+len(raw))
	for _, item := range prior {
		seen[item.ID] = struct{}{}
	}

	added := 0
	for _, movie := range raw {
		imdbID, ok := ids[movie.ID]
		if !ok || imdbID == "" {
			continue
		}
		if _, dup := seen[imdbID]; dup {
			continue
		}
		seen[imdbID] = struct{}{}
		merged = append(merged, tmdb.ToCatalogItem(movie, imdbID))
		added++
	}
	return merged, added
}

// Warm grows the cache until it holds at least depth items or a refresh
// stops adding items. It returns the resulting cache size.
func (s *Service) Warm(ctx context.Context, depth int) (int, error) {
	count := s.cachedCount(ctx)
	for count < depth {
		if err := ctx.Err(); err != nil {
			return count, err
		}
		s.PopularMovies(ctx, count)
		next := s.cachedCount(ctx)
		if next <= count {
			log.Printf("[catalog] warm stopped at %d items", next)
			return next, nil
		}
		count = next
	}
	return count, nil
}

func (s *Service) cachedCount(ctx context.Context) int {
	if record := s.store.Load(ctx); record != nil {
		return record.Count
	}
	return 0
}
