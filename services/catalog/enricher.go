package catalog

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/sourcegraph/conc/pool"

	"popularmovies/models"
)

// IDResolver resolves the IMDb id of a TMDB movie, returning "" when it
// cannot.
type IDResolver interface {
	ExternalID(ctx context.Context, tmdbID int64) string
}

// Enricher resolves external ids for a batch of discover results with a
// bounded number of lookups in flight.
type Enricher struct {
	resolver    IDResolver
	concurrency int
	// Only successful resolutions are memoized, so an id that failed once is
	// looked up again on the next refresh that surfaces it.
	memo *expirable.LRU[int64, string]
}

func NewEnricher(resolver IDResolver, concurrency, memoSize int, memoTTL time.Duration) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultEnrichmentConcurrency
	}
	var memo *expirable.LRU[int64, string]
	if memoSize > 0 {
		memo = expirable.NewLRU[int64, string](memoSize, nil, memoTTL)
	}
	return &Enricher{resolver: resolver, concurrency: concurrency, memo: memo}
}

// Enrich returns tmdbID -> imdbID for every movie that resolved. Unresolved
// or failed lookups are absent from the map. Each distinct id is looked up at
// most once per call.
func (e *Enricher) Enrich(ctx context.Context, movies []models.DiscoverMovie) map[int64]string {
	results := make(map[int64]string, len(movies))
	if len(movies) == 0 {
		return results
	}

	pending := make([]int64, 0, len(movies))
	queued := make(map[int64]struct{}, len(movies))
	var memoHits int
	for _, movie := range movies {
		if movie.ID <= 0 {
			continue
		}
		if _, dup := queued[movie.ID]; dup {
			continue
		}
		if _, done := results[movie.ID]; done {
			continue
		}
		if e.memo != nil {
			if imdbID, ok := e.memo.Get(movie.ID); ok {
				results[movie.ID] = imdbID
				memoHits++
				continue
			}
		}
		queued[movie.ID] = struct{}{}
		pending = append(pending, movie.ID)
	}
	enrichLookups.WithLabelValues("memo").Add(float64(memoHits))

	start := time.Now()
	var (
		mu         sync.Mutex
		unresolved int
	)
	p := pool.New().WithMaxGoroutines(e.concurrency)
	for _, tmdbID := range pending {
		p.Go(func() {
			imdbID := e.resolver.ExternalID(ctx, tmdbID)

			mu.Lock()
			defer mu.Unlock()
			if imdbID == "" {
				unresolved++
				return
			}
			results[tmdbID] = imdbID
		})
	}
	p.Wait()

	resolved := len(pending) - unresolved
	enrichLookups.WithLabelValues("resolved").Add(float64(resolved))
	enrichLookups.WithLabelValues("unresolved").Add(float64(unresolved))

	if e.memo != nil {
		for _, tmdbID := range pending {
			if imdbID, ok := results[tmdbID]; ok {
				e.memo.Add(tmdbID, imdbID)
			}
		}
	}

	log.Printf("[catalog] enriched %d movies: resolved=%d unresolved=%d memo=%d duration=%s",
		len(movies), resolved, unresolved, memoHits, time.Since(start).Round(time.Millisecond))
	return results
}
