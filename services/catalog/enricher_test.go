package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"popularmovies/models"
)

// fakeResolver resolves ids through fn and tracks calls and peak concurrency.
type fakeResolver struct {
	fn    func(int64) string
	delay time.Duration

	mu       sync.Mutex
	calls    map[int64]int
	inFlight atomic.Int32
	peak     atomic.Int32
}

func (r *fakeResolver) ExternalID(_ context.Context, id int64) string {
	n := r.inFlight.Add(1)
	defer r.inFlight.Add(-1)
	for {
		p := r.peak.Load()
		if n <= p || r.peak.CompareAndSwap(p, n) {
			break
		}
	}

	r.mu.Lock()
	if r.calls == nil {
		r.calls = make(map[int64]int)
	}
	r.calls[id]++
	r.mu.Unlock()

	time.Sleep(r.delay)
	return r.fn(id)
}

func (r *fakeResolver) callCount(id int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[id]
}

func TestEnrichCollectsPartialResults(t *testing.T) {
	resolver := &fakeResolver{fn: func(id int64) string {
		if id%2 == 0 {
			return ""
		}
		return imdbFor(id)
	}}
	enricher := NewEnricher(resolver, 4, 0, 0)

	ids := enricher.Enrich(context.Background(), discoverPage(1, 10))

	require.Len(t, ids, 5)
	for id, imdbID := range ids {
		assert.NotZero(t, id%2, "unresolved id %d should be absent", id)
		assert.Equal(t, imdbFor(id), imdbID)
	}
}

func TestEnrichBoundsConcurrency(t *testing.T) {
	resolver := &fakeResolver{fn: imdbFor, delay: 10 * time.Millisecond}
	enricher := NewEnricher(resolver, 3, 0, 0)

	ids := enricher.Enrich(context.Background(), discoverPage(1, 20))

	assert.Len(t, ids, 20)
	assert.LessOrEqual(t, resolver.peak.Load(), int32(3), "lookups in flight")
}

func TestEnrichLooksUpDuplicatesOnce(t *testing.T) {
	resolver := &fakeResolver{fn: imdbFor}
	enricher := NewEnricher(resolver, 4, 0, 0)
	movies := append(discoverPage(1, 3), discoverPage(1, 3)...)
	movies = append(movies, models.DiscoverMovie{ID: 0, Title: "no id"})

	ids := enricher.Enrich(context.Background(), movies)

	assert.Len(t, ids, 3)
	for _, m := range discoverPage(1, 3) {
		assert.Equal(t, 1, resolver.callCount(m.ID), "lookups for id %d", m.ID)
	}
	assert.Zero(t, resolver.callCount(0), "movie without TMDB id should not be looked up")
}

func TestEnrichMemoizesOnlyResolvedIDs(t *testing.T) {
	const failing = int64(1001)
	resolver := &fakeResolver{fn: func(id int64) string {
		if id == failing {
			return ""
		}
		return imdbFor(id)
	}}
	enricher := NewEnricher(resolver, 2, 100, time.Hour)
	movies := discoverPage(1, 3)

	first := enricher.Enrich(context.Background(), movies)
	second := enricher.Enrich(context.Background(), movies)

	assert.Len(t, first, 2)
	assert.Len(t, second, 2)
	assert.NotContains(t, second, failing, "consistently failing id must stay absent")
	assert.Equal(t, 1, resolver.callCount(1000), "resolved id should be served from memo")
	assert.Equal(t, 2, resolver.callCount(failing), "unresolved id should be retried on every run")
}

func TestEnrichEmptyBatch(t *testing.T) {
	enricher := NewEnricher(&fakeResolver{fn: imdbFor}, 0, 0, 0)
	assert.Empty(t, enricher.Enrich(context.Background(), nil))
}
