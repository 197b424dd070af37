package wikidata

import (
	"context"
	"errors"
	"testing"

	"github.com/adityahase/search/pkg/store"
	"github.com/adityahase/search/pkg/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fetcherFunc adapts a function to the Fetcher interface.
type fetcherFunc func(ctx context.Context, ids []string) error

func (f fetcherFunc) Fetch(ctx context.Context, ids []string) error { return f(ctx, ids) }

// stubFetcher writes a stub document for every requested id and records each
// call's id list.
type stubFetcher struct {
	store store.CacheStore
	calls [][]string
}

func (f *stubFetcher) Fetch(ctx context.Context, ids []string) error {
	f.calls = append(f.calls, ids)
	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, store.Document{ID: id, JSON: []byte(entityDoc(id, "Label "+id))})
	}
	return f.store.Put(ctx, docs)
}

func TestResolveOrderPreservation(t *testing.T) {
	st := testStore(t)
	f := &stubFetcher{store: st}
	r := NewResolver(st, f, nil)

	entities, err := r.Resolve(context.Background(), []string{"Q1", "Q2", "Q1"})
	require.NoError(t, err)

	require.Len(t, entities, 3)
	assert.Equal(t, "Q1", entities[0].ID)
	assert.Equal(t, "Q2", entities[1].ID)
	assert.Equal(t, "Q1", entities[2].ID)

	// The duplicated id is fetched once
	require.Len(t, f.calls, 1)
	assert.Equal(t, []string{"Q1", "Q2"}, f.calls[0])
}

func TestResolveIdempotence(t *testing.T) {
	st := testStore(t)
	f := &stubFetcher{store: st}
	r := NewResolver(st, f, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, []string{"Q1", "Q2", "Q3"})
	require.NoError(t, err)
	require.Len(t, f.calls, 1)

	// Second call is satisfied entirely from the cache
	_, err = r.Resolve(ctx, []string{"Q1", "Q2", "Q3"})
	require.NoError(t, err)
	assert.Len(t, f.calls, 1, "second resolve must not fetch")
}

func TestResolvePartialCacheHit(t *testing.T) {
	st := testStore(t)
	f := &stubFetcher{store: st}
	r := NewResolver(st, f, nil)
	ctx := context.Background()

	_, err := r.Resolve(ctx, []string{"Q1"})
	require.NoError(t, err)

	_, err = r.Resolve(ctx, []string{"Q1", "Q2", "Q3"})
	require.NoError(t, err)

	// Only the two misses hit the fetcher
	require.Len(t, f.calls, 2)
	assert.Equal(t, []string{"Q2", "Q3"}, f.calls[1])
}

func TestResolveFetchErrorPropagates(t *testing.T) {
	st := testStore(t)
	boom := errors.New("boom")
	r := NewResolver(st, fetcherFunc(func(ctx context.Context, ids []string) error {
		return boom
	}), nil)

	_, err := r.Resolve(context.Background(), []string{"Q1"})
	assert.ErrorIs(t, err, boom)
}

func TestResolveUnresolvedAfterFetch(t *testing.T) {
	st := testStore(t)
	// A fetcher that claims success but persists nothing
	r := NewResolver(st, fetcherFunc(func(ctx context.Context, ids []string) error {
		return nil
	}), nil)

	_, err := r.Resolve(context.Background(), []string{"Q1"})
	assert.ErrorIs(t, err, ErrFetch)
}

func TestResolveTracksCacheActivity(t *testing.T) {
	st := testStore(t)
	f := &stubFetcher{store: st}
	tr := tracker.New()
	r := NewResolver(st, f, tr)
	ctx := context.Background()

	_, err := r.Resolve(ctx, []string{"Q1", "Q2"})
	require.NoError(t, err)
	_, err = r.Resolve(ctx, []string{"Q1", "Q2", "Q3"})
	require.NoError(t, err)

	stats := tr.Snapshot()["wikidata"]
	assert.Equal(t, int64(2), stats.CacheHits)
	assert.Equal(t, int64(3), stats.CacheMisses)
}

func TestResolveEmptyInput(t *testing.T) {
	st := testStore(t)
	f := &stubFetcher{store: st}
	r := NewResolver(st, f, nil)

	entities, err := r.Resolve(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, entities)
	assert.Empty(t, f.calls)
}
