package wikidata

import (
	"context"
	"errors"
	"fmt"

	"github.com/adityahase/search/pkg/store"
	"github.com/adityahase/search/pkg/tracker"
)

// trackerProvider groups all resolver cache activity under one provider name.
const trackerProvider = "wikidata"

// Fetcher retrieves entity documents into the cache store.
type Fetcher interface {
	Fetch(ctx context.Context, ids []string) error
}

// Resolver turns a requested list of identifiers into locally available
// entities with minimal network calls: only ids absent from the store are
// fetched, and the fetch runs to completion before any document is read back.
type Resolver struct {
	store   store.CacheStore
	fetcher Fetcher
	tracker *tracker.Tracker
}

// NewResolver creates a Resolver over the given store and fetcher. The tracker
// may be nil; when set, it counts a cache hit or miss per distinct id.
func NewResolver(st store.CacheStore, f Fetcher, tr *tracker.Tracker) *Resolver {
	return &Resolver{store: st, fetcher: f, tracker: tr}
}

// Resolve returns one entity per input id, in input order. Duplicates in the
// input produce duplicate outputs, each satisfied from the cache.
func (r *Resolver) Resolve(ctx context.Context, ids []string) ([]*Entity, error) {
	missing, err := r.missing(ctx, ids)
	if err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		if err := r.fetcher.Fetch(ctx, missing); err != nil {
			return nil, err
		}
	}

	docs, err := r.store.Get(ctx, ids)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// The fetch completed but left an id unresolved.
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}
		return nil, err
	}

	entities := make([]*Entity, 0, len(docs))
	for _, doc := range docs {
		e, err := ParseEntity(doc)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

// ResolveOne resolves a single identifier.
func (r *Resolver) ResolveOne(ctx context.Context, id string) (*Entity, error) {
	entities, err := r.Resolve(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	return entities[0], nil
}

// missing returns the ids absent from the store, deduplicated in
// first-occurrence order so no id is fetched twice in one call.
func (r *Resolver) missing(ctx context.Context, ids []string) ([]string, error) {
	seen := make(map[string]bool, len(ids))
	var missing []string

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		ok, err := r.store.Has(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			if r.tracker != nil {
				r.tracker.TrackCacheHit(trackerProvider)
			}
			continue
		}
		if r.tracker != nil {
			r.tracker.TrackCacheMiss(trackerProvider)
		}
		missing = append(missing, id)
	}
	return missing, nil
}
