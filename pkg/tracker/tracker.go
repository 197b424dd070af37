// Package tracker counts cache and API activity per provider. The counters
// feed the -stats report and let tests assert how many network calls a
// resolution actually made.
package tracker

import (
	"sync"
	"sync/atomic"
)

// Tracker tracks usage statistics per provider.
type Tracker struct {
	mu    sync.RWMutex
	stats map[string]*ProviderStats
}

// ProviderStats holds metrics for a specific provider.
// Fields are accessed atomically.
type ProviderStats struct {
	CacheHits   int64
	CacheMisses int64
	APISuccess  int64
	APIFailures int64
}

// New creates a new Tracker.
func New() *Tracker {
	return &Tracker{
		stats: make(map[string]*ProviderStats),
	}
}

func (t *Tracker) getStats(provider string) *ProviderStats {
	t.mu.RLock()
	s, ok := t.stats[provider]
	t.mu.RUnlock()
	if ok {
		return s
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if s, ok = t.stats[provider]; ok {
		return s
	}
	s = &ProviderStats{}
	t.stats[provider] = s
	return s
}

// TrackCacheHit increments the cache hit counter.
func (t *Tracker) TrackCacheHit(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheHits, 1)
}

// TrackCacheMiss increments the cache miss counter.
func (t *Tracker) TrackCacheMiss(provider string) {
	atomic.AddInt64(&t.getStats(provider).CacheMisses, 1)
}

// TrackAPISuccess increments the successful request counter.
func (t *Tracker) TrackAPISuccess(provider string) {
	atomic.AddInt64(&t.getStats(provider).APISuccess, 1)
}

// TrackAPIFailure increments the failed request counter.
func (t *Tracker) TrackAPIFailure(provider string) {
	atomic.AddInt64(&t.getStats(provider).APIFailures, 1)
}

// Snapshot returns a copy of the current stats.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make(map[string]ProviderStats)
	for k, v := range t.stats {
		result[k] = ProviderStats{
			CacheHits:   atomic.LoadInt64(&v.CacheHits),
			CacheMisses: atomic.LoadInt64(&v.CacheMisses),
			APISuccess:  atomic.LoadInt64(&v.APISuccess),
			APIFailures: atomic.LoadInt64(&v.APIFailures),
		}
	}
	return result
}
