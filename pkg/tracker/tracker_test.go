package tracker

import "testing"

func TestTracker(t *testing.T) {
	tr := New()
	provider := "wikidata"

	stats := tr.Snapshot()
	if len(stats) != 0 {
		t.Errorf("Expected empty stats, got %d", len(stats))
	}

	tr.TrackCacheHit(provider)
	tr.TrackCacheHit(provider)
	tr.TrackCacheMiss(provider)
	tr.TrackAPISuccess(provider)
	tr.TrackAPIFailure(provider)

	stats = tr.Snapshot()
	pStats, ok := stats[provider]
	if !ok {
		t.Fatalf("Expected stats for provider %s", provider)
	}

	if pStats.CacheHits != 2 {
		t.Errorf("Expected 2 CacheHits, got %d", pStats.CacheHits)
	}
	if pStats.CacheMisses != 1 {
		t.Errorf("Expected 1 CacheMiss, got %d", pStats.CacheMisses)
	}
	if pStats.APISuccess != 1 {
		t.Errorf("Expected 1 APISuccess, got %d", pStats.APISuccess)
	}
	if pStats.APIFailures != 1 {
		t.Errorf("Expected 1 APIFailure, got %d", pStats.APIFailures)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := New()
	tr.TrackCacheHit("wikidata")

	snap := tr.Snapshot()
	s := snap["wikidata"]
	s.CacheHits = 99

	if got := tr.Snapshot()["wikidata"].CacheHits; got != 1 {
		t.Errorf("Snapshot mutation leaked into tracker: got %d hits", got)
	}
}
