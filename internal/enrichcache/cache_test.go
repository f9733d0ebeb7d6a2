package enrichcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"reelbase/internal/enrichcache"
	"reelbase/internal/logging"
	"reelbase/internal/omdb"
)

func newCache(t *testing.T, path string) *enrichcache.Cache {
	t.Helper()
	cache, err := enrichcache.Open(path, logging.NewNop())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	return cache
}

func TestStoreLookupRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := newCache(t, path)

	director := "Christopher Nolan"
	year := 2010
	entry := enrichcache.Entry{
		Key:    "inception\x1f2010",
		Title:  "Inception",
		Year:   &year,
		Status: enrichcache.StatusOK,
		Record: omdb.Record{Director: &director},
	}
	if err := cache.Store(entry); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	got, found := cache.Lookup("inception\x1f2010")
	if !found {
		t.Fatal("expected entry after Store")
	}
	if got.Status != enrichcache.StatusOK || got.Record.Director == nil || *got.Record.Director != director {
		t.Fatalf("round-trip mismatch: %+v", got)
	}
}

func TestMissingFileIsEmptyCache(t *testing.T) {
	cache := newCache(t, filepath.Join(t.TempDir(), "absent.json"))
	if cache.Count() != 0 {
		t.Fatalf("expected empty cache, got %d entries", cache.Count())
	}
}

func TestReloadObservesOnlyFullyWrittenRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := newCache(t, path)

	if err := cache.Store(enrichcache.Entry{Key: "alpha\x1f1999", Title: "Alpha", Status: enrichcache.StatusOK}); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	// Simulate a crash between two stores: a leftover temp file from an
	// interrupted write must not corrupt the durable cache.
	if err := os.WriteFile(path+".tmp", []byte(`[{"key":"beta","st`), 0o644); err != nil {
		t.Fatalf("write torn temp file: %v", err)
	}

	reloaded := newCache(t, path)
	if reloaded.Count() != 1 {
		t.Fatalf("expected 1 durable entry after reload, got %d", reloaded.Count())
	}
	if _, found := reloaded.Lookup("alpha\x1f1999"); !found {
		t.Fatal("expected fully written record to survive reload")
	}
	if _, found := reloaded.Lookup("beta"); found {
		t.Fatal("partial record must not be observed")
	}
}

func TestNeedsLookupPolicy(t *testing.T) {
	cache := newCache(t, filepath.Join(t.TempDir(), "cache.json"))

	if !cache.NeedsLookup("absent") {
		t.Fatal("absent key must need lookup")
	}

	for _, tc := range []struct {
		status enrichcache.Status
		want   bool
	}{
		{enrichcache.StatusOK, false},
		{enrichcache.StatusNotFound, false},
		{enrichcache.StatusError, true},
	} {
		key := "key-" + string(tc.status)
		if err := cache.Store(enrichcache.Entry{Key: key, Status: tc.status}); err != nil {
			t.Fatalf("Store returned error: %v", err)
		}
		if got := cache.NeedsLookup(key); got != tc.want {
			t.Fatalf("NeedsLookup(%s) = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestOKRecordsAreImmutable(t *testing.T) {
	cache := newCache(t, filepath.Join(t.TempDir(), "cache.json"))

	director := "Original"
	if err := cache.Store(enrichcache.Entry{
		Key:    "k",
		Status: enrichcache.StatusOK,
		Record: omdb.Record{Director: &director},
	}); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if err := cache.Store(enrichcache.Entry{Key: "k", Status: enrichcache.StatusError}); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	entry, _ := cache.Lookup("k")
	if entry.Status != enrichcache.StatusOK {
		t.Fatalf("ok record was overwritten: %+v", entry)
	}
}

func TestRetryableEntriesAreReplaced(t *testing.T) {
	cache := newCache(t, filepath.Join(t.TempDir(), "cache.json"))

	if err := cache.Store(enrichcache.Entry{Key: "k", Status: enrichcache.StatusError, Reason: "timeout"}); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}
	if err := cache.Store(enrichcache.Entry{Key: "k", Status: enrichcache.StatusNotFound}); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	entry, _ := cache.Lookup("k")
	if entry.Status != enrichcache.StatusNotFound {
		t.Fatalf("expected retryable entry replaced, got %+v", entry)
	}
}

func TestPersistenceAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	cache := newCache(t, path)

	if err := cache.Store(enrichcache.Entry{Key: "beta", Title: "Beta", Status: enrichcache.StatusNotFound}); err != nil {
		t.Fatalf("Store returned error: %v", err)
	}

	second := newCache(t, path)
	entry, found := second.Lookup("beta")
	if !found || entry.Status != enrichcache.StatusNotFound {
		t.Fatalf("expected not_found to persist across runs, got %+v found=%v", entry, found)
	}
	if second.NeedsLookup("beta") {
		t.Fatal("persisted not_found must not be re-fetched")
	}
}

func TestClearAndStats(t *testing.T) {
	cache := newCache(t, filepath.Join(t.TempDir(), "cache.json"))

	for _, status := range []enrichcache.Status{enrichcache.StatusOK, enrichcache.StatusOK, enrichcache.StatusError} {
		key := string(status) + string(rune('a'+cache.Count()))
		if err := cache.Store(enrichcache.Entry{Key: key, Status: status}); err != nil {
			t.Fatalf("Store returned error: %v", err)
		}
	}

	stats := cache.Stats()
	if stats[enrichcache.StatusOK] != 2 || stats[enrichcache.StatusError] != 1 {
		t.Fatalf("unexpected stats: %v", stats)
	}

	if err := cache.Clear(); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}
	if cache.Count() != 0 {
		t.Fatalf("expected empty cache after Clear, got %d", cache.Count())
	}
}
