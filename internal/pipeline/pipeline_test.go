package pipeline_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"reelbase/internal/config"
	"reelbase/internal/enrichcache"
	"reelbase/internal/logging"
	"reelbase/internal/omdb"
	"reelbase/internal/pipeline"
	"reelbase/internal/testsupport"
)

// newOMDbServer serves scripted by-title responses and counts lookups.
func newOMDbServer(t *testing.T, responses map[string]map[string]string, calls *int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.Header().Set("Content-Type", "application/json")
		payload, ok := responses[r.URL.Query().Get("t")]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": "Movie not found!"})
			return
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func writeInputs(t *testing.T, cfg *config.Config) {
	t.Helper()
	testsupport.WriteFile(t, cfg.Paths.MoviesCSV, `movieId,title,genres
1,Alpha (1999),Action|Drama
2,Beta,Comedy
`)
	testsupport.WriteFile(t, cfg.Paths.RatingsCSV, `userId,movieId,rating,timestamp
1,1,4.5,100
2,1,3.5,200
1,2,5.0,300
`)
}

func seedAlphaCache(t *testing.T, cfg *config.Config) {
	t.Helper()
	cache, err := enrichcache.Open(cfg.Paths.CacheFile, logging.NewNop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	year := 1999
	director := "Cached Director"
	imdbID := "tt0001111"
	if err := cache.Store(enrichcache.Entry{
		Key:      "alpha\x1f1999",
		Title:    "Alpha",
		Year:     &year,
		Status:   enrichcache.StatusOK,
		Record:   omdb.Record{IMDbID: &imdbID, Director: &director},
		CachedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
}

func TestRunEndToEnd(t *testing.T) {
	var calls int
	server := newOMDbServer(t, map[string]map[string]string{
		"Beta": {
			"Response": "True",
			"imdbID":   "tt0002222",
			"Director": "Fresh Director",
			"Runtime":  "90 min",
		},
	}, &calls)

	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(server.URL), testsupport.WithCallLimit(10))
	writeInputs(t, cfg)
	seedAlphaCache(t, cfg)

	p, err := pipeline.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected exactly one network call (Beta), got %d", calls)
	}
	if summary.Enrichment.CacheHits != 1 || summary.Enrichment.Calls != 1 {
		t.Fatalf("unexpected enrichment stats: %+v", summary.Enrichment)
	}
	if summary.Load.Movies != 2 || summary.Load.Ratings != 3 {
		t.Fatalf("unexpected load stats: %+v", summary.Load)
	}

	st := testsupport.MustOpenStore(t, cfg)
	counts, err := st.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	want := map[string]int64{"movies": 2, "genres": 3, "movie_genres": 3, "ratings": 3}
	if !reflect.DeepEqual(counts, want) {
		t.Fatalf("unexpected table counts: %v", counts)
	}

	// Beta's outcome must be cached for the next run.
	cache, err := enrichcache.Open(cfg.Paths.CacheFile, logging.NewNop())
	if err != nil {
		t.Fatalf("reopen cache: %v", err)
	}
	entry, found := cache.Lookup("beta")
	if !found || entry.Status != enrichcache.StatusOK {
		t.Fatalf("expected Beta cached as ok, got %+v found=%v", entry, found)
	}
}

func TestRerunChangesNothing(t *testing.T) {
	var calls int
	server := newOMDbServer(t, map[string]map[string]string{
		"Beta": {"Response": "True", "imdbID": "tt0002222", "Director": "Fresh Director"},
	}, &calls)

	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(server.URL), testsupport.WithCallLimit(10))
	writeInputs(t, cfg)
	seedAlphaCache(t, cfg)

	p, err := pipeline.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	callsAfterFirst := calls

	st := testsupport.MustOpenStore(t, cfg)
	countsAfterFirst, err := st.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	st.Close()

	if _, err := p.Run(context.Background()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if calls != callsAfterFirst {
		t.Fatalf("rerun must not hit the network, got %d extra calls", calls-callsAfterFirst)
	}

	st = testsupport.MustOpenStore(t, cfg)
	defer st.Close()
	countsAfterSecond, err := st.TableCounts(context.Background())
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if !reflect.DeepEqual(countsAfterFirst, countsAfterSecond) {
		t.Fatalf("rerun changed row counts: %v then %v", countsAfterFirst, countsAfterSecond)
	}
}

func TestBudgetExhaustionSkipsRemaining(t *testing.T) {
	var calls int
	server := newOMDbServer(t, map[string]map[string]string{}, &calls)

	cfg := testsupport.NewConfig(t, testsupport.WithBaseURL(server.URL), testsupport.WithCallLimit(1))
	testsupport.WriteFile(t, cfg.Paths.MoviesCSV, `movieId,title,genres
1,One (2001),Action
2,Two (2002),Action
3,Three (2003),Action
`)
	testsupport.WriteFile(t, cfg.Paths.RatingsCSV, "userId,movieId,rating,timestamp\n")

	p, err := pipeline.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if calls != 1 {
		t.Fatalf("expected 1 network call under budget 1, got %d", calls)
	}
	if summary.Enrichment.SkippedBudget != 2 {
		t.Fatalf("expected 2 movies skipped on budget, got %+v", summary.Enrichment)
	}
	// Skipped movies still load, just without enrichment fields.
	if summary.Load.Movies != 3 {
		t.Fatalf("expected all movies loaded, got %+v", summary.Load)
	}

	// Only the attempted movie is cached; skipped ones stay eligible.
	cache, err := enrichcache.Open(cfg.Paths.CacheFile, logging.NewNop())
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	if cache.Count() != 1 {
		t.Fatalf("expected 1 cached outcome, got %d", cache.Count())
	}
}

func TestMissingInputFileFailsBeforeLoad(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	// No CSV files written.
	p, err := pipeline.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	if _, err := p.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing input file")
	}
}
