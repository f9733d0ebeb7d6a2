package store_test

import (
	"context"
	"reflect"
	"testing"

	"reelbase/internal/genres"
	"reelbase/internal/logging"
	"reelbase/internal/store"
	"reelbase/internal/testsupport"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func int64Ptr(v int64) *int64 { return &v }

func sampleBatch() store.Batch {
	return store.Batch{
		Genres: []genres.Genre{
			{ID: 1, Name: "Action"},
			{ID: 2, Name: "Drama"},
		},
		Movies: []store.MovieRow{
			{
				ID:             1,
				Title:          "Alpha",
				Year:           intPtr(1999),
				IMDbID:         strPtr("tt0000001"),
				Director:       strPtr("Jane Doe"),
				RuntimeMinutes: intPtr(120),
				BoxOffice:      int64Ptr(1000000),
				IMDbRating:     floatPtr(8.1),
			},
			{ID: 2, Title: "Beta"},
		},
		Links: []store.LinkRow{
			{MovieID: 1, GenreID: 1},
			{MovieID: 1, GenreID: 2},
			{MovieID: 2, GenreID: 2},
		},
		Ratings: []store.RatingRow{
			{UserID: 1, MovieID: 1, Value: 4.5, Timestamp: 100},
			{UserID: 2, MovieID: 1, Value: 4.0, Timestamp: 200},
			{UserID: 1, MovieID: 2, Value: 3.0, Timestamp: 300},
		},
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	st.Close()

	// Re-opening an existing database must not fail.
	again, err := store.OpenPath(cfg.Paths.Database)
	if err != nil {
		t.Fatalf("second open failed: %v", err)
	}
	again.Close()
}

func TestLoadIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first, err := st.Load(ctx, sampleBatch(), logging.NewNop())
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.Movies != 2 || first.Genres != 2 || first.Links != 3 || first.Ratings != 3 {
		t.Fatalf("unexpected first load stats: %+v", first)
	}

	countsAfterFirst, err := st.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}

	if _, err := st.Load(ctx, sampleBatch(), logging.NewNop()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	countsAfterSecond, err := st.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}

	if !reflect.DeepEqual(countsAfterFirst, countsAfterSecond) {
		t.Fatalf("reload changed row counts: %v then %v", countsAfterFirst, countsAfterSecond)
	}
}

func TestLoadSkipsLinksForMissingMovies(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := store.Batch{
		Genres: []genres.Genre{{ID: 1, Name: "Action"}},
		Movies: []store.MovieRow{{ID: 1, Title: "Alpha"}},
		Links: []store.LinkRow{
			{MovieID: 1, GenreID: 1},
			{MovieID: 99, GenreID: 1}, // no such movie
		},
		Ratings: []store.RatingRow{
			{UserID: 1, MovieID: 1, Value: 4.0, Timestamp: 1},
			{UserID: 1, MovieID: 99, Value: 5.0, Timestamp: 2}, // no such movie
		},
	}

	stats, err := st.Load(ctx, batch, logging.NewNop())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if stats.Links != 1 || stats.FailedLinks != 1 {
		t.Fatalf("expected one dangling link skipped, got %+v", stats)
	}
	if stats.Ratings != 1 || stats.FailedRatings != 1 {
		t.Fatalf("expected one dangling rating skipped, got %+v", stats)
	}

	counts, err := st.TableCounts(ctx)
	if err != nil {
		t.Fatalf("table counts: %v", err)
	}
	if counts["movie_genres"] != 1 || counts["ratings"] != 1 {
		t.Fatalf("dangling rows must not load: %v", counts)
	}
}

func TestGenreIDsRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.Load(ctx, sampleBatch(), logging.NewNop()); err != nil {
		t.Fatalf("load: %v", err)
	}

	ids, err := st.GenreIDs(ctx)
	if err != nil {
		t.Fatalf("GenreIDs: %v", err)
	}
	want := map[string]int64{"Action": 1, "Drama": 2}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("GenreIDs = %v, want %v", ids, want)
	}
}

func TestUpsertPreservesNulls(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	batch := store.Batch{Movies: []store.MovieRow{{ID: 7, Title: "Sparse"}}}
	if _, err := st.Load(ctx, batch, logging.NewNop()); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Directors are stored as NULL, so the prolific-director query must see
	// no attributed movies.
	_, ok, err := st.MostProlificDirector(ctx)
	if err != nil {
		t.Fatalf("MostProlificDirector: %v", err)
	}
	if ok {
		t.Fatal("expected no attributed director for null-only rows")
	}
}
