package store_test

import (
	"context"
	"math"
	"testing"

	"reelbase/internal/genres"
	"reelbase/internal/logging"
	"reelbase/internal/store"
	"reelbase/internal/testsupport"
)

func loadAnalyticsFixture(t *testing.T) *store.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	batch := store.Batch{
		Genres: []genres.Genre{
			{ID: 1, Name: "Action"},
			{ID: 2, Name: "Drama"},
			{ID: 3, Name: "Comedy"},
		},
		Movies: []store.MovieRow{
			{ID: 1, Title: "Alpha", Year: intPtr(1999), Director: strPtr("Jane Doe")},
			{ID: 2, Title: "Beta", Year: intPtr(1999), Director: strPtr("Jane Doe")},
			{ID: 3, Title: "Gamma", Year: intPtr(2005), Director: strPtr("John Roe")},
			{ID: 4, Title: "Delta", Year: intPtr(2005)},
		},
		Links: []store.LinkRow{
			{MovieID: 1, GenreID: 1},
			{MovieID: 2, GenreID: 2},
			{MovieID: 3, GenreID: 2},
			{MovieID: 4, GenreID: 3},
		},
		Ratings: []store.RatingRow{
			{UserID: 1, MovieID: 1, Value: 5.0, Timestamp: 1},
			{UserID: 2, MovieID: 1, Value: 4.0, Timestamp: 2},
			{UserID: 3, MovieID: 1, Value: 4.5, Timestamp: 3},
			{UserID: 1, MovieID: 2, Value: 3.0, Timestamp: 4},
			{UserID: 2, MovieID: 2, Value: 3.5, Timestamp: 5},
			{UserID: 1, MovieID: 3, Value: 4.0, Timestamp: 6},
			{UserID: 1, MovieID: 4, Value: 2.0, Timestamp: 7},
		},
	}
	if _, err := st.Load(context.Background(), batch, logging.NewNop()); err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return st
}

func TestTopRatedMovieHonorsThreshold(t *testing.T) {
	st := loadAnalyticsFixture(t)
	ctx := context.Background()

	top, ok, err := st.TopRatedMovie(ctx, 3)
	if err != nil {
		t.Fatalf("TopRatedMovie: %v", err)
	}
	if !ok || top.Title != "Alpha" {
		t.Fatalf("expected Alpha with 3 ratings, got %+v ok=%v", top, ok)
	}
	if math.Abs(top.AvgRating-4.5) > 1e-9 {
		t.Fatalf("expected average 4.5, got %f", top.AvgRating)
	}

	_, ok, err = st.TopRatedMovie(ctx, 10)
	if err != nil {
		t.Fatalf("TopRatedMovie: %v", err)
	}
	if ok {
		t.Fatal("expected no movie above a 10-rating threshold")
	}
}

func TestTopGenresFiltersByAverage(t *testing.T) {
	st := loadAnalyticsFixture(t)

	results, err := st.TopGenres(context.Background(), 3.4, 10)
	if err != nil {
		t.Fatalf("TopGenres: %v", err)
	}
	// Action avg 4.5, Drama avg 3.5, Comedy avg 2.0 (filtered out).
	if len(results) != 2 {
		t.Fatalf("expected 2 qualifying genres, got %v", results)
	}
	if results[0].Genre != "Action" || results[1].Genre != "Drama" {
		t.Fatalf("unexpected ordering: %v", results)
	}
}

func TestMostProlificDirectorExcludesUnknown(t *testing.T) {
	st := loadAnalyticsFixture(t)

	director, ok, err := st.MostProlificDirector(context.Background())
	if err != nil {
		t.Fatalf("MostProlificDirector: %v", err)
	}
	if !ok || director.Director != "Jane Doe" || director.MovieCount != 2 {
		t.Fatalf("expected Jane Doe with 2 movies, got %+v ok=%v", director, ok)
	}
}

func TestYearlyAveragesRequireMinimumMovies(t *testing.T) {
	st := loadAnalyticsFixture(t)

	results, err := st.YearlyAverages(context.Background(), 2)
	if err != nil {
		t.Fatalf("YearlyAverages: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected both years with 2 movies, got %v", results)
	}
	if results[0].Year != 1999 || results[1].Year != 2005 {
		t.Fatalf("expected ascending years, got %v", results)
	}

	strict, err := st.YearlyAverages(context.Background(), 3)
	if err != nil {
		t.Fatalf("YearlyAverages: %v", err)
	}
	if len(strict) != 0 {
		t.Fatalf("expected no year with 3 movies, got %v", strict)
	}
}
