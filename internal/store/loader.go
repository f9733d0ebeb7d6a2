package store

import (
	"context"
	"fmt"
	"log/slog"

	"reelbase/internal/genres"
	"reelbase/internal/logging"
)

// MovieRow is one movie destined for the movies table. Nil pointers load as
// SQL NULL, never as a sentinel string.
type MovieRow struct {
	ID             int64
	Title          string
	Year           *int
	IMDbID         *string
	Director       *string
	Plot           *string
	PosterURL      *string
	RuntimeMinutes *int
	BoxOffice      *int64
	Metascore      *int
	IMDbRating     *float64
}

// LinkRow is one movie↔genre junction row; the pair is its natural key.
type LinkRow struct {
	MovieID int64
	GenreID int64
}

// RatingRow is one rating keyed naturally by (user, movie, timestamp).
type RatingRow struct {
	UserID    int64
	MovieID   int64
	Value     float64
	Timestamp int64
}

// Batch groups everything one pipeline run wants to persist.
type Batch struct {
	Genres  []genres.Genre
	Movies  []MovieRow
	Links   []LinkRow
	Ratings []RatingRow
}

// LoadStats counts what a Load pass actually did.
type LoadStats struct {
	Genres        int
	Movies        int
	Links         int
	Ratings       int
	FailedMovies  int
	FailedLinks   int
	FailedRatings int
}

// Load upserts a batch by natural key so re-running the pipeline over
// unchanged input produces zero net row changes. Genres and movies insert
// before links and ratings to satisfy foreign keys without deferred
// constraint checking. A failed record aborts only its own insert sequence;
// the rest of the batch continues.
func (s *Store) Load(ctx context.Context, batch Batch, logger *slog.Logger) (LoadStats, error) {
	logger = logging.NewComponentLogger(logger, "loader")
	var stats LoadStats

	for _, genre := range batch.Genres {
		if err := s.upsertGenre(ctx, genre); err != nil {
			return stats, fmt.Errorf("upsert genre %q: %w", genre.Name, err)
		}
		stats.Genres++
	}

	loaded := make(map[int64]bool, len(batch.Movies))
	for _, movie := range batch.Movies {
		if err := s.upsertMovie(ctx, movie); err != nil {
			stats.FailedMovies++
			logger.Warn("movie upsert failed, skipping its links",
				logging.Int64("movie_id", movie.ID),
				logging.Error(err))
			continue
		}
		loaded[movie.ID] = true
		stats.Movies++
	}

	for _, link := range batch.Links {
		if !loaded[link.MovieID] {
			stats.FailedLinks++
			continue
		}
		if err := s.insertLink(ctx, link); err != nil {
			stats.FailedLinks++
			logger.Warn("genre link insert failed",
				logging.Int64("movie_id", link.MovieID),
				logging.Int64("genre_id", link.GenreID),
				logging.Error(err))
			continue
		}
		stats.Links++
	}

	for _, rating := range batch.Ratings {
		if !loaded[rating.MovieID] {
			stats.FailedRatings++
			continue
		}
		if err := s.upsertRating(ctx, rating); err != nil {
			stats.FailedRatings++
			logger.Warn("rating upsert failed",
				logging.Int64("movie_id", rating.MovieID),
				logging.Error(err))
			continue
		}
		stats.Ratings++
	}

	logger.Info("load complete",
		logging.Int("genres", stats.Genres),
		logging.Int("movies", stats.Movies),
		logging.Int("links", stats.Links),
		logging.Int("ratings", stats.Ratings),
		logging.Int("failed_movies", stats.FailedMovies),
		logging.Int("failed_links", stats.FailedLinks),
		logging.Int("failed_ratings", stats.FailedRatings))
	return stats, nil
}

func (s *Store) upsertGenre(ctx context.Context, genre genres.Genre) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO genres (genre_id, name) VALUES (?, ?)
         ON CONFLICT(genre_id) DO UPDATE SET name = excluded.name`,
		genre.ID,
		genre.Name,
	)
	return err
}

func (s *Store) upsertMovie(ctx context.Context, movie MovieRow) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO movies (
            movie_id, title, release_year, imdb_id, director, plot,
            poster_url, runtime_minutes, box_office, metascore, imdb_rating
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(movie_id) DO UPDATE SET
            title = excluded.title,
            release_year = excluded.release_year,
            imdb_id = excluded.imdb_id,
            director = excluded.director,
            plot = excluded.plot,
            poster_url = excluded.poster_url,
            runtime_minutes = excluded.runtime_minutes,
            box_office = excluded.box_office,
            metascore = excluded.metascore,
            imdb_rating = excluded.imdb_rating`,
		movie.ID,
		movie.Title,
		nullableInt(movie.Year),
		nullableString(movie.IMDbID),
		nullableString(movie.Director),
		nullableString(movie.Plot),
		nullableString(movie.PosterURL),
		nullableInt(movie.RuntimeMinutes),
		nullableInt64(movie.BoxOffice),
		nullableInt(movie.Metascore),
		nullableFloat(movie.IMDbRating),
	)
	return err
}

func (s *Store) insertLink(ctx context.Context, link LinkRow) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO movie_genres (movie_id, genre_id) VALUES (?, ?)
         ON CONFLICT(movie_id, genre_id) DO NOTHING`,
		link.MovieID,
		link.GenreID,
	)
	return err
}

func (s *Store) upsertRating(ctx context.Context, rating RatingRow) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO ratings (user_id, movie_id, rating, rated_at) VALUES (?, ?, ?, ?)
         ON CONFLICT(user_id, movie_id, rated_at) DO UPDATE SET rating = excluded.rating`,
		rating.UserID,
		rating.MovieID,
		rating.Value,
		rating.Timestamp,
	)
	return err
}

// GenreIDs returns the persisted genre name→id table, used to seed the genre
// registry so surrogate ids stay stable across runs.
func (s *Store) GenreIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT genre_id, name FROM genres`)
	if err != nil {
		return nil, fmt.Errorf("query genres: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		ids[name] = id
	}
	return ids, rows.Err()
}

// TableCounts returns row counts for all four tables, primarily for tests
// and the CLI summary.
func (s *Store) TableCounts(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64, 4)
	for _, table := range []string{"movies", "genres", "movie_genres", "ratings"} {
		var count int64
		row := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+table)
		if err := row.Scan(&count); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		counts[table] = count
	}
	return counts, nil
}

func nullableString(value *string) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableInt64(value *int64) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullableFloat(value *float64) any {
	if value == nil {
		return nil
	}
	return *value
}
