package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// TopMovie is the result of the top-rated movie query.
type TopMovie struct {
	Title       string
	AvgRating   float64
	RatingCount int64
}

// GenreRating aggregates ratings per genre.
type GenreRating struct {
	Genre       string
	AvgRating   float64
	RatingCount int64
}

// DirectorCount counts movies per director.
type DirectorCount struct {
	Director   string
	MovieCount int64
}

// YearStats aggregates ratings per release year.
type YearStats struct {
	Year       int
	AvgRating  float64
	MovieCount int64
}

// TopRatedMovie returns the highest-rated movie among those with at least
// minRatings ratings. The second return is false when no movie qualifies.
func (s *Store) TopRatedMovie(ctx context.Context, minRatings int64) (TopMovie, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT m.title, AVG(r.rating) AS avg_rating, COUNT(r.rating) AS rating_count
         FROM movies m
         JOIN ratings r ON r.movie_id = m.movie_id
         GROUP BY m.movie_id
         HAVING rating_count >= ?
         ORDER BY avg_rating DESC, rating_count DESC
         LIMIT 1`,
		minRatings,
	)
	var result TopMovie
	if err := row.Scan(&result.Title, &result.AvgRating, &result.RatingCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TopMovie{}, false, nil
		}
		return TopMovie{}, false, fmt.Errorf("top rated movie: %w", err)
	}
	return result, true, nil
}

// TopGenres returns genres whose average rating meets minAvg, best first.
func (s *Store) TopGenres(ctx context.Context, minAvg float64, limit int64) ([]GenreRating, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT g.name, AVG(r.rating) AS avg_rating, COUNT(r.rating) AS rating_count
         FROM genres g
         JOIN movie_genres mg ON mg.genre_id = g.genre_id
         JOIN ratings r ON r.movie_id = mg.movie_id
         GROUP BY g.genre_id
         HAVING avg_rating >= ?
         ORDER BY avg_rating DESC
         LIMIT ?`,
		minAvg,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("top genres: %w", err)
	}
	defer rows.Close()

	var results []GenreRating
	for rows.Next() {
		var entry GenreRating
		if err := rows.Scan(&entry.Genre, &entry.AvgRating, &entry.RatingCount); err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

// MostProlificDirector returns the director with the most movies, excluding
// rows where the director is unknown. The second return is false when the
// store has no attributed movies.
func (s *Store) MostProlificDirector(ctx context.Context) (DirectorCount, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT director, COUNT(1) AS movie_count
         FROM movies
         WHERE director IS NOT NULL AND director != ''
         GROUP BY director
         ORDER BY movie_count DESC, director
         LIMIT 1`,
	)
	var result DirectorCount
	if err := row.Scan(&result.Director, &result.MovieCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return DirectorCount{}, false, nil
		}
		return DirectorCount{}, false, fmt.Errorf("most prolific director: %w", err)
	}
	return result, true, nil
}

// YearlyAverages returns the average rating per release year, restricted to
// years with at least minMovies movies. Years are ascending.
func (s *Store) YearlyAverages(ctx context.Context, minMovies int64) ([]YearStats, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT m.release_year, AVG(r.rating) AS avg_rating, COUNT(DISTINCT m.movie_id) AS movie_count
         FROM movies m
         JOIN ratings r ON r.movie_id = m.movie_id
         WHERE m.release_year IS NOT NULL
         GROUP BY m.release_year
         HAVING movie_count >= ?
         ORDER BY m.release_year`,
		minMovies,
	)
	if err != nil {
		return nil, fmt.Errorf("yearly averages: %w", err)
	}
	defer rows.Close()

	var results []YearStats
	for rows.Next() {
		var entry YearStats
		if err := rows.Scan(&entry.Year, &entry.AvgRating, &entry.MovieCount); err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}
