package extract

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"reelbase/internal/logging"
)

// Movie is one raw row from the movies input, title exactly as given.
type Movie struct {
	ID     int64
	Title  string
	Genres string
}

// Rating is one raw row from the ratings input.
type Rating struct {
	UserID    int64
	MovieID   int64
	Value     float64
	Timestamp int64
}

// Result carries the parsed rows plus the count of malformed rows that were
// dropped. Drops are never fatal.
type Result[T any] struct {
	Rows    []T
	Dropped int
}

// Movies reads the movies CSV (movieId, title, genres). Rows with a missing
// or unparseable movie id or an empty title are dropped and counted.
func Movies(path string, logger *slog.Logger) (Result[Movie], error) {
	logger = logging.NewComponentLogger(logger, "extract")

	var result Result[Movie]
	err := readCSV(path, []string{"movieId", "title"}, func(get func(string) string) {
		id, err := strconv.ParseInt(strings.TrimSpace(get("movieId")), 10, 64)
		title := strings.TrimSpace(get("title"))
		if err != nil || id <= 0 || title == "" {
			result.Dropped++
			return
		}
		result.Rows = append(result.Rows, Movie{
			ID:     id,
			Title:  title,
			Genres: strings.TrimSpace(get("genres")),
		})
	})
	if err != nil {
		return Result[Movie]{}, fmt.Errorf("read movies csv: %w", err)
	}

	logger.Info("extracted movies",
		logging.Int("rows", len(result.Rows)),
		logging.Int("dropped", result.Dropped),
		logging.String("path", path))
	return result, nil
}

// Ratings reads the ratings CSV (userId, movieId, rating, timestamp). Rows
// with unparseable values or a missing movie reference are dropped and
// counted.
func Ratings(path string, logger *slog.Logger) (Result[Rating], error) {
	logger = logging.NewComponentLogger(logger, "extract")

	var result Result[Rating]
	err := readCSV(path, []string{"userId", "movieId", "rating", "timestamp"}, func(get func(string) string) {
		userID, errUser := strconv.ParseInt(strings.TrimSpace(get("userId")), 10, 64)
		movieID, errMovie := strconv.ParseInt(strings.TrimSpace(get("movieId")), 10, 64)
		value, errValue := strconv.ParseFloat(strings.TrimSpace(get("rating")), 64)
		timestamp, errTime := strconv.ParseInt(strings.TrimSpace(get("timestamp")), 10, 64)
		if errUser != nil || errMovie != nil || errValue != nil || errTime != nil || movieID <= 0 {
			result.Dropped++
			return
		}
		result.Rows = append(result.Rows, Rating{
			UserID:    userID,
			MovieID:   movieID,
			Value:     value,
			Timestamp: timestamp,
		})
	})
	if err != nil {
		return Result[Rating]{}, fmt.Errorf("read ratings csv: %w", err)
	}

	logger.Info("extracted ratings",
		logging.Int("rows", len(result.Rows)),
		logging.Int("dropped", result.Dropped),
		logging.String("path", path))
	return result, nil
}

// readCSV streams rows from a header-driven CSV file, invoking handle with a
// column accessor per data row. Short rows are padded with empty strings so
// handlers can treat every column as optional.
func readCSV(path string, required []string, handle func(get func(string) string)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty file")
		}
		return fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, name := range required {
		if _, ok := columns[name]; !ok {
			return fmt.Errorf("missing required column %q", name)
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		handle(func(name string) string {
			idx, ok := columns[name]
			if !ok || idx >= len(record) {
				return ""
			}
			return record[idx]
		})
	}
}
