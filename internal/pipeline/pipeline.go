package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"reelbase/internal/config"
	"reelbase/internal/enrich"
	"reelbase/internal/enrichcache"
	"reelbase/internal/extract"
	"reelbase/internal/genres"
	"reelbase/internal/logging"
	"reelbase/internal/omdb"
	"reelbase/internal/store"
)

// Summary aggregates what one pipeline run did.
type Summary struct {
	RunID          string
	MoviesRead     int
	MoviesDropped  int
	RatingsRead    int
	RatingsDropped int
	Enrichment     enrich.Stats
	Load           store.LoadStats
	Duration       time.Duration
}

// Pipeline runs the extract, enrich, normalize, and load stages as a single
// sequential pass with at most one outstanding API call and one writer on
// the store.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a pipeline from validated configuration.
func New(cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	if cfg == nil {
		return nil, errors.New("pipeline requires config")
	}
	return &Pipeline{cfg: cfg, logger: logger}, nil
}

// Run executes the full pipeline once. Configuration and store-connection
// failures abort before any partial load; input and enrichment errors are
// counted and logged but never fatal.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	started := time.Now()
	runID := uuid.NewString()
	logger := logging.NewComponentLogger(p.logger, "pipeline").
		With(logging.String(logging.FieldRunID, runID))

	summary := Summary{RunID: runID}

	// One writer at a time: a second concurrent run fails fast instead of
	// interleaving writes.
	lock := flock.New(p.cfg.Paths.Database + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return summary, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return summary, errors.New("another reelbase run holds the database lock")
	}
	defer func() { _ = lock.Unlock() }()

	logger.Info("pipeline started",
		logging.String("database", p.cfg.Paths.Database),
		logging.Int("call_limit", p.cfg.OMDB.CallLimit))

	st, err := store.Open(p.cfg)
	if err != nil {
		return summary, fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	moviesResult, err := extract.Movies(p.cfg.Paths.MoviesCSV, p.logger)
	if err != nil {
		return summary, err
	}
	ratingsResult, err := extract.Ratings(p.cfg.Paths.RatingsCSV, p.logger)
	if err != nil {
		return summary, err
	}
	summary.MoviesRead = len(moviesResult.Rows)
	summary.MoviesDropped = moviesResult.Dropped
	summary.RatingsRead = len(ratingsResult.Rows)
	summary.RatingsDropped = ratingsResult.Dropped

	cache, err := enrichcache.Open(p.cfg.Paths.CacheFile, p.logger)
	if err != nil {
		return summary, fmt.Errorf("open enrichment cache: %w", err)
	}

	client, err := omdb.New(
		p.cfg.OMDB.APIKey,
		p.cfg.OMDB.BaseURL,
		omdb.WithTimeout(time.Duration(p.cfg.OMDB.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return summary, fmt.Errorf("build omdb client: %w", err)
	}

	enricher, err := enrich.New(cache, client, omdb.NewLimiter(p.cfg.OMDB.CallLimit), p.logger)
	if err != nil {
		return summary, err
	}

	enriched, enrichStats, err := enricher.Enrich(ctx, moviesResult.Rows)
	if err != nil {
		return summary, fmt.Errorf("enrich movies: %w", err)
	}
	summary.Enrichment = enrichStats

	batch, err := p.buildBatch(ctx, st, enriched, ratingsResult.Rows)
	if err != nil {
		return summary, err
	}

	loadStats, err := st.Load(ctx, batch, p.logger)
	if err != nil {
		return summary, fmt.Errorf("load batch: %w", err)
	}
	summary.Load = loadStats
	summary.Duration = time.Since(started)

	logger.Info("pipeline complete",
		logging.Int("movies", summary.Load.Movies),
		logging.Int("ratings", summary.Load.Ratings),
		logging.Duration("duration", summary.Duration))
	return summary, nil
}

// buildBatch normalizes genres and assembles the load batch, seeding the
// genre registry from the store so surrogate ids stay stable across runs.
func (p *Pipeline) buildBatch(ctx context.Context, st *store.Store, movies []enrich.Movie, ratings []extract.Rating) (store.Batch, error) {
	registry := genres.NewRegistry()
	existing, err := st.GenreIDs(ctx)
	if err != nil {
		return store.Batch{}, fmt.Errorf("load genre ids: %w", err)
	}
	registry.Load(existing)

	var batch store.Batch
	linkSeen := make(map[store.LinkRow]struct{})

	for _, movie := range movies {
		batch.Movies = append(batch.Movies, store.MovieRow{
			ID:             movie.ID,
			Title:          movie.Title,
			Year:           movie.Year,
			IMDbID:         movie.Record.IMDbID,
			Director:       movie.Record.Director,
			Plot:           movie.Record.Plot,
			PosterURL:      movie.Record.PosterURL,
			RuntimeMinutes: movie.Record.RuntimeMinutes,
			BoxOffice:      movie.Record.BoxOffice,
			Metascore:      movie.Record.Metascore,
			IMDbRating:     movie.Record.IMDbRating,
		})
		for _, name := range genres.Split(movie.Genres) {
			link := store.LinkRow{MovieID: movie.ID, GenreID: registry.ID(name)}
			if _, dup := linkSeen[link]; dup {
				continue
			}
			linkSeen[link] = struct{}{}
			batch.Links = append(batch.Links, link)
		}
	}

	batch.Genres = registry.All()

	for _, rating := range ratings {
		batch.Ratings = append(batch.Ratings, store.RatingRow{
			UserID:    rating.UserID,
			MovieID:   rating.MovieID,
			Value:     rating.Value,
			Timestamp: rating.Timestamp,
		})
	}

	return batch, nil
}
