package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"reelbase/internal/enrichcache"
	"reelbase/internal/extract"
	"reelbase/internal/logging"
	"reelbase/internal/omdb"
	"reelbase/internal/titles"
)

// progressEvery controls how often bulk enrichment progress is logged.
const progressEvery = 100

// Movie is a raw movie merged with whatever enrichment fields could be
// resolved. Unresolved fields stay nil in the embedded record.
type Movie struct {
	ID     int64
	Title  string
	Year   *int
	Genres string
	Record omdb.Record
}

// Stats summarizes one enrichment pass.
type Stats struct {
	CacheHits     int
	Calls         int
	NotFound      int
	Errors        int
	SkippedBudget int
}

// Enricher walks raw movies, consulting the cache before spending any of the
// API budget. Calls are strictly serialized; the cache and limiter are shared
// mutable state with no concurrency protection by design.
type Enricher struct {
	cache   *enrichcache.Cache
	client  omdb.Lookuper
	limiter *omdb.Limiter
	logger  *slog.Logger
}

// New constructs an enricher.
func New(cache *enrichcache.Cache, client omdb.Lookuper, limiter *omdb.Limiter, logger *slog.Logger) (*Enricher, error) {
	if cache == nil || client == nil || limiter == nil {
		return nil, errors.New("enricher requires cache, client, and limiter")
	}
	return &Enricher{
		cache:   cache,
		client:  client,
		limiter: limiter,
		logger:  logging.NewComponentLogger(logger, "enricher"),
	}, nil
}

// Enrich resolves metadata for every raw movie. Every input row produces an
// output row; rows whose lookup failed or was skipped simply carry nil
// fields. The cache is flushed before returning so a later crash cannot
// discard this run's outcomes.
func (e *Enricher) Enrich(ctx context.Context, raw []extract.Movie) ([]Movie, Stats, error) {
	var stats Stats
	budgetLogged := false

	out := make([]Movie, 0, len(raw))
	for i, movie := range raw {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}
		if i > 0 && i%progressEvery == 0 {
			e.logger.Info("enrichment progress",
				logging.Int("processed", i),
				logging.Int("total", len(raw)),
				logging.Int("api_calls", stats.Calls))
		}

		title, year := titles.Parse(movie.Title)
		enriched := Movie{
			ID:     movie.ID,
			Title:  title,
			Year:   year,
			Genres: movie.Genres,
		}
		key := titles.Key(title, year)

		if entry, found := e.cache.Lookup(key); found && !e.cache.NeedsLookup(key) {
			if entry.Status == enrichcache.StatusOK {
				enriched.Record = entry.Record
				stats.CacheHits++
			}
			// not_found stays a quiet negative: the movie loads without
			// enrichment fields and no budget is spent.
			out = append(out, enriched)
			continue
		}

		if e.limiter.Exhausted() {
			stats.SkippedBudget++
			if !budgetLogged {
				e.logger.Warn("api call budget exhausted, skipping remaining lookups",
					logging.Int("budget", e.limiter.Used()),
					logging.Int("remaining_movies", len(raw)-i))
				budgetLogged = true
			}
			out = append(out, enriched)
			continue
		}

		record, err := e.lookup(ctx, title, year)
		switch {
		case err == nil:
			stats.Calls++
			enriched.Record = *record
			e.storeOutcome(enrichcache.Entry{
				Key:    key,
				Title:  title,
				Year:   year,
				Status: enrichcache.StatusOK,
				Record: *record,
			})
		case errors.Is(err, omdb.ErrNotFound):
			stats.Calls++
			stats.NotFound++
			e.logger.Debug("no match upstream",
				logging.String(logging.FieldMovieKey, key))
			e.storeOutcome(enrichcache.Entry{
				Key:    key,
				Title:  title,
				Year:   year,
				Status: enrichcache.StatusNotFound,
				Reason: err.Error(),
			})
		case errors.Is(err, omdb.ErrBudgetExhausted):
			// Raced the budget check; nothing was attempted, so nothing is
			// cached and the movie remains eligible next run.
			stats.SkippedBudget++
		default:
			stats.Calls++
			stats.Errors++
			e.logger.Warn("lookup failed, will retry next run",
				logging.String(logging.FieldMovieKey, key),
				logging.Error(err))
			e.storeOutcome(enrichcache.Entry{
				Key:    key,
				Title:  title,
				Year:   year,
				Status: enrichcache.StatusError,
				Reason: err.Error(),
			})
		}

		out = append(out, enriched)
	}

	if err := e.cache.Flush(); err != nil {
		return nil, stats, fmt.Errorf("flush enrichment cache: %w", err)
	}

	e.logger.Info("enrichment complete",
		logging.Int("movies", len(out)),
		logging.Int("cache_hits", stats.CacheHits),
		logging.Int("api_calls", stats.Calls),
		logging.Int("not_found", stats.NotFound),
		logging.Int("errors", stats.Errors),
		logging.Int("skipped_budget", stats.SkippedBudget))
	return out, stats, nil
}

// lookup performs exactly one budgeted network attempt.
func (e *Enricher) lookup(ctx context.Context, title string, year *int) (*omdb.Record, error) {
	if err := e.limiter.Acquire(); err != nil {
		return nil, err
	}
	return e.client.Lookup(ctx, title, year)
}

// storeOutcome persists a lookup outcome; persistence failures degrade to a
// warning so one bad write cannot abort the run.
func (e *Enricher) storeOutcome(entry enrichcache.Entry) {
	entry.CachedAt = time.Now().UTC()
	if err := e.cache.Store(entry); err != nil {
		e.logger.Warn("failed to persist cache entry",
			logging.String(logging.FieldMovieKey, entry.Key),
			logging.Error(err))
	}
}
