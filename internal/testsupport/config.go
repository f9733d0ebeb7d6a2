package testsupport

import (
	"path/filepath"
	"testing"

	"reelbase/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp paths per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.OMDB.APIKey = "test"
	cfg.Paths.Database = filepath.Join(base, "movies.db")
	cfg.Paths.CacheFile = filepath.Join(base, "omdb_cache.json")
	cfg.Paths.MoviesCSV = filepath.Join(base, "movies.csv")
	cfg.Paths.RatingsCSV = filepath.Join(base, "ratings.csv")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithCallLimit sets the per-run API call budget on the test config.
func WithCallLimit(limit int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OMDB.CallLimit = limit
	}
}

// WithBaseURL points the OMDb client at a test server.
func WithBaseURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.OMDB.BaseURL = url
	}
}
