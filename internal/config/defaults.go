package config

const (
	defaultDatabase       = "~/.local/share/reelbase/movies.db"
	defaultCacheFile      = "~/.local/share/reelbase/cache/omdb_cache.json"
	defaultMoviesCSV      = "movies.csv"
	defaultRatingsCSV     = "ratings.csv"
	defaultLogDir         = "~/.local/share/reelbase/logs"
	defaultOMDBBaseURL    = "https://www.omdbapi.com/"
	defaultCallLimit      = 1000
	defaultTimeoutSeconds = 10
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			Database:   defaultDatabase,
			CacheFile:  defaultCacheFile,
			MoviesCSV:  defaultMoviesCSV,
			RatingsCSV: defaultRatingsCSV,
			LogDir:     defaultLogDir,
		},
		OMDB: OMDB{
			BaseURL:        defaultOMDBBaseURL,
			CallLimit:      defaultCallLimit,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
