package config

import (
	"os"
	"strings"
)

// normalize expands paths, applies environment fallbacks, and canonicalizes
// string fields prior to validation.
func (c *Config) normalize() error {
	if key := strings.TrimSpace(os.Getenv("OMDB_API_KEY")); key != "" && strings.TrimSpace(c.OMDB.APIKey) == "" {
		c.OMDB.APIKey = key
	}
	c.OMDB.APIKey = strings.TrimSpace(c.OMDB.APIKey)
	c.OMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.OMDB.BaseURL), "/")

	for _, field := range []*string{
		&c.Paths.Database,
		&c.Paths.CacheFile,
		&c.Paths.MoviesCSV,
		&c.Paths.RatingsCSV,
		&c.Paths.LogDir,
	} {
		expanded, err := expandPath(strings.TrimSpace(*field))
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
