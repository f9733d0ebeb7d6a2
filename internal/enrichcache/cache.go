package enrichcache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"reelbase/internal/logging"
	"reelbase/internal/omdb"
)

// Status records the outcome of the last lookup attempt for a key.
type Status string

const (
	// StatusOK marks a successful lookup; the record is never re-fetched.
	StatusOK Status = "ok"
	// StatusNotFound marks a stable negative: the API reported no match.
	StatusNotFound Status = "not_found"
	// StatusError marks a transient failure; the key stays eligible for retry.
	StatusError Status = "error"
)

// Entry represents one cached lookup outcome keyed by normalized movie identity.
type Entry struct {
	Key      string      `json:"key"`
	Title    string      `json:"title"`
	Year     *int        `json:"year"`
	Status   Status      `json:"status"`
	Record   omdb.Record `json:"record"`
	Reason   string      `json:"reason,omitempty"`
	CachedAt time.Time   `json:"cached_at"`
}

// Cache provides access to the persistent enrichment cache. It is loaded
// fully into memory at construction and persisted atomically on every Store,
// so a crash never leaves a torn row visible to the next run.
type Cache struct {
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
	dirty  bool
	entries map[string]Entry
}

// Open loads the cache at path. A missing file is an empty cache, not an
// error; a corrupt file is.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("cache path required")
	}
	logger = logging.NewComponentLogger(logger, "enrichcache")

	c := &Cache{
		path:    path,
		logger:  logger,
		entries: make(map[string]Entry),
	}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Lookup returns the cache entry for the given key if present.
func (c *Cache) Lookup(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[key]
	return entry, found
}

// NeedsLookup reports whether a key should be fetched from the API: absent
// keys and transient errors are eligible, ok and not_found are terminal.
func (c *Cache) NeedsLookup(key string) bool {
	entry, found := c.Lookup(key)
	if !found {
		return true
	}
	return entry.Status == StatusError
}

// Store adds or overwrites an entry and persists the cache to disk.
func (c *Cache) Store(entry Entry) error {
	entry.Key = strings.TrimSpace(entry.Key)
	if entry.Key == "" {
		return errors.New("cache key cannot be empty")
	}
	if entry.CachedAt.IsZero() {
		entry.CachedAt = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if prior, exists := c.entries[entry.Key]; exists && prior.Status == StatusOK {
		// Successful records are immutable; re-attempts only replace
		// retryable outcomes.
		return nil
	}
	c.entries[entry.Key] = entry
	c.dirty = true

	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}

	c.logger.Debug("cached lookup outcome",
		logging.String(logging.FieldMovieKey, entry.Key),
		logging.String("status", string(entry.Status)))
	return nil
}

// Flush persists the in-memory cache if it has unsaved changes.
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dirty {
		return nil
	}
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	return nil
}

// List returns all cache entries sorted by CachedAt descending (newest first).
func (c *Cache) List() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CachedAt.Equal(entries[j].CachedAt) {
			return entries[i].Key < entries[j].Key
		}
		return entries[i].CachedAt.After(entries[j].CachedAt)
	})
	return entries
}

// Stats counts entries grouped by status.
func (c *Cache) Stats() map[Status]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[Status]int, 3)
	for _, entry := range c.entries {
		stats[entry.Status]++
	}
	return stats
}

// Count returns the number of entries in the cache.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear removes all entries and persists the empty cache.
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]Entry)
	c.dirty = true
	if err := c.save(); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.logger.Debug("cleared enrichment cache")
	return nil
}

func (c *Cache) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read cache file: %w", err)
	}
	if len(data) == 0 {
		return nil
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse cache file: %w", err)
	}

	c.entries = make(map[string]Entry, len(entries))
	for _, entry := range entries {
		if strings.TrimSpace(entry.Key) != "" {
			c.entries[entry.Key] = entry
		}
	}

	c.logger.Debug("loaded enrichment cache",
		logging.Int("entry_count", len(c.entries)),
		logging.String("path", c.path))
	return nil
}

// save writes the cache to disk atomically (write-new-then-replace).
func (c *Cache) save() error {
	entries := make([]Entry, 0, len(c.entries))
	for _, entry := range c.entries {
		entries = append(entries, entry)
	}

	// Sort for deterministic, diff-friendly output
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath) // cleanup on failure
		return fmt.Errorf("rename temp file: %w", err)
	}

	c.dirty = false
	return nil
}
