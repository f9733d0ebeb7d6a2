// Package enrichcache provides the persistent cache that maps normalized
// movie identities to OMDb lookup outcomes.
//
// The cache is the single source of truth preventing duplicate network
// calls: a key stored with status ok is never fetched again no matter how
// often the pipeline reruns, and not_found is a stable negative. Transient
// errors stay in the cache but remain eligible for retry on the next run.
//
// # Storage
//
// The cache is a JSON array at a configurable path (default:
// ~/.local/share/reelbase/cache/omdb_cache.json), human-readable and easy to
// inspect or edit. Writes go through a temp file followed by a rename, so a
// crash mid-write never corrupts previously persisted entries.
//
// CLI commands for inspection and management:
//
//	reelbase cache list    # List cached outcomes
//	reelbase cache stats   # Counts by status
//	reelbase cache clear   # Remove all entries
package enrichcache
