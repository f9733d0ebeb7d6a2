// Package enrich merges raw movie rows with OMDb metadata, consulting the
// persistent cache before spending any of the per-run API call budget.
//
// Outcome handling follows the cache contract: successful lookups and
// explicit not-found responses are cached terminally, transient failures are
// cached as retryable, and budget exhaustion caches nothing at all so prior
// state still applies on the next run.
package enrich
