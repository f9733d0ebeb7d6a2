// Package omdb provides the OMDb API client used for movie enrichment.
//
// Lookups are keyed by clean title and optional release year. The client
// distinguishes three outcomes: a normalized Record, ErrNotFound when the
// API explicitly reports no match, and ordinary errors for transport or
// decoding failures. All "N/A" markers are mapped to nil before a Record
// leaves this package, and numeric-looking fields (runtime, box office,
// scores) are coerced where possible without ever failing the lookup.
//
// The Limiter caps network attempts per run so repeated pipeline runs stay
// inside the API's daily quota.
package omdb
