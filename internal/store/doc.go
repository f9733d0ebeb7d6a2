// Package store persists enriched movies, genres, genre links, and ratings
// in SQLite and answers the canned analytical queries.
//
// All writes are upserts by natural key (movie id, genre name, the
// movie↔genre pair, and (user, movie, timestamp) for ratings), so reloading
// unchanged input is a no-op. Inserts are sequenced parents-first to satisfy
// foreign keys; a record that fails aborts only its own insert sequence.
//
// The schema is applied with CREATE IF NOT EXISTS on every Open; there is no
// migration tooling by design.
package store
