// Package pipeline drives one full ETL pass: CSV extraction, cache-aware
// OMDb enrichment, genre normalization, and the idempotent load into the
// analytics store.
//
// A run is single-threaded end to end and holds a file lock beside the
// database for its duration, so exactly one writer touches the store at a
// time. Rerunning over unchanged input is a no-op by construction.
package pipeline
