// Command reelbase is the CLI entry point for the movie ratings ETL: it runs
// the pipeline, answers canned analytics queries against the loaded store,
// and manages the enrichment cache and configuration.
package main
