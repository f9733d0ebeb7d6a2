package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reelbase/internal/pipeline"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full extract, enrich, and load pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, closeLogs, err := ctx.runLogger()
			if err != nil {
				return err
			}
			defer closeLogs()

			p, err := pipeline.New(cfg, logger)
			if err != nil {
				return err
			}
			summary, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}

			printSummary(cmd, summary)
			return nil
		},
	}
}

func printSummary(cmd *cobra.Command, summary pipeline.Summary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Movies:     %d read, %d dropped\n", summary.MoviesRead, summary.MoviesDropped)
	fmt.Fprintf(out, "Ratings:    %d read, %d dropped\n", summary.RatingsRead, summary.RatingsDropped)
	fmt.Fprintf(out, "Enrichment: %d cache hits, %d API calls, %d not found, %d errors, %d skipped on budget\n",
		summary.Enrichment.CacheHits,
		summary.Enrichment.Calls,
		summary.Enrichment.NotFound,
		summary.Enrichment.Errors,
		summary.Enrichment.SkippedBudget,
	)
	fmt.Fprintf(out, "Loaded:     %d movies, %d genres, %d genre links, %d ratings\n",
		summary.Load.Movies,
		summary.Load.Genres,
		summary.Load.Links,
		summary.Load.Ratings,
	)
	if summary.Load.FailedLinks > 0 || summary.Load.FailedRatings > 0 {
		fmt.Fprintf(out, "Skipped:    %d genre links, %d ratings (missing referenced rows)\n",
			summary.Load.FailedLinks, summary.Load.FailedRatings)
	}
}
