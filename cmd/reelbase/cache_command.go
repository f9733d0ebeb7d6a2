package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelbase/internal/enrichcache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the enrichment cache",
	}

	cacheCmd.AddCommand(newCacheListCommand(ctx))
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))

	return cacheCmd
}

func newCacheListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached lookup outcomes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			entries := cache.List()
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "Cache is empty")
				return nil
			}

			const stampLayout = "2006-01-02 15:04"
			rows := make([][]string, 0, len(entries))
			for _, entry := range entries {
				year := ""
				if entry.Year != nil {
					year = strconv.Itoa(*entry.Year)
				}
				rows = append(rows, []string{
					entry.Title,
					year,
					string(entry.Status),
					entry.CachedAt.Local().Format(stampLayout),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"Title", "Year", "Status", "Cached"}, rows, []int{1}))
			return nil
		},
	}
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache entry counts by status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}

			stats := cache.Stats()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Entries:   %d\n", cache.Count())
			fmt.Fprintf(out, "Ok:        %d\n", stats[enrichcache.StatusOK])
			fmt.Fprintf(out, "Not found: %d\n", stats[enrichcache.StatusNotFound])
			fmt.Fprintf(out, "Errors:    %d (retried next run)\n", stats[enrichcache.StatusError])
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove all cached lookup outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("clearing discards all cached API results; re-run with --yes to confirm")
			}
			cache, err := ctx.openCache()
			if err != nil {
				return err
			}
			count := cache.Count()
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d cache entries\n", count)
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm clearing the cache")
	return cmd
}
