package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelbase/internal/store"
)

func newQueryCommand(ctx *commandContext) *cobra.Command {
	queryCmd := &cobra.Command{
		Use:   "query",
		Short: "Run canned analytics against the loaded store",
		RunE: func(cmd *cobra.Command, args []string) error {
			// With no subcommand, run the whole canned set with defaults.
			return runAllQueries(cmd, ctx)
		},
	}

	queryCmd.AddCommand(newTopMovieCommand(ctx))
	queryCmd.AddCommand(newTopGenresCommand(ctx))
	queryCmd.AddCommand(newDirectorCommand(ctx))
	queryCmd.AddCommand(newYearlyCommand(ctx))

	return queryCmd
}

const (
	defaultMinRatings = 10
	defaultMinAvg     = 4.0
	defaultGenreLimit = 10
	defaultMinMovies  = 5
)

func runAllQueries(cmd *cobra.Command, ctx *commandContext) error {
	st, err := ctx.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	out := cmd.OutOrStdout()

	top, ok, err := st.TopRatedMovie(cmd.Context(), defaultMinRatings)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Top rated movie (>= %d ratings):\n", defaultMinRatings)
	printTopMovie(cmd, top, ok)

	genres, err := st.TopGenres(cmd.Context(), defaultMinAvg, defaultGenreLimit)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nTop genres (average >= %.1f):\n", defaultMinAvg)
	printGenres(cmd, genres)

	director, ok, err := st.MostProlificDirector(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "\nMost prolific director:")
	printDirector(cmd, director, ok)

	years, err := st.YearlyAverages(cmd.Context(), defaultMinMovies)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nYearly averages (>= %d movies):\n", defaultMinMovies)
	printYears(cmd, years)

	return nil
}

func newTopMovieCommand(ctx *commandContext) *cobra.Command {
	var minRatings int64

	cmd := &cobra.Command{
		Use:   "top-movie",
		Short: "Highest-rated movie above a rating-count threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			top, ok, err := st.TopRatedMovie(cmd.Context(), minRatings)
			if err != nil {
				return err
			}
			printTopMovie(cmd, top, ok)
			return nil
		},
	}

	cmd.Flags().Int64Var(&minRatings, "min-ratings", defaultMinRatings, "Minimum number of ratings a movie must have")
	return cmd
}

func newTopGenresCommand(ctx *commandContext) *cobra.Command {
	var minAvg float64
	var limit int64

	cmd := &cobra.Command{
		Use:   "top-genres",
		Short: "Genres ranked by average rating above a threshold",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			results, err := st.TopGenres(cmd.Context(), minAvg, limit)
			if err != nil {
				return err
			}
			printGenres(cmd, results)
			return nil
		},
	}

	cmd.Flags().Float64Var(&minAvg, "min-avg", defaultMinAvg, "Minimum average rating for a genre to qualify")
	cmd.Flags().Int64Var(&limit, "limit", defaultGenreLimit, "Maximum number of genres to show")
	return cmd
}

func newDirectorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "director",
		Short: "Director with the most movies in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			director, ok, err := st.MostProlificDirector(cmd.Context())
			if err != nil {
				return err
			}
			printDirector(cmd, director, ok)
			return nil
		},
	}
}

func newYearlyCommand(ctx *commandContext) *cobra.Command {
	var minMovies int64

	cmd := &cobra.Command{
		Use:   "yearly",
		Short: "Average rating per release year",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			results, err := st.YearlyAverages(cmd.Context(), minMovies)
			if err != nil {
				return err
			}
			printYears(cmd, results)
			return nil
		},
	}

	cmd.Flags().Int64Var(&minMovies, "min-movies", defaultMinMovies, "Minimum movies released in a year to qualify")
	return cmd
}

func printTopMovie(cmd *cobra.Command, top store.TopMovie, ok bool) {
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "No movie meets the rating-count threshold")
		return
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Avg Rating", "Ratings"},
		[][]string{{top.Title, formatAvg(top.AvgRating), strconv.FormatInt(top.RatingCount, 10)}},
		[]int{1, 2},
	))
}

func printGenres(cmd *cobra.Command, results []store.GenreRating) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No genre meets the average-rating threshold")
		return
	}
	rows := make([][]string, 0, len(results))
	for _, entry := range results {
		rows = append(rows, []string{entry.Genre, formatAvg(entry.AvgRating), strconv.FormatInt(entry.RatingCount, 10)})
	}
	fmt.Fprintln(out, renderTable([]string{"Genre", "Avg Rating", "Ratings"}, rows, []int{1, 2}))
}

func printDirector(cmd *cobra.Command, director store.DirectorCount, ok bool) {
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintln(out, "No movie in the store has a known director")
		return
	}
	fmt.Fprintf(out, "%s (%d movies)\n", director.Director, director.MovieCount)
}

func printYears(cmd *cobra.Command, results []store.YearStats) {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No year meets the movie-count threshold")
		return
	}
	rows := make([][]string, 0, len(results))
	for _, entry := range results {
		rows = append(rows, []string{strconv.Itoa(entry.Year), formatAvg(entry.AvgRating), strconv.FormatInt(entry.MovieCount, 10)})
	}
	fmt.Fprintln(out, renderTable([]string{"Year", "Avg Rating", "Movies"}, rows, []int{1, 2}))
}

func formatAvg(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
