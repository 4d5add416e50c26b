package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"popularmovies/services/tmdb"
)

func newWarmCmd() *cobra.Command {
	var depth int

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Fill the catalog cache ahead of traffic",
		Long: `Runs catalog refreshes at increasing offsets until the cache holds at
least --depth movies or a refresh stops adding new ones.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if depth <= 0 {
				return fmt.Errorf("--depth must be positive, got %d", depth)
			}
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.client.IsConfigured() {
				return tmdb.ErrNotConfigured
			}

			count, err := a.catalog.Warm(ctx, depth)
			if err != nil {
				return fmt.Errorf("warm cache: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cache holds %d movies\n", count)
			return nil
		},
	}

	cmd.Flags().IntVar(&depth, "depth", 100, "Minimum number of cached movies")
	return cmd
}
