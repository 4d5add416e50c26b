package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"popularmovies/api"
	"popularmovies/handlers"
	"popularmovies/utils"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the manifest and catalog over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr != "" {
				a.settings.Server.Addr = addr
			}
			return serve(ctx, a)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	s := a.settings
	if !a.client.IsConfigured() {
		log.Printf("[catalog] TMDB_API_KEY is not set; catalog requests will return empty pages")
	}

	limiter := api.NewPerMinuteLimiter(s.Server.RateLimitPerMinute, s.Server.RateLimitBurst)
	defer limiter.Stop()

	router := utils.NewRouter()
	utils.MountAddon(router, utils.AddonRoutes{
		Catalog:  handlers.NewCatalogHandler(a.catalog),
		Manifest: handlers.NewManifestHandler(s.Addon.ID, s.Addon.Name, s.Addon.Version),
		Limiter:  limiter,
	})

	srv := &http.Server{
		Addr:              s.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// A cold catalog request may page through several upstream listings.
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[http] listening on %s (cache backend %s)", s.Server.Addr, a.store.Backend())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.Server.Addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("[http] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
