package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"popularmovies/config"
	"popularmovies/handlers"
	"popularmovies/internal/logging"
	"popularmovies/services/cachestore"
	"popularmovies/services/catalog"
	"popularmovies/services/tmdb"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "popularmovies",
	Short:         "Stremio catalog add-on serving popular movies from TMDB",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML, TOML or JSON config file")
	rootCmd.Version = handlers.BackendVersion()
	rootCmd.SetVersionTemplate("popularmovies {{.Version}}\n")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newWarmCmd())
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	settings config.Settings
	store    *cachestore.Store
	client   *tmdb.Client
	catalog  *catalog.Service
	logs     io.Closer
}

func newApp(ctx context.Context) (*app, error) {
	settings, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logs, err := logging.Setup(logging.Options{
		File:       settings.Logging.File,
		MaxSizeMB:  settings.Logging.MaxSizeMB,
		MaxBackups: settings.Logging.MaxBackups,
		MaxAgeDays: settings.Logging.MaxAgeDays,
		Compress:   settings.Logging.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	store, err := cachestore.Open(ctx, settings.StoreOptions())
	if err != nil {
		logs.Close()
		return nil, fmt.Errorf("open cache store: %w", err)
	}

	client := tmdb.NewClient(settings.TMDBOptions())
	return &app{
		settings: settings,
		store:    store,
		client:   client,
		catalog:  catalog.NewService(settings.CatalogConfig(), store, client),
		logs:     logs,
	}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.logs.Close()
}
