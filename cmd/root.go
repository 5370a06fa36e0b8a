// Package cmd defines the survivor CLI.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/app"
	"github.com/JakeFAU/survivor-stats/internal/catalog"
	"github.com/JakeFAU/survivor-stats/internal/config"
	"github.com/JakeFAU/survivor-stats/internal/logging"
	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// skipPush marks commands that should not push metrics when they finish.
const skipPush = "skip-metrics-push"

// App is the part of *app.App the commands use.
type App interface {
	Close()
	GetConfig() config.Config
	GetLogger() *zap.Logger
	GetCatalog() catalog.Catalog
	GetRepository() survivor.Repository
	GetBlobStore() survivor.BlobStore
	GetPublisher() survivor.Publisher
	GetIDs() survivor.IDGenerator
	GetClock() survivor.Clock
	GetPageFetcher() survivor.Fetcher
	GetCastFetcher() survivor.Fetcher
}

// newApp is the application factory; tests replace it.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (App, error) {
	return app.New(ctx, cfg, logger)
}

// rootCommand owns the App opened by the persistent pre-run.
type rootCommand struct {
	*cobra.Command
	app App
}

// execute runs the command tree and closes the App on every path; cobra
// skips post-run hooks when RunE fails.
func (r *rootCommand) execute(ctx context.Context) error {
	defer func() {
		if r.app != nil {
			r.app.Close()
			r.app = nil
		}
	}()
	return r.ExecuteContext(ctx)
}

func newRootCmd() *rootCommand {
	var cfgFile string
	root := &rootCommand{}
	cmd := &cobra.Command{
		Use:   "survivor",
		Short: "Scrape and analyze Survivor season data.",
		Long: `survivor scrapes season tables from Wikipedia and cast bios from CBS,
stores them in Postgres or SQLite, and runs the state, age and episode
mention analyses over the stored tables.`,
		SilenceUsage:  true,
		SilenceErrors: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			root.app = appInstance
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			appInstance, ok := cmd.Context().Value(appKey).(App)
			if !ok || appInstance == nil {
				return
			}
			if _, skip := cmd.Annotations[skipPush]; !skip {
				mc := appInstance.GetConfig().Metrics
				if err := metrics.Push(cmd.Context(), mc.PushgatewayURL, mc.Job); err != nil {
					appInstance.GetLogger().Warn("metrics push failed", zap.Error(err))
				}
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); SURVIVOR_* environment variables override it")

	cmd.AddCommand(newScrapeCmd(), newAnalyzeCmd(), newServeCmd())
	root.Command = cmd
	return root
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "survivor: %v\n", err)
		stop()
		os.Exit(1)
	}
}
