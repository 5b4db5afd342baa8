// Package cmd defines the CLI commands for the spiritscraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/spirits-scraper/internal/app"
	"github.com/JakeFAU/spirits-scraper/internal/config"
	"github.com/JakeFAU/spirits-scraper/internal/logging"
	"github.com/JakeFAU/spirits-scraper/internal/metrics"
)

// needsApp marks commands that run against the full service graph.
const needsApp = "needs-app"

type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory. It's a variable so tests can swap in a
// fake search client.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.New(ctx, cfg, logger)
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "spiritscraper",
		Short: "Discovers, cleans and deduplicates spirits product data.",
		Long: `spiritscraper searches the web for spirits products, extracts structured
records from search results and retailer catalog pages, and stores them
without duplicates. Run "serve" for the job API or "scrape" for a one-off run.`,
		SilenceUsage: true,

		// Builds the services once config is known and hands them to the
		// subcommand through its context.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[needsApp] == "" {
				return nil
			}
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)
			metrics.Init()

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(*app.App); ok && appInstance != nil {
				appInstance.Close()
				_ = appInstance.Logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (env vars use the SPIRITS_ prefix)")

	cmd.AddCommand(
		newServeCmd(),
		newScrapeCmd(),
		newMigrateCmd(),
		newDedupeCmd(),
		newBrandCmd(),
		newNormalizeCmd(),
	)
	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
