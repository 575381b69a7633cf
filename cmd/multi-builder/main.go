// Package main provides the entry point for the BBL multi builder API and CLI.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/bbl-multi-builder/internal/config"
	"github.com/yourusername/bbl-multi-builder/internal/datasource"
	"github.com/yourusername/bbl-multi-builder/internal/logger"
	"github.com/yourusername/bbl-multi-builder/internal/multibet"
	"github.com/yourusername/bbl-multi-builder/internal/recommend"
	"github.com/yourusername/bbl-multi-builder/internal/service"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configFile string
	jsonOutput bool
	verbose    bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultConfigPath, "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at the configured level for query commands")

	rootCmd.AddCommand(serveCmd, teamsCmd, matchesCmd, playersCmd, recommendCmd, picksCmd, multiCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:           "multi-builder",
	Short:         "BBL player market recommendations and multi bet builder",
	Long:          `Ranks Big Bash League players per betting market from historical statistics and combines selections into multi bets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("multi-builder %s (commit %s, built %s)\n", Version, GitCommit, BuildDate)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// application holds everything built from configuration
type application struct {
	cfg       *config.Config
	log       *logrus.Logger
	ingestion *service.IngestionService
	table     *stats.Table
	engine    recommend.Recommender
	facade    *service.QueryFacade
}

// bootstrap loads configuration and statistics. Statistics that fail
// validation abort startup.
func bootstrap(ctx context.Context, quiet bool) (*application, error) {
	cfg, err := config.LoadWithDefaults(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	if quiet && !verbose {
		appLog.SetLevel(logrus.WarnLevel)
	}
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
		"version":     Version,
	}).Info("BBL Multi Builder starting")

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = cfg.DataTimeout()
	factory := datasource.NewFactory(appLog).WithHTTPConfig(httpCfg)

	ingestion, err := service.NewIngestionServiceFromConfig(ctx, cfg, factory, appLog)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, 2*cfg.DataTimeout())
	defer cancel()
	table, _, err := ingestion.LoadTable(loadCtx)
	if err != nil {
		return nil, err
	}

	engine := newEngine(cfg, table)
	facade := service.NewQueryFacade(table, engine, multibet.NewBuilder(table), cfg.FixtureList(), appLog).
		WithMatchLimit(cfg.Engine.MatchRecommendationLimit)

	return &application{
		cfg:       cfg,
		log:       appLog,
		ingestion: ingestion,
		table:     table,
		engine:    engine,
		facade:    facade,
	}, nil
}

func newEngine(cfg *config.Config, table *stats.Table) recommend.Recommender {
	if cfg.Engine.CacheEnabled && cfg.CacheTTL() > 0 {
		return recommend.NewCachedEngine(recommend.NewEngine(table), cfg.CacheTTL())
	}
	return recommend.NewEngine(table)
}

// reload publishes a refreshed table behind a new engine and cache
func (a *application) reload(table *stats.Table) {
	engine := newEngine(a.cfg, table)
	a.facade.Replace(table, engine, multibet.NewBuilder(table))
	a.table = table
	a.engine = engine
}
