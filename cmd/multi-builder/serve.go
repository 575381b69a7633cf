package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/bbl-multi-builder/internal/health"
	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/recommend"
	"github.com/yourusername/bbl-multi-builder/internal/scheduler"
	"github.com/yourusername/bbl-multi-builder/internal/server"
)

var servePort int

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Override the configured server port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load statistics and serve the JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		app, err := bootstrap(ctx, false)
		if err != nil {
			return err
		}
		cfg := app.cfg

		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
		}

		healthHandler := health.NewHandler(health.Config{
			ServiceName: cfg.App.Name,
			Version:     cfg.App.Version,
			Reporter:    app.facade,
			Logger:      app.log,
		})

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		srv := server.NewServer(server.Config{
			Port:                 port,
			Version:              cfg.App.Version,
			CORSOrigins:          cfg.Server.CORSOrigins,
			CORSAllowCredentials: cfg.Server.CORSAllowCredentials,
			RateLimitPerSecond:   cfg.Server.RateLimitPerSecond,
			RateLimitBurst:       cfg.Server.RateLimitBurst,
			ReadTimeout:          time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
			WriteTimeout:         time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
			MetricsEnabled:       cfg.Metrics.Enabled,
			MetricsPath:          cfg.Metrics.Path,
		}, app.facade, healthHandler, app.log)

		var refresher *scheduler.Scheduler
		if cfg.Data.RefreshSchedule != "" {
			refresher = scheduler.NewScheduler(app.ingestion, app.reload, app.log)
			if err := refresher.ScheduleRefresh(cfg.Data.RefreshSchedule, 2*cfg.DataTimeout()); err != nil {
				return err
			}
			if err := refresher.Start(); err != nil {
				return err
			}
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()
		healthHandler.SetReady(true)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			app.log.Info("Shutdown signal received")
		}

		healthHandler.SetReady(false)
		if refresher != nil {
			if err := refresher.Stop(); err != nil {
				app.log.WithError(err).Warn("Scheduler did not stop cleanly")
			}
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.log.WithError(err).Error("Graceful shutdown failed")
			return err
		}

		if cached, ok := app.engine.(*recommend.CachedEngine); ok {
			hits, misses, ratio := cached.Stats()
			app.log.WithField("hits", hits).WithField("misses", misses).WithField("hit_ratio", ratio).
				Info("Recommendation cache statistics")
		}
		app.log.Info("Shutdown complete")
		return nil
	},
}
