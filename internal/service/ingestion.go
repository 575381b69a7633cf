package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/bbl-multi-builder/internal/config"
	"github.com/yourusername/bbl-multi-builder/internal/datasource"
	"github.com/yourusername/bbl-multi-builder/internal/logger"
	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/models"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

// IngestionReport summarizes one statistics load
type IngestionReport struct {
	StartTime    time.Time
	Duration     time.Duration
	BatterSource string
	BowlerSource string
	Batters      int
	Bowlers      int
}

// IngestionService fetches the batting and bowling tables and builds the statistics table
type IngestionService struct {
	batters datasource.Source
	bowlers datasource.Source
	loader  *stats.Loader
	audit   *logger.AuditLogger
	logger  *logrus.Entry
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(batters, bowlers datasource.Source, loader *stats.Loader, log *logrus.Logger) *IngestionService {
	return &IngestionService{
		batters: batters,
		bowlers: bowlers,
		loader:  loader,
		audit:   logger.NewAuditLogger(log),
		logger:  log.WithField("component", "ingestion"),
	}
}

// NewIngestionServiceFromConfig wires sources and loader from configuration
func NewIngestionServiceFromConfig(ctx context.Context, cfg *config.Config, factory *datasource.Factory, log *logrus.Logger) (*IngestionService, error) {
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	batters, err := factory.NewSource(ctx, cfg.Data.Batters)
	if err != nil {
		return nil, fmt.Errorf("failed to create batters source: %w", err)
	}
	bowlers, err := factory.NewSource(ctx, cfg.Data.Bowlers)
	if err != nil {
		return nil, fmt.Errorf("failed to create bowlers source: %w", err)
	}

	loader := stats.NewLoader(catalog, columns(cfg.Data.BatterColumns), columns(cfg.Data.BowlerColumns))
	return NewIngestionService(batters, bowlers, loader, log), nil
}

// LoadTable fetches both sources and parses them. Any failure is fatal for the caller.
func (s *IngestionService) LoadTable(ctx context.Context) (*stats.Table, *IngestionReport, error) {
	report := &IngestionReport{
		StartTime:    time.Now(),
		BatterSource: s.batters.Name(),
		BowlerSource: s.bowlers.Name(),
	}

	s.logger.WithFields(logrus.Fields{
		"batter_source": report.BatterSource,
		"bowler_source": report.BowlerSource,
	}).Info("Loading statistics")

	var batters, bowlers []byte
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		batters, err = s.fetch(gctx, s.batters)
		return err
	})
	g.Go(func() error {
		var err error
		bowlers, err = s.fetch(gctx, s.bowlers)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, report, err
	}

	table, err := s.loader.Load(bytes.NewReader(batters), bytes.NewReader(bowlers))
	if err != nil {
		s.logger.WithError(err).Error("Statistics failed validation")
		return nil, report, fmt.Errorf("failed to load statistics: %w", err)
	}

	report.Duration = time.Since(report.StartTime)
	report.Batters = table.CountRole(models.RoleBatter)
	report.Bowlers = table.CountRole(models.RoleBowler)

	metrics.RecordStatsLoaded(report.Batters, report.Bowlers, report.Duration.Seconds())
	s.audit.LogStatsTableLoaded(report.BatterSource, report.BowlerSource, report.Batters, report.Bowlers, report.Duration)

	return table, report, nil
}

// fetch reads a whole source so both tables can be transferred concurrently
func (s *IngestionService) fetch(ctx context.Context, src datasource.Source) ([]byte, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, s.fetchFailed(src, fmt.Errorf("failed to open %s: %w", src.Name(), err))
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		err = datasource.NewSourceError(src.Name(), datasource.ErrCodeNetworkError, "read failed", err)
		return nil, s.fetchFailed(src, fmt.Errorf("failed to read %s: %w", src.Name(), err))
	}

	metrics.RecordSourceFetch(sourceScheme(src), nil)
	return data, nil
}

func (s *IngestionService) fetchFailed(src datasource.Source, err error) error {
	metrics.RecordSourceFetch(sourceScheme(src), err)
	s.logger.WithError(err).WithField("source", src.Name()).Error("Failed to fetch statistics source")
	return err
}

func sourceScheme(src datasource.Source) string {
	switch src.(type) {
	case *datasource.FileSource:
		return string(datasource.FileSourceType)
	case *datasource.HTTPSource:
		return string(datasource.HTTPSourceType)
	case *datasource.S3Source:
		return string(datasource.S3SourceType)
	default:
		return "other"
	}
}

func columns(c config.ColumnsConfig) stats.Columns {
	return stats.Columns{
		Team:    c.Team,
		Player:  c.Player,
		Innings: c.Innings,
		Total:   c.Total,
	}
}
