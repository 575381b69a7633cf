// Package scheduler reloads the statistics table on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/bbl-multi-builder/internal/metrics"
	"github.com/yourusername/bbl-multi-builder/internal/service"
	"github.com/yourusername/bbl-multi-builder/internal/stats"
)

// TableLoader produces a freshly parsed statistics table
type TableLoader interface {
	LoadTable(ctx context.Context) (*stats.Table, *service.IngestionReport, error)
}

// ApplyFunc publishes a reloaded table
type ApplyFunc func(table *stats.Table)

// Scheduler manages scheduled statistics refreshes
type Scheduler struct {
	cron            *cron.Cron
	loader          TableLoader
	apply           ApplyFunc
	logger          *logrus.Entry
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(loader TableLoader, apply ApplyFunc, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		loader:          loader,
		apply:           apply,
		logger:          log.WithField("component", "scheduler"),
		jobIDs:          make([]cron.EntryID, 0),
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleRefresh adds a statistics reload for a standard cron expression or descriptor such as "@every 1h"
func (s *Scheduler) ScheduleRefresh(cronExpression string, timeout time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := s.Refresh(ctx); err != nil {
			s.logger.WithError(err).Warn("Scheduled statistics refresh failed, keeping previous table")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithField("schedule", cronExpression).Info("Scheduled statistics refresh")

	return nil
}

// Refresh loads the table once and publishes it. A failed load leaves the current table in place.
func (s *Scheduler) Refresh(ctx context.Context) error {
	table, report, err := s.loader.LoadTable(ctx)
	metrics.RecordStatsRefresh(err)
	if err != nil {
		return err
	}

	s.apply(table)
	s.logger.WithFields(logrus.Fields{
		"batters":  report.Batters,
		"bowlers":  report.Bowlers,
		"duration": report.Duration.String(),
	}).Info("Statistics table refreshed")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop waits for running jobs up to the graceful timeout
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.isRunning = false
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-time.After(s.gracefulTimeout):
		return fmt.Errorf("scheduler stop timed out after %s", s.gracefulTimeout)
	}
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled refresh, or zero when stopped
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			nextTime := entry.Next
			if nextRun.IsZero() || nextTime.Before(nextRun) {
				nextRun = nextTime
			}
		}
	}

	return nextRun
}
