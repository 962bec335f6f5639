// Package scheduler runs the background refresh job: a cron-driven re-fetch
// of every polygon's series, aligned with the archive's hourly publication
// cadence so overlay colors track newly published rows without user action.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher abstracts the overlay service's bulk refresh.
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// jobTimeout caps a single scheduled refresh pass.
const jobTimeout = 10 * time.Minute

// RefreshScheduler owns the cron runner for the periodic series refresh.
type RefreshScheduler struct {
	cron     *cron.Cron
	refresh  Refresher
	logger   *slog.Logger
	cronSpec string
}

// New creates a RefreshScheduler with the given cron spec (standard 5-field
// syntax, e.g. "0 * * * *" for the top of every hour).
func New(refresh Refresher, cronSpec string, logger *slog.Logger) *RefreshScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefreshScheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		refresh:  refresh,
		logger:   logger,
		cronSpec: cronSpec,
	}
}

// Start registers the refresh job and starts the cron runner.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.cronSpec, s.run)
	if err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("refresh scheduler started", "spec", s.cronSpec)
	return nil
}

// Stop halts the cron runner and waits for a running job to finish.
func (s *RefreshScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("refresh scheduler stopped")
}

func (s *RefreshScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	s.refresh.RefreshAll(ctx)
	s.logger.Info("scheduled refresh complete", "duration", time.Since(start))
}
