// Package scheduler drives scheduled batch runs through a cron expression.
// The production schedule is weekly; cancellation between runs is handled
// by the caller's context, the batch itself is a finite sequence of table
// transforms with nothing to interrupt.
package scheduler

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"

	"github.com/riskworks/stability/internal/risk/pipeline"
)

// Scheduler runs the batch on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler that triggers run on the given standard 5-field
// cron expression.
func New(expr string, run pipeline.Runner, logger *slog.Logger) (*Scheduler, error) {
	c := cron.New()
	_, err := c.AddFunc(expr, func() {
		res, err := run(context.Background())
		if err != nil {
			logger.Error("scheduled run failed", "error", err)
			return
		}
		logger.Info("scheduled run complete", "run_id", res.RunID, "assets", res.AssetCount)
	})
	if err != nil {
		return nil, err
	}
	return &Scheduler{cron: c, logger: logger}, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the schedule, waiting for an in-flight run to finish unless
// the context expires first.
func (s *Scheduler) Stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timeout")
		return ctx.Err()
	}
}
