package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Runner is one digest pipeline invocation.
type Runner func(ctx context.Context) error

// Scheduler runs a digest immediately and then on a fixed interval until the
// context is cancelled. An interval of zero means run once and return.
type Scheduler struct {
	Every  time.Duration
	Run    Runner
	Logger *slog.Logger
}

func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.runOnce(ctx); err != nil && s.Every == 0 {
		return err
	}
	if s.Every == 0 {
		return nil
	}

	ticker := time.NewTicker(s.Every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	err := s.Run(ctx)
	if err != nil && s.Logger != nil {
		s.Logger.Error("digest run failed", "error", err)
	}
	return err
}
