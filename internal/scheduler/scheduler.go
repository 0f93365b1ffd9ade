package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

var ErrNoJob = errors.New("scheduler job not set")

// Scheduler runs one job on a cron spec, e.g. "@every 30s" or "*/5 * * * *".
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	spec   string
	job    func(ctx context.Context) error
}

func New(spec string, job func(ctx context.Context) error) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		ctx:    ctx,
		cancel: cancel,
		spec:   spec,
		job:    job,
	}
}

func (s *Scheduler) Start() error {
	if s.job == nil {
		return ErrNoJob
	}

	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.job(s.ctx); err != nil {
			slog.Error("scheduled job failed", "spec", s.spec, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	slog.Info("scheduler started", "spec", s.spec)
	return nil
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		ctx := s.cron.Stop()
		<-ctx.Done()
	}
	if s.cancel != nil {
		s.cancel()
	}
	slog.Info("scheduler stopped")
}
