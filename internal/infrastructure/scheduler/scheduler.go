// Package scheduler drives the batch refresher on a fixed interval.
package scheduler

import (
	"context"
	"sync"
	"time"

	"rates-engine/internal/application"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Refresher interface {
	RefreshAllRates(ctx context.Context, bases []string) application.RefreshStats
}

type Scheduler struct {
	refresher Refresher
	bases     []string
	interval  time.Duration
	log       *zap.Logger

	mu    sync.Mutex
	sched gocron.Scheduler
}

func New(refresher Refresher, bases []string, interval time.Duration, log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{refresher: refresher, bases: bases, interval: interval, log: log}
}

func (s *Scheduler) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.sched = sched
	s.mu.Unlock()

	job := func(jobCtx context.Context) {
		runID := uuid.NewString()
		stats := s.refresher.RefreshAllRates(jobCtx, s.bases)
		s.log.Info("scheduled_refresh_done",
			zap.String("run_id", runID),
			zap.Int("success", stats.Success),
			zap.Int("failed", stats.Failed),
			zap.Int("skipped", stats.Skipped),
		)
	}

	// Singleton mode keeps overlapping runs from racing each other for API
	// quota; an overlap is rescheduled, not queued.
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(job),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	sched.Start()

	go func() {
		<-ctx.Done()
		if sdErr := s.Shutdown(); sdErr != nil {
			s.log.Error("scheduler shutdown", zap.Error(sdErr))
		}
	}()
	return nil
}

func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sched == nil {
		return nil
	}
	err := s.sched.Shutdown()
	s.sched = nil
	return err
}
