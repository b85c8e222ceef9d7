// Package scheduler runs the periodic maintenance jobs: the queue expiry
// sweep and the inactivity rating decay.
package scheduler

import (
	"context"
	"fmt"
	"ranked-typing/internal/config"
	"ranked-typing/internal/constants"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

type QueueSweeper interface {
	SweepExpired() int
}

type Decayer interface {
	Apply(ctx context.Context, now time.Time) (int64, error)
}

type Scheduler struct {
	sched  gocron.Scheduler
	queue  QueueSweeper
	decay  Decayer
	cfg    *config.Config
	logger zerolog.Logger
}

func New(cfg *config.Config, queue QueueSweeper, decay Decayer, logger zerolog.Logger) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Scheduler{
		sched:  sched,
		queue:  queue,
		decay:  decay,
		cfg:    cfg,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.QueueSweepInterval),
		gocron.NewTask(s.sweepQueue),
		gocron.WithName("queue-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule queue sweep: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cfg.DecayInterval),
		gocron.NewTask(s.applyDecay),
		gocron.WithName("rating-decay"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule rating decay: %w", err)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.sched.Start()
	s.logger.Info().
		Dur("queue_sweep_interval", s.cfg.QueueSweepInterval).
		Dur("decay_interval", s.cfg.DecayInterval).
		Msg("scheduler started")
}

func (s *Scheduler) Shutdown() error {
	if err := s.sched.Shutdown(); err != nil {
		s.logger.Error().Err(err).Msg("scheduler shutdown failed")
		return err
	}
	s.logger.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) sweepQueue() {
	if n := s.queue.SweepExpired(); n > 0 {
		s.logger.Debug().Int("expired", n).Msg("queue sweep finished")
	}
}

func (s *Scheduler) applyDecay() {
	ctx, cancel := context.WithTimeout(context.Background(), constants.SweepTimeout)
	defer cancel()

	if _, err := s.decay.Apply(ctx, time.Now()); err != nil {
		s.logger.Error().Err(err).Msg("rating decay job failed")
	}
}
