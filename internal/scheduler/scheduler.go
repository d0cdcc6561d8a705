package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one scheduled unit of work, typically a report run.
type Job func(ctx context.Context) error

// Scheduler re-runs a job on a cron schedule.
type Scheduler struct {
	Cron *cron.Cron
	Job  Job
	Log  zerolog.Logger
	Ctx  context.Context

	mu   sync.Mutex     // serializes RunNow with scheduled runs
	busy sync.WaitGroup // runs started outside cron
}

// NewScheduler creates a Scheduler. Cron expressions carry a leading seconds field,
// and a run that is still going when the next one is due causes that tick to be skipped.
func NewScheduler(ctx context.Context, job Job, log zerolog.Logger) *Scheduler {
	cl := cron.PrintfLogger(&log)
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		Job: job,
		Log: log,
		Ctx: ctx,
	}
}

// Register schedules the job on expr.
func (s *Scheduler) Register(expr string) (cron.EntryID, error) {
	id, err := s.Cron.AddFunc(expr, s.run)
	if err != nil {
		return 0, fmt.Errorf("register report task %q: %w", expr, err)
	}
	return id, nil
}

// Next returns the next activation time of the entry, zero if it is unknown.
func (s *Scheduler) Next(id cron.EntryID) time.Time {
	return s.Cron.Entry(id).Next
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Log.Info().Msg("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish, including
// those started by RunNow or Trigger.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.busy.Wait()
	s.Log.Info().Msg("scheduler stopped")
}

// RunNow executes the job immediately, outside the schedule.
func (s *Scheduler) RunNow() {
	s.busy.Add(1)
	defer s.busy.Done()
	s.run()
}

// Trigger starts the job in the background, outside the schedule. Stop waits for it.
func (s *Scheduler) Trigger() {
	s.busy.Add(1)
	go func() {
		defer s.busy.Done()
		s.run()
	}()
}

func (s *Scheduler) run() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Ctx.Err(); err != nil {
		return
	}
	s.Log.Info().Msg("running scheduled report")
	if err := s.Job(s.Ctx); err != nil {
		s.Log.Error().Err(err).Msg("scheduled report failed")
	}
}
