// Package scheduler runs periodic jobs on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a scheduled unit of work. It receives the runner's base context.
type Job func(ctx context.Context) error

// Runner schedules jobs. A job still running when its next tick fires is
// skipped rather than run concurrently.
type Runner struct {
	cron *cron.Cron
	log  zerolog.Logger
	ctx  context.Context
}

// New creates a Runner. Jobs see ctx and should return once it is done.
// Schedules use the standard five-field syntax plus descriptors such as
// "@every 5m".
func New(ctx context.Context, log zerolog.Logger) *Runner {
	log = log.With().Str("component", "scheduler").Logger()
	clog := cronLogger{log: log}
	return &Runner{
		cron: cron.New(
			cron.WithLogger(clog),
			cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)),
		),
		log: log,
		ctx: ctx,
	}
}

// Add registers job under name on schedule.
func (r *Runner) Add(name, schedule string, job Job) error {
	_, err := r.cron.AddFunc(schedule, func() {
		start := time.Now()
		if err := job(r.ctx); err != nil {
			r.log.Error().Err(err).Str("job", name).Dur("duration", time.Since(start)).Msg("job failed")
			return
		}
		r.log.Info().Str("job", name).Dur("duration", time.Since(start)).Msg("job completed")
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, schedule, err)
	}
	return nil
}

// Len returns the number of scheduled jobs.
func (r *Runner) Len() int {
	return len(r.cron.Entries())
}

// Start begins running jobs in the background.
func (r *Runner) Start() {
	r.log.Info().Int("jobs", r.Len()).Msg("scheduler started")
	r.cron.Start()
}

// Stop prevents new runs and waits for running jobs to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
	r.log.Info().Msg("scheduler stopped")
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
