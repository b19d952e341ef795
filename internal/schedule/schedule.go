// Package schedule runs organizer jobs on a cron schedule.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Veraticus/folderly/internal/common"
	"github.com/robfig/cron/v3"
)

// Job is one scheduled run.
type Job func(ctx context.Context) error

// ParseSpec parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week).
func ParseSpec(spec string) (cron.Schedule, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("%w: cron expression is empty", common.ErrInvalidConfig)
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	sched, err := parser.Parse(spec)
	if err != nil {
		return nil, fmt.Errorf("%w: cron expression %q: %v", common.ErrInvalidConfig, spec, err)
	}
	return sched, nil
}

// Scheduler calls its job at every activation of a cron schedule.
type Scheduler struct {
	schedule cron.Schedule
	job      Job
	now      func() time.Time
	after    func(time.Duration) <-chan time.Time
	spec     string
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the time source and the wait function.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(s *Scheduler) {
		if now != nil {
			s.now = now
		}
		if after != nil {
			s.after = after
		}
	}
}

// New creates a scheduler for spec.
func New(spec string, job Job, opts ...Option) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduled job is nil")
	}
	sched, err := ParseSpec(spec)
	if err != nil {
		return nil, err
	}
	s := &Scheduler{
		schedule: sched,
		job:      job,
		now:      time.Now,
		after:    time.After,
		spec:     strings.TrimSpace(spec),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Next returns the next activation after the current time.
func (s *Scheduler) Next() time.Time {
	return s.schedule.Next(s.now())
}

// Run waits for each activation and runs the job until ctx is cancelled.
// A job that fails, or finds another run in progress, does not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	slog.Info("Scheduler started", "cron", s.spec)
	for {
		if ctx.Err() != nil {
			slog.Info("Scheduler stopped")
			return nil
		}
		now := s.now()
		next := s.schedule.Next(now)
		if next.IsZero() {
			return fmt.Errorf("%w: cron expression %q never fires", common.ErrInvalidConfig, s.spec)
		}
		wait := next.Sub(now)
		slog.Info("Next scheduled run", "at", next.Format("Mon Jan 2 15:04"), "in", wait.Round(time.Second))

		select {
		case <-ctx.Done():
			slog.Info("Scheduler stopped")
			return nil
		case <-s.after(wait):
		}

		err := s.job(ctx)
		switch {
		case errors.Is(err, common.ErrAlreadyRunning):
			slog.Info("Skipping scheduled run, another run is in progress")
		case err != nil:
			common.LogError(err, "Scheduled run failed", common.Fields{"cron": s.spec})
		}
	}
}
