package cron

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Job represents a scheduled job. Interval jobs fire on a ticker; daily
// jobs fire at a wall-clock time in the scheduler's location.
type Job struct {
	Name     string
	Interval time.Duration
	At       string // "15:04", empty for interval jobs
	Grace    time.Duration
	Fn       func(ctx context.Context) error
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	jobs   []Job
	loc    *time.Location
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewScheduler creates a new cron scheduler
func NewScheduler(loc *time.Location) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		jobs:   make([]Job, 0),
		loc:    loc,
		ctx:    ctx,
		cancel: cancel,
	}
}

// AddJob adds an interval job to the scheduler
func (s *Scheduler) AddJob(name string, interval time.Duration, fn func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:     name,
		Interval: interval,
		Fn:       fn,
	})
	slog.Info("Cron job registered", "name", name, "interval", interval)
}

// AddDailyJob adds a job that fires once a day at the given wall-clock
// time. A trigger missed by less than grace (process restart, clock
// suspend) still runs once on catch-up; older misses are skipped.
func (s *Scheduler) AddDailyJob(name string, at string, grace time.Duration, fn func(ctx context.Context) error) error {
	if _, err := time.Parse("15:04", at); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs = append(s.jobs, Job{
		Name:  name,
		At:    at,
		Grace: grace,
		Fn:    fn,
	})
	slog.Info("Cron job registered", "name", name, "at", at, "grace", grace)
	return nil
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		s.wg.Add(1)
		if job.At != "" {
			go s.runDailyJob(job)
		} else {
			go s.runIntervalJob(job)
		}
	}

	slog.Info("Cron scheduler started", "job_count", len(s.jobs))
}

// Stop gracefully stops all scheduled jobs
func (s *Scheduler) Stop() {
	slog.Info("Stopping cron scheduler...")
	s.cancel()
	s.wg.Wait()
	slog.Info("Cron scheduler stopped")
}

// runIntervalJob runs a single job on its ticker schedule
func (s *Scheduler) runIntervalJob(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	// Run immediately on start
	s.executeJob(job)

	for {
		select {
		case <-s.ctx.Done():
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-ticker.C:
			s.executeJob(job)
		}
	}
}

// runDailyJob sleeps until the next wall-clock trigger, with misfire
// handling on wake-up.
func (s *Scheduler) runDailyJob(job Job) {
	defer s.wg.Done()

	next := s.nextTrigger(time.Now().In(s.loc), job.At)

	// A trigger missed within the grace window runs once at startup.
	if missed := s.lastTrigger(time.Now().In(s.loc), job.At); time.Since(missed) <= job.Grace {
		s.executeJob(job)
	}

	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			slog.Info("Cron job stopping", "name", job.Name)
			return
		case <-timer.C:
			now := time.Now().In(s.loc)
			if now.Sub(next) <= job.Grace {
				s.executeJob(job)
			} else {
				slog.Warn("Cron job misfire skipped", "name", job.Name, "scheduled", next, "woke", now)
			}
			next = s.nextTrigger(now, job.At)
		}
	}
}

// nextTrigger returns the first occurrence of the wall-clock time strictly
// after now.
func (s *Scheduler) nextTrigger(now time.Time, at string) time.Time {
	t, _ := time.Parse("15:04", at)
	trigger := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, s.loc)
	if !trigger.After(now) {
		trigger = trigger.AddDate(0, 0, 1)
	}
	return trigger
}

// lastTrigger returns the most recent occurrence at or before now.
func (s *Scheduler) lastTrigger(now time.Time, at string) time.Time {
	return s.nextTrigger(now, at).AddDate(0, 0, -1)
}

// executeJob executes a job and logs results
func (s *Scheduler) executeJob(job Job) {
	start := time.Now()
	slog.Debug("Cron job starting", "name", job.Name)

	if err := job.Fn(s.ctx); err != nil {
		slog.Error("Cron job failed", "name", job.Name, "error", err, "duration", time.Since(start))
	} else {
		slog.Debug("Cron job completed", "name", job.Name, "duration", time.Since(start))
	}
}

// RunOnce runs all jobs once (useful for testing)
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.jobs {
		if err := job.Fn(ctx); err != nil {
			slog.Error("Cron job failed", "name", job.Name, "error", err)
		}
	}
}
