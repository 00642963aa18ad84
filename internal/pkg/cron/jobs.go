package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/auth"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
)

// Jobs wires the background work of the attendance system: forced
// clock-outs at shift end, GPS trail gap-filling, overtime expiry, and
// refresh token garbage collection.
type Jobs struct {
	attendance attendance.Service
	fieldVisit fieldvisit.Service
	overtime   overtime.Service
	auth       auth.AuthService
	policy     config.AttendanceConfig
}

func NewJobs(
	attendanceSvc attendance.Service,
	fieldVisitSvc fieldvisit.Service,
	overtimeSvc overtime.Service,
	authSvc auth.AuthService,
	policy config.AttendanceConfig,
) *Jobs {
	return &Jobs{
		attendance: attendanceSvc,
		fieldVisit: fieldVisitSvc,
		overtime:   overtimeSvc,
		auth:       authSvc,
		policy:     policy,
	}
}

func (j *Jobs) Register(scheduler *Scheduler) error {
	// Two daily triggers: the weekday shift end and the Saturday half-day
	// end. AutoClockOut computes each session's own cutoff, so firing on
	// the wrong kind of day closes nothing.
	if err := scheduler.AddDailyJob("auto_clockout", "18:30", time.Hour, j.AutoClockOut); err != nil {
		return err
	}
	if err := scheduler.AddDailyJob("auto_clockout_saturday", "13:30", time.Hour, j.AutoClockOut); err != nil {
		return err
	}
	if err := scheduler.AddDailyJob("refresh_token_gc", "03:00", 6*time.Hour, j.PurgeTokens); err != nil {
		return err
	}
	if err := scheduler.AddDailyJob("overtime_expiry", "00:30", 6*time.Hour, j.ExpireOvertime); err != nil {
		return err
	}

	scheduler.AddJob("gps_tracking_sweep", j.policy.TrackingInterval, j.SweepTracking)
	return nil
}

func (j *Jobs) AutoClockOut(ctx context.Context) error {
	closed, err := j.attendance.AutoClockOut(ctx)
	if err != nil {
		return err
	}
	if closed > 0 {
		slog.Info("Cron: auto clock-out finished", "sessions_closed", closed)
	}
	return nil
}

// SweepTracking fills gaps in active visit trails. A device that stopped
// reporting keeps its last known position on record at each interval.
func (j *Jobs) SweepTracking(ctx context.Context) error {
	staleAfter := j.policy.TrackingInterval
	recorded, err := j.fieldVisit.SweepActiveVisits(ctx, staleAfter)
	if err != nil {
		return err
	}
	if recorded > 0 {
		slog.Debug("Cron: tracking sweep finished", "points_recorded", recorded)
	}
	return nil
}

func (j *Jobs) ExpireOvertime(ctx context.Context) error {
	expired, err := j.overtime.ExpireSweep(ctx)
	if err != nil {
		return err
	}
	if expired > 0 {
		slog.Info("Cron: overtime expiry finished", "records_expired", expired)
	}
	return nil
}

func (j *Jobs) PurgeTokens(ctx context.Context) error {
	_, err := j.auth.PurgeExpiredTokens(ctx)
	return err
}
