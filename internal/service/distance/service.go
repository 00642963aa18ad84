package distance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/distance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
	"github.com/fieldforce-hq/attendance-backend-go/internal/service/workday"
)

type DistanceServiceImpl struct {
	sessions   attendance.SessionRepository
	activities activity.ActivityRepository
	visits     fieldvisit.FieldVisitRepository
	workdays   workday.Classifier
	policy     config.AttendanceConfig
	loc        *time.Location
	now        func() time.Time
}

func NewDistanceService(
	sessions attendance.SessionRepository,
	activities activity.ActivityRepository,
	visits fieldvisit.FieldVisitRepository,
	workdays workday.Classifier,
	policy config.AttendanceConfig,
	loc *time.Location,
) *DistanceServiceImpl {
	return &DistanceServiceImpl{
		sessions:   sessions,
		activities: activities,
		visits:     visits,
		workdays:   workdays,
		policy:     policy,
		loc:        loc,
		now:        time.Now,
	}
}

// Check implements distance.Service.
func (s *DistanceServiceImpl) Check(ctx context.Context, req distance.CheckRequest) (distance.CheckResponse, error) {
	if err := req.Validate(); err != nil {
		return distance.CheckResponse{}, err
	}

	session, err := s.sessions.GetOpenSession(ctx, req.EmpCode)
	if err != nil {
		return distance.CheckResponse{}, fmt.Errorf("get open session: %w", err)
	}
	if session == nil {
		return distance.CheckResponse{Outcome: distance.OutcomeNoSession}, nil
	}

	now := s.now().In(s.loc)
	if working, _ := s.workdays.Classify(ctx, now); !working {
		return distance.CheckResponse{Outcome: distance.OutcomeNonWorkingDay}, nil
	}

	current := geo.Coordinate{Lat: req.Latitude, Lon: req.Longitude}
	if s.isMoving(ctx, req, current) {
		return distance.CheckResponse{Outcome: distance.OutcomeMoving}, nil
	}

	distanceKm := geo.HaversineKm(session.LoginLocation, current)
	resp := distance.CheckResponse{
		DistanceKm:  distanceKm,
		ThresholdKm: s.policy.DistanceThresholdKm,
	}
	if distanceKm <= s.policy.DistanceThresholdKm {
		resp.Outcome = distance.OutcomeWithinRadius
		return resp, nil
	}

	existing, err := s.activities.GetActiveByType(ctx, session.ID, activity.TypeDistanceAlert)
	if err != nil {
		return distance.CheckResponse{}, fmt.Errorf("check existing alert: %w", err)
	}
	if existing != nil {
		resp.Outcome = distance.OutcomeAlertActive
		resp.AlertID = &existing.ID
		resp.AlertRemark = existing.Remarks
		return resp, nil
	}

	// Any other active activity (a visit, a break) explains being away;
	// treated like sanctioned movement.
	active, err := s.activities.GetActiveBySession(ctx, session.ID)
	if err != nil {
		return distance.CheckResponse{}, fmt.Errorf("check active activity: %w", err)
	}
	if active != nil {
		resp.Outcome = distance.OutcomeMoving
		return resp, nil
	}

	remark := fmt.Sprintf("%.2f km from clock-in location", distanceKm)
	alert, err := s.activities.Create(ctx, activity.Activity{
		AttendanceID: session.ID,
		EmpCode:      req.EmpCode,
		Type:         activity.TypeDistanceAlert,
		Status:       activity.StatusActive,
		StartTime:    s.now(),
		Location:     &current,
		Remarks:      remark,
	})
	if err != nil {
		return distance.CheckResponse{}, fmt.Errorf("raise distance alert: %w", err)
	}

	slog.Warn("distance alert raised",
		"emp_code", req.EmpCode,
		"session_id", session.ID,
		"distance_km", distanceKm,
	)
	resp.Outcome = distance.OutcomeAlertRaised
	resp.AlertID = &alert.ID
	resp.AlertRemark = remark
	return resp, nil
}

// isMoving judges movement from the reported speed, falling back to
// displacement against the last tracking point. With neither signal the
// employee counts as stationary.
func (s *DistanceServiceImpl) isMoving(ctx context.Context, req distance.CheckRequest, current geo.Coordinate) bool {
	if req.SpeedKmh != nil {
		return *req.SpeedKmh > s.policy.MovingSpeedKmh
	}

	visit, err := s.visits.GetActiveVisit(ctx, req.EmpCode)
	if err != nil || visit == nil {
		return false
	}
	last, err := s.visits.GetLastPoint(ctx, visit.ID)
	if err != nil || last == nil {
		return false
	}
	return geo.HaversineMeters(last.Location, current) > s.policy.DisplacementMeters
}

// ActiveAlert implements distance.Service.
func (s *DistanceServiceImpl) ActiveAlert(ctx context.Context, empCode string) (*distance.AlertResponse, error) {
	session, err := s.sessions.GetOpenSession(ctx, empCode)
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	if session == nil {
		return nil, nil
	}

	alert, err := s.activities.GetActiveByType(ctx, session.ID, activity.TypeDistanceAlert)
	if err != nil {
		return nil, fmt.Errorf("get active alert: %w", err)
	}
	if alert == nil {
		return nil, nil
	}

	return &distance.AlertResponse{
		ActivityID: alert.ID,
		EmpCode:    alert.EmpCode,
		StartTime:  alert.StartTime.Format(time.RFC3339),
		Remarks:    alert.Remarks,
	}, nil
}

// ClearAlert implements distance.Service.
func (s *DistanceServiceImpl) ClearAlert(ctx context.Context, empCode string) error {
	session, err := s.sessions.GetOpenSession(ctx, empCode)
	if err != nil {
		return fmt.Errorf("get open session: %w", err)
	}
	if session == nil {
		return attendance.ErrNoActiveSession
	}

	alert, err := s.activities.GetActiveByType(ctx, session.ID, activity.TypeDistanceAlert)
	if err != nil {
		return fmt.Errorf("get active alert: %w", err)
	}
	if alert == nil {
		return activity.ErrActivityNotFound
	}

	now := s.now()
	alert.Status = activity.StatusCleared
	alert.EndTime = &now
	if err := s.activities.Update(ctx, *alert); err != nil {
		return fmt.Errorf("clear alert: %w", err)
	}

	slog.Info("distance alert cleared", "emp_code", empCode, "activity_id", alert.ID)
	return nil
}
