package activity

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type ActivityServiceImpl struct {
	repo     activity.ActivityRepository
	sessions attendance.SessionRepository
	visits   fieldvisit.FieldVisitRepository
	loc      *time.Location
	now      func() time.Time
}

func NewActivityService(
	repo activity.ActivityRepository,
	sessions attendance.SessionRepository,
	visits fieldvisit.FieldVisitRepository,
	loc *time.Location,
) *ActivityServiceImpl {
	return &ActivityServiceImpl{
		repo:     repo,
		sessions: sessions,
		visits:   visits,
		loc:      loc,
		now:      time.Now,
	}
}

// Start implements activity.Service.
func (s *ActivityServiceImpl) Start(ctx context.Context, req activity.StartActivityRequest) (activity.ActivityResponse, error) {
	if err := req.Validate(); err != nil {
		return activity.ActivityResponse{}, err
	}

	session, err := s.sessions.GetOpenSession(ctx, req.EmpCode)
	if err != nil {
		return activity.ActivityResponse{}, fmt.Errorf("get open session: %w", err)
	}
	if session == nil {
		return activity.ActivityResponse{}, attendance.ErrNoActiveSession
	}

	active, err := s.repo.GetActiveBySession(ctx, session.ID)
	if err != nil {
		return activity.ActivityResponse{}, fmt.Errorf("check active activity: %w", err)
	}
	if active != nil {
		return activity.ActivityResponse{}, activity.ErrActiveActivityExists
	}

	now := s.now()
	a := activity.Activity{
		AttendanceID: session.ID,
		EmpCode:      req.EmpCode,
		Type:         activity.Type(req.ActivityType),
		Status:       activity.StatusActive,
		StartTime:    now,
		Remarks:      req.Remarks,
	}
	if req.Latitude != nil && req.Longitude != nil {
		a.Location = &geo.Coordinate{Lat: *req.Latitude, Lon: *req.Longitude}
	}
	for i, d := range req.Destinations {
		a.Destinations = append(a.Destinations, activity.Destination{
			Order:   i + 1,
			Name:    d.Name,
			Address: d.Address,
		})
	}

	created, err := s.repo.Create(ctx, a)
	if err != nil {
		return activity.ActivityResponse{}, err
	}

	resp := activity.ToResponse(created)
	if created.Type.OpensFieldVisit() {
		local := now.In(s.loc)
		visit, err := s.visits.CreateVisit(ctx, fieldvisit.FieldVisit{
			ActivityID: &created.ID,
			EmpCode:    req.EmpCode,
			VisitDate:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Status:     fieldvisit.StatusActive,
			StartTime:  now,
		})
		if err != nil {
			return activity.ActivityResponse{}, fmt.Errorf("open field visit: %w", err)
		}
		resp.FieldVisitID = &visit.ID
	}

	slog.Info("activity started",
		"emp_code", created.EmpCode,
		"activity_id", created.ID,
		"type", created.Type,
	)
	return resp, nil
}

// End implements activity.Service.
func (s *ActivityServiceImpl) End(ctx context.Context, req activity.EndActivityRequest) (activity.ActivityResponse, error) {
	a, err := s.repo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return activity.ActivityResponse{}, err
	}
	if a.EmpCode != req.EmpCode {
		return activity.ActivityResponse{}, activity.ErrNotActivityOwner
	}
	if a.Status != activity.StatusActive {
		return activity.ActivityResponse{}, activity.ErrActivityNotActive
	}

	now := s.now()
	duration := int(now.Sub(a.StartTime).Minutes())
	a.Status = activity.StatusCompleted
	a.EndTime = &now
	a.DurationMinutes = &duration

	if err := s.repo.Update(ctx, a); err != nil {
		return activity.ActivityResponse{}, err
	}

	resp := activity.ToResponse(a)
	if a.Type.OpensFieldVisit() {
		if err := s.closeFieldVisit(ctx, a.ID, now, &resp); err != nil {
			return activity.ActivityResponse{}, err
		}
	}
	return resp, nil
}

func (s *ActivityServiceImpl) closeFieldVisit(ctx context.Context, activityID int64, at time.Time, resp *activity.ActivityResponse) error {
	visit, err := s.visits.GetVisitByActivity(ctx, activityID)
	if err != nil {
		return fmt.Errorf("get field visit: %w", err)
	}
	if visit == nil {
		return nil
	}
	resp.FieldVisitID = &visit.ID
	if visit.Status != fieldvisit.StatusActive {
		return nil
	}

	visit.Status = fieldvisit.StatusCompleted
	visit.EndTime = &at
	if err := s.visits.UpdateVisit(ctx, *visit); err != nil {
		return fmt.Errorf("close field visit: %w", err)
	}
	return nil
}

// MarkDestinationVisited implements activity.Service.
func (s *ActivityServiceImpl) MarkDestinationVisited(ctx context.Context, req activity.MarkDestinationRequest) (activity.ActivityResponse, error) {
	a, err := s.repo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return activity.ActivityResponse{}, err
	}
	if a.EmpCode != req.EmpCode {
		return activity.ActivityResponse{}, activity.ErrNotActivityOwner
	}
	if a.Status != activity.StatusActive {
		return activity.ActivityResponse{}, activity.ErrActivityNotActive
	}

	found := false
	now := s.now()
	for i := range a.Destinations {
		if a.Destinations[i].Order == req.Order {
			a.Destinations[i].Visited = true
			a.Destinations[i].VisitedAt = &now
			found = true
			break
		}
	}
	if !found {
		return activity.ActivityResponse{}, activity.ErrDestinationNotFound
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return activity.ActivityResponse{}, err
	}
	return activity.ToResponse(a), nil
}

// ListToday implements activity.Service.
func (s *ActivityServiceImpl) ListToday(ctx context.Context, empCode string) ([]activity.ActivityResponse, error) {
	session, err := s.sessions.GetOpenSession(ctx, empCode)
	if err != nil {
		return nil, fmt.Errorf("get open session: %w", err)
	}
	if session == nil {
		return []activity.ActivityResponse{}, nil
	}

	activities, err := s.repo.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}

	responses := make([]activity.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		responses = append(responses, activity.ToResponse(a))
	}
	return responses, nil
}
