package fieldvisit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type FieldVisitServiceImpl struct {
	repo fieldvisit.FieldVisitRepository
	loc  *time.Location
	now  func() time.Time
}

func NewFieldVisitService(repo fieldvisit.FieldVisitRepository, loc *time.Location) *FieldVisitServiceImpl {
	return &FieldVisitServiceImpl{
		repo: repo,
		loc:  loc,
		now:  time.Now,
	}
}

// Track implements fieldvisit.Service.
func (s *FieldVisitServiceImpl) Track(ctx context.Context, req fieldvisit.TrackRequest) (fieldvisit.TrackResponse, error) {
	if err := req.Validate(); err != nil {
		return fieldvisit.TrackResponse{}, err
	}

	visit, err := s.repo.GetActiveVisit(ctx, req.EmpCode)
	if err != nil {
		return fieldvisit.TrackResponse{}, fmt.Errorf("get active visit: %w", err)
	}
	if visit == nil {
		return fieldvisit.TrackResponse{}, fieldvisit.ErrNoActiveVisit
	}

	recordedAt := s.now()
	if req.RecordedAt != "" {
		recordedAt, err = time.Parse(time.RFC3339, req.RecordedAt)
		if err != nil {
			return fieldvisit.TrackResponse{}, fieldvisit.ErrInvalidTimestamp
		}
	}

	_, err = s.repo.CreatePoint(ctx, fieldvisit.TrackingPoint{
		FieldVisitID: visit.ID,
		EmpCode:      req.EmpCode,
		Location:     geo.Coordinate{Lat: req.Latitude, Lon: req.Longitude},
		RecordedAt:   recordedAt,
		SpeedKmh:     req.SpeedKmh,
		AccuracyM:    req.AccuracyM,
	})
	if err != nil {
		return fieldvisit.TrackResponse{}, fmt.Errorf("create tracking point: %w", err)
	}

	points, err := s.repo.ListPoints(ctx, visit.ID)
	if err != nil {
		return fieldvisit.TrackResponse{}, fmt.Errorf("list tracking points: %w", err)
	}

	visit.TotalDistanceKm = pathDistance(points)
	if err := s.repo.UpdateVisit(ctx, *visit); err != nil {
		return fieldvisit.TrackResponse{}, fmt.Errorf("update visit distance: %w", err)
	}

	return fieldvisit.TrackResponse{
		FieldVisitID:    visit.ID,
		PointCount:      len(points),
		TotalDistanceKm: visit.TotalDistanceKm,
	}, nil
}

// pathDistance recomputes the full chronological path length. The trail
// is append-only, so the O(n) walk stays correct no matter how points
// arrived.
func pathDistance(points []fieldvisit.TrackingPoint) float64 {
	coords := make([]geo.Coordinate, len(points))
	for i, p := range points {
		coords[i] = p.Location
	}
	return geo.PathDistanceKm(coords)
}

// History implements fieldvisit.Service.
func (s *FieldVisitServiceImpl) History(ctx context.Context, empCode string, date time.Time) ([]fieldvisit.VisitResponse, error) {
	visits, err := s.repo.ListVisitsByDate(ctx, empCode, dateOnly(date))
	if err != nil {
		return nil, fmt.Errorf("list visits: %w", err)
	}

	responses := make([]fieldvisit.VisitResponse, 0, len(visits))
	for _, v := range visits {
		responses = append(responses, fieldvisit.ToVisitResponse(v))
	}
	return responses, nil
}

// Route implements fieldvisit.Service.
func (s *FieldVisitServiceImpl) Route(ctx context.Context, empCode string, visitID int64) (fieldvisit.RouteResponse, error) {
	visit, err := s.repo.GetVisitByID(ctx, visitID)
	if err != nil {
		return fieldvisit.RouteResponse{}, err
	}
	if visit.EmpCode != empCode {
		return fieldvisit.RouteResponse{}, fieldvisit.ErrNotVisitOwner
	}

	points, err := s.repo.ListPoints(ctx, visit.ID)
	if err != nil {
		return fieldvisit.RouteResponse{}, fmt.Errorf("list tracking points: %w", err)
	}

	resp := fieldvisit.RouteResponse{
		Visit:  fieldvisit.ToVisitResponse(visit),
		Points: make([]fieldvisit.PointResponse, 0, len(points)),
	}
	for _, p := range points {
		resp.Points = append(resp.Points, fieldvisit.ToPointResponse(p))
	}
	return resp, nil
}

// DaySummary implements fieldvisit.Service.
func (s *FieldVisitServiceImpl) DaySummary(ctx context.Context, empCode string, date time.Time) (fieldvisit.DaySummaryResponse, error) {
	day := dateOnly(date)
	visits, err := s.repo.ListVisitsByDate(ctx, empCode, day)
	if err != nil {
		return fieldvisit.DaySummaryResponse{}, fmt.Errorf("list visits: %w", err)
	}

	summary := fieldvisit.DaySummaryResponse{
		Date:       day.Format("2006-01-02"),
		VisitCount: len(visits),
		Visits:     make([]fieldvisit.VisitResponse, 0, len(visits)),
	}

	var speedSum float64
	var speedCount int
	for _, v := range visits {
		summary.TotalDistanceKm += v.TotalDistanceKm
		summary.Visits = append(summary.Visits, fieldvisit.ToVisitResponse(v))

		points, err := s.repo.ListPoints(ctx, v.ID)
		if err != nil {
			return fieldvisit.DaySummaryResponse{}, fmt.Errorf("list tracking points: %w", err)
		}
		for _, p := range points {
			if p.SpeedKmh == nil {
				continue
			}
			speed := *p.SpeedKmh
			speedSum += speed
			speedCount++
			if speed > summary.MaxSpeedKmh {
				summary.MaxSpeedKmh = speed
			}
			if speed < 1.0 {
				summary.StopCount++
			}
		}
	}
	if speedCount > 0 {
		summary.AvgSpeedKmh = speedSum / float64(speedCount)
	}
	return summary, nil
}

// SweepActiveVisits implements fieldvisit.Service.
func (s *FieldVisitServiceImpl) SweepActiveVisits(ctx context.Context, staleAfter time.Duration) (int, error) {
	visits, err := s.repo.ListActiveVisits(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active visits: %w", err)
	}

	now := s.now()
	recorded := 0
	for _, visit := range visits {
		last, err := s.repo.GetLastPoint(ctx, visit.ID)
		if err != nil {
			slog.Error("tracking sweep: last point lookup failed", "visit_id", visit.ID, "error", err)
			continue
		}
		if last == nil || now.Sub(last.RecordedAt) < staleAfter {
			continue
		}

		_, err = s.repo.CreatePoint(ctx, fieldvisit.TrackingPoint{
			FieldVisitID: visit.ID,
			EmpCode:      visit.EmpCode,
			Location:     last.Location,
			RecordedAt:   now,
			IsAuto:       true,
		})
		if err != nil {
			slog.Error("tracking sweep: auto point failed", "visit_id", visit.ID, "error", err)
			continue
		}
		recorded++
	}
	return recorded, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
