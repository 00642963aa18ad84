package fieldvisit

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type fakeVisitRepo struct {
	visits map[int64]fieldvisit.FieldVisit
	points map[int64][]fieldvisit.TrackingPoint
	nextID int64
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{
		visits: make(map[int64]fieldvisit.FieldVisit),
		points: make(map[int64][]fieldvisit.TrackingPoint),
	}
}

func (f *fakeVisitRepo) CreateVisit(ctx context.Context, v fieldvisit.FieldVisit) (fieldvisit.FieldVisit, error) {
	f.nextID++
	v.ID = f.nextID
	f.visits[v.ID] = v
	return v, nil
}

func (f *fakeVisitRepo) GetVisitByID(ctx context.Context, id int64) (fieldvisit.FieldVisit, error) {
	v, ok := f.visits[id]
	if !ok {
		return fieldvisit.FieldVisit{}, fieldvisit.ErrVisitNotFound
	}
	return v, nil
}

func (f *fakeVisitRepo) GetActiveVisit(ctx context.Context, empCode string) (*fieldvisit.FieldVisit, error) {
	for _, v := range f.visits {
		if v.EmpCode == empCode && v.Status == fieldvisit.StatusActive {
			found := v
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitRepo) GetVisitByActivity(ctx context.Context, activityID int64) (*fieldvisit.FieldVisit, error) {
	for _, v := range f.visits {
		if v.ActivityID != nil && *v.ActivityID == activityID {
			found := v
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeVisitRepo) UpdateVisit(ctx context.Context, v fieldvisit.FieldVisit) error {
	if _, ok := f.visits[v.ID]; !ok {
		return fieldvisit.ErrVisitNotFound
	}
	f.visits[v.ID] = v
	return nil
}

func (f *fakeVisitRepo) ListVisitsByDate(ctx context.Context, empCode string, date time.Time) ([]fieldvisit.FieldVisit, error) {
	var out []fieldvisit.FieldVisit
	for _, v := range f.visits {
		if v.EmpCode == empCode && v.VisitDate.Equal(date) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeVisitRepo) ListActiveVisits(ctx context.Context) ([]fieldvisit.FieldVisit, error) {
	var out []fieldvisit.FieldVisit
	for _, v := range f.visits {
		if v.Status == fieldvisit.StatusActive {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) CreatePoint(ctx context.Context, p fieldvisit.TrackingPoint) (fieldvisit.TrackingPoint, error) {
	f.nextID++
	p.ID = f.nextID
	f.points[p.FieldVisitID] = append(f.points[p.FieldVisitID], p)
	return p, nil
}

func (f *fakeVisitRepo) ListPoints(ctx context.Context, fieldVisitID int64) ([]fieldvisit.TrackingPoint, error) {
	points := append([]fieldvisit.TrackingPoint(nil), f.points[fieldVisitID]...)
	sort.Slice(points, func(i, j int) bool { return points[i].RecordedAt.Before(points[j].RecordedAt) })
	return points, nil
}

func (f *fakeVisitRepo) GetLastPoint(ctx context.Context, fieldVisitID int64) (*fieldvisit.TrackingPoint, error) {
	points, _ := f.ListPoints(ctx, fieldVisitID)
	if len(points) == 0 {
		return nil, nil
	}
	last := points[len(points)-1]
	return &last, nil
}

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func floatPtr(f float64) *float64 { return &f }

func TestTrackRequiresActiveVisit(t *testing.T) {
	loc := testLocation(t)
	svc := NewFieldVisitService(newFakeVisitRepo(), loc)

	_, err := svc.Track(context.Background(), fieldvisit.TrackRequest{
		EmpCode: "EMP001", Latitude: 12.97, Longitude: 77.59,
	})
	assert.ErrorIs(t, err, fieldvisit.ErrNoActiveVisit)
}

func TestTrackRecomputesPathDistance(t *testing.T) {
	loc := testLocation(t)
	repo := newFakeVisitRepo()
	svc := NewFieldVisitService(repo, loc)

	start := time.Date(2025, 6, 9, 11, 0, 0, 0, loc)
	visit, _ := repo.CreateVisit(context.Background(), fieldvisit.FieldVisit{
		EmpCode:   "EMP001",
		VisitDate: time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC),
		Status:    fieldvisit.StatusActive,
		StartTime: start,
	})

	// Three points roughly 1.11 km apart along a meridian.
	coords := []geo.Coordinate{
		{Lat: 12.97, Lon: 77.59},
		{Lat: 12.98, Lon: 77.59},
		{Lat: 12.99, Lon: 77.59},
	}
	var resp fieldvisit.TrackResponse
	for i, c := range coords {
		at := start.Add(time.Duration(i) * 3 * time.Minute)
		var err error
		resp, err = svc.Track(context.Background(), fieldvisit.TrackRequest{
			EmpCode:    "EMP001",
			Latitude:   c.Lat,
			Longitude:  c.Lon,
			RecordedAt: at.Format(time.RFC3339),
		})
		require.NoError(t, err)
	}

	assert.Equal(t, visit.ID, resp.FieldVisitID)
	assert.Equal(t, 3, resp.PointCount)
	assert.InDelta(t, 2.22, resp.TotalDistanceKm, 0.05)

	stored, _ := repo.GetVisitByID(context.Background(), visit.ID)
	assert.InDelta(t, 2.22, stored.TotalDistanceKm, 0.05)
}

func TestRouteChecksOwnership(t *testing.T) {
	loc := testLocation(t)
	repo := newFakeVisitRepo()
	svc := NewFieldVisitService(repo, loc)

	visit, _ := repo.CreateVisit(context.Background(), fieldvisit.FieldVisit{
		EmpCode: "EMP001", Status: fieldvisit.StatusActive,
	})

	_, err := svc.Route(context.Background(), "EMP002", visit.ID)
	assert.ErrorIs(t, err, fieldvisit.ErrNotVisitOwner)

	route, err := svc.Route(context.Background(), "EMP001", visit.ID)
	require.NoError(t, err)
	assert.Equal(t, visit.ID, route.Visit.ID)
}

func TestDaySummaryStatistics(t *testing.T) {
	loc := testLocation(t)
	repo := newFakeVisitRepo()
	svc := NewFieldVisitService(repo, loc)

	day := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	visit, _ := repo.CreateVisit(context.Background(), fieldvisit.FieldVisit{
		EmpCode: "EMP001", VisitDate: day, Status: fieldvisit.StatusCompleted, TotalDistanceKm: 5.0,
	})

	at := time.Date(2025, 6, 9, 11, 0, 0, 0, loc)
	speeds := []float64{0.5, 20.0, 35.0}
	for i, speed := range speeds {
		repo.CreatePoint(context.Background(), fieldvisit.TrackingPoint{
			FieldVisitID: visit.ID,
			EmpCode:      "EMP001",
			Location:     geo.Coordinate{Lat: 12.97, Lon: 77.59},
			RecordedAt:   at.Add(time.Duration(i) * 3 * time.Minute),
			SpeedKmh:     floatPtr(speed),
		})
	}

	summary, err := svc.DaySummary(context.Background(), "EMP001", day)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.VisitCount)
	assert.Equal(t, 5.0, summary.TotalDistanceKm)
	assert.InDelta(t, 18.5, summary.AvgSpeedKmh, 0.01)
	assert.Equal(t, 35.0, summary.MaxSpeedKmh)
	assert.Equal(t, 1, summary.StopCount)
}

func TestSweepAppendsAutoPointToStaleVisits(t *testing.T) {
	loc := testLocation(t)
	repo := newFakeVisitRepo()
	svc := NewFieldVisitService(repo, loc)

	now := time.Date(2025, 6, 9, 12, 0, 0, 0, loc)
	svc.now = func() time.Time { return now }

	stale, _ := repo.CreateVisit(context.Background(), fieldvisit.FieldVisit{
		EmpCode: "EMP001", Status: fieldvisit.StatusActive,
	})
	repo.CreatePoint(context.Background(), fieldvisit.TrackingPoint{
		FieldVisitID: stale.ID,
		EmpCode:      "EMP001",
		Location:     geo.Coordinate{Lat: 12.97, Lon: 77.59},
		RecordedAt:   now.Add(-10 * time.Minute),
	})

	fresh, _ := repo.CreateVisit(context.Background(), fieldvisit.FieldVisit{
		EmpCode: "EMP002", Status: fieldvisit.StatusActive,
	})
	repo.CreatePoint(context.Background(), fieldvisit.TrackingPoint{
		FieldVisitID: fresh.ID,
		EmpCode:      "EMP002",
		Location:     geo.Coordinate{Lat: 12.98, Lon: 77.60},
		RecordedAt:   now.Add(-time.Minute),
	})

	recorded, err := svc.SweepActiveVisits(context.Background(), 3*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, recorded)

	points, _ := repo.ListPoints(context.Background(), stale.ID)
	require.Len(t, points, 2)
	auto := points[1]
	assert.True(t, auto.IsAuto)
	assert.Equal(t, geo.Coordinate{Lat: 12.97, Lon: 77.59}, auto.Location)

	points, _ = repo.ListPoints(context.Background(), fresh.ID)
	assert.Len(t, points, 1)
}
