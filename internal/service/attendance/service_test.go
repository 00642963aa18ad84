package attendance

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/exception"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type fakeSessionRepo struct {
	sessions map[int64]attendance.Session
	nextID   int64
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[int64]attendance.Session)}
}

func (f *fakeSessionRepo) Create(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	for _, existing := range f.sessions {
		if existing.EmpCode == s.EmpCode && existing.Open() {
			return attendance.Session{}, attendance.ErrAlreadyActiveSession
		}
	}
	f.nextID++
	s.ID = f.nextID
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id int64) (attendance.Session, error) {
	s, ok := f.sessions[id]
	if !ok {
		return attendance.Session{}, attendance.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) GetOpenSession(ctx context.Context, empCode string) (*attendance.Session, error) {
	for _, s := range f.sessions {
		if s.EmpCode == empCode && s.Open() {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeSessionRepo) HasSessionOnDate(ctx context.Context, empCode string, dayStart, dayEnd time.Time) (bool, error) {
	for _, s := range f.sessions {
		if s.EmpCode == empCode && !s.LoginTime.Before(dayStart) && s.LoginTime.Before(dayEnd) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSessionRepo) GetAutoClosedOnDate(ctx context.Context, empCode string, dayStart, dayEnd time.Time) (*attendance.Session, error) {
	var found *attendance.Session
	for _, s := range f.sessions {
		if s.EmpCode != empCode || !s.AutoClockout {
			continue
		}
		if s.LoginTime.Before(dayStart) || !s.LoginTime.Before(dayEnd) {
			continue
		}
		if found == nil || s.LoginTime.After(found.LoginTime) {
			match := s
			found = &match
		}
	}
	return found, nil
}

func (f *fakeSessionRepo) Update(ctx context.Context, s attendance.Session) error {
	if _, ok := f.sessions[s.ID]; !ok {
		return attendance.ErrSessionNotFound
	}
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeSessionRepo) ListRecent(ctx context.Context, empCode string, limit int) ([]attendance.Session, error) {
	var out []attendance.Session
	for _, s := range f.sessions {
		if s.EmpCode == empCode {
			out = append(out, s)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeSessionRepo) ListOpenSessions(ctx context.Context) ([]attendance.Session, error) {
	var out []attendance.Session
	for _, s := range f.sessions {
		if s.Open() {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByEmpCode(ctx context.Context, empCode string) (employee.Employee, error) {
	e, ok := f.employees[empCode]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

func (f *fakeEmployeeRepo) GetByPhone(ctx context.Context, phone string) (employee.Employee, error) {
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) Create(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	return e, nil
}

func (f *fakeEmployeeRepo) ListActive(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

type fakeShiftRepo struct{}

func (f *fakeShiftRepo) GetByID(ctx context.Context, id int) (employee.Shift, error) {
	return f.GetDefault(ctx)
}

func (f *fakeShiftRepo) GetDefault(ctx context.Context) (employee.Shift, error) {
	return employee.Shift{StartTime: "10:00", EndTime: "18:30", SaturdayEndTime: "13:30"}, nil
}

type fakeClassifier struct {
	working      bool
	reason       string
	saturdayHalf bool
}

func (f *fakeClassifier) Classify(ctx context.Context, date time.Time) (bool, string) {
	return f.working, f.reason
}

func (f *fakeClassifier) IsSaturdayHalfDay(date time.Time) bool {
	return f.saturdayHalf
}

type fakeExceptionService struct {
	approved bool
	planned  *time.Time
}

func (f *fakeExceptionService) Create(ctx context.Context, req exception.CreateExceptionRequest) (exception.ExceptionResponse, error) {
	return exception.ExceptionResponse{}, nil
}

func (f *fakeExceptionService) Review(ctx context.Context, req exception.ReviewExceptionRequest) (exception.ExceptionResponse, error) {
	return exception.ExceptionResponse{}, nil
}

func (f *fakeExceptionService) MyExceptions(ctx context.Context, empCode string) ([]exception.ExceptionResponse, error) {
	return nil, nil
}

func (f *fakeExceptionService) TeamExceptions(ctx context.Context, approverCode string) (exception.TeamSummaryResponse, error) {
	return exception.TeamSummaryResponse{}, nil
}

func (f *fakeExceptionService) CheckEarlyLeaveApproval(ctx context.Context, empCode string, at time.Time) (bool, *time.Time, error) {
	return f.approved, f.planned, nil
}

type fakeAccrualService struct {
	accrued []attendance.Session
	err     error
}

func (f *fakeAccrualService) Accrue(ctx context.Context, session attendance.Session) (*overtime.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.accrued = append(f.accrued, session)
	return nil, nil
}

func (f *fakeAccrualService) Records(ctx context.Context, empCode string) ([]overtime.RecordResponse, error) {
	return nil, nil
}

func (f *fakeAccrualService) RequestCompOff(ctx context.Context, req overtime.RequestCompOffRequest) (overtime.CompOffResponse, error) {
	return overtime.CompOffResponse{}, nil
}

func (f *fakeAccrualService) ReviewCompOff(ctx context.Context, req overtime.ReviewCompOffRequest) (overtime.CompOffResponse, error) {
	return overtime.CompOffResponse{}, nil
}

func (f *fakeAccrualService) CancelCompOff(ctx context.Context, empCode string, requestID int64) (overtime.CompOffResponse, error) {
	return overtime.CompOffResponse{}, nil
}

func (f *fakeAccrualService) MyCompOffRequests(ctx context.Context, empCode string) ([]overtime.CompOffResponse, error) {
	return nil, nil
}

func (f *fakeAccrualService) TeamCompOffRequests(ctx context.Context, approverCode string) ([]overtime.CompOffResponse, error) {
	return nil, nil
}

func (f *fakeAccrualService) ExpireSweep(ctx context.Context) (int, error) {
	return 0, nil
}

type fakeActivityRepo struct {
	activities map[int64]activity.Activity
	nextID     int64
}

func newFakeActivityRepo() *fakeActivityRepo {
	return &fakeActivityRepo{activities: make(map[int64]activity.Activity)}
}

func (f *fakeActivityRepo) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	f.nextID++
	a.ID = f.nextID
	f.activities[a.ID] = a
	return a, nil
}

func (f *fakeActivityRepo) GetByID(ctx context.Context, id int64) (activity.Activity, error) {
	a, ok := f.activities[id]
	if !ok {
		return activity.Activity{}, activity.ErrActivityNotFound
	}
	return a, nil
}

func (f *fakeActivityRepo) GetActiveBySession(ctx context.Context, attendanceID int64) (*activity.Activity, error) {
	for _, a := range f.activities {
		if a.AttendanceID == attendanceID && a.Status == activity.StatusActive {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeActivityRepo) GetActiveByType(ctx context.Context, attendanceID int64, activityType activity.Type) (*activity.Activity, error) {
	for _, a := range f.activities {
		if a.AttendanceID == attendanceID && a.Type == activityType && a.Status == activity.StatusActive {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (f *fakeActivityRepo) Update(ctx context.Context, a activity.Activity) error {
	if _, ok := f.activities[a.ID]; !ok {
		return activity.ErrActivityNotFound
	}
	f.activities[a.ID] = a
	return nil
}

func (f *fakeActivityRepo) ListBySession(ctx context.Context, attendanceID int64) ([]activity.Activity, error) {
	var out []activity.Activity
	for _, a := range f.activities {
		if a.AttendanceID == attendanceID {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeVisitRepo struct {
	visits map[int64]fieldvisit.FieldVisit
	nextID int64
}

func newFakeVisitRepo() *fakeVisitRepo {
	return &fakeVisitRepo{visits: make(map[int64]fieldvisit.FieldVisit)}
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
	return nil, nil
}

func (f *fakeVisitRepo) ListActiveVisits(ctx context.Context) ([]fieldvisit.FieldVisit, error) {
	return nil, nil
}

func (f *fakeVisitRepo) CreatePoint(ctx context.Context, p fieldvisit.TrackingPoint) (fieldvisit.TrackingPoint, error) {
	return p, nil
}

func (f *fakeVisitRepo) ListPoints(ctx context.Context, fieldVisitID int64) ([]fieldvisit.TrackingPoint, error) {
	return nil, nil
}

func (f *fakeVisitRepo) GetLastPoint(ctx context.Context, fieldVisitID int64) (*fieldvisit.TrackingPoint, error) {
	return nil, nil
}

type fakeGeocoder struct{}

func (f *fakeGeocoder) ReverseGeocode(ctx context.Context, c geo.Coordinate) string {
	return fmt.Sprintf("addr(%s)", c.String())
}

func (f *fakeGeocoder) CacheLen() int { return 0 }
func (f *fakeGeocoder) ClearCache()   {}

func testPolicy() config.AttendanceConfig {
	return config.AttendanceConfig{
		ShiftStart:       "10:00",
		ShiftEnd:         "18:30",
		SaturdayShiftEnd: "13:30",
		GraceMinutes:     15,
	}
}

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

type fixture struct {
	svc        *AttendanceServiceImpl
	repo       *fakeSessionRepo
	activities *fakeActivityRepo
	visits     *fakeVisitRepo
	classifier *fakeClassifier
	exceptions *fakeExceptionService
	accrual    *fakeAccrualService
	loc        *time.Location
}

func newFixture(t *testing.T) *fixture {
	loc := testLocation(t)
	repo := newFakeSessionRepo()
	activities := newFakeActivityRepo()
	visits := newFakeVisitRepo()
	classifier := &fakeClassifier{working: true, reason: "working_day"}
	exceptions := &fakeExceptionService{}
	accrual := &fakeAccrualService{}
	emps := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"EMP001": {EmpCode: "EMP001", Name: "Asha", IsActive: true},
	}}
	svc := NewAttendanceService(nil, repo, emps, &fakeShiftRepo{}, activities, visits, classifier, exceptions, accrual, &fakeGeocoder{}, testPolicy(), loc)
	return &fixture{
		svc:        svc,
		repo:       repo,
		activities: activities,
		visits:     visits,
		classifier: classifier,
		exceptions: exceptions,
		accrual:    accrual,
		loc:        loc,
	}
}

func (f *fixture) at(t time.Time) {
	f.svc.now = func() time.Time { return t }
}

func TestClockInLateArrivalGrace(t *testing.T) {
	f := newFixture(t)

	// 10:20 against a 10:00 start with 15 minutes grace: 5 minutes late.
	f.at(time.Date(2025, 6, 9, 10, 20, 0, 0, f.loc))
	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsLateArrival)
	assert.Equal(t, 5, resp.LateByMinutes)
	assert.False(t, resp.IsCompOffEligible)
	assert.True(t, resp.IsWorkingDay)
}

func TestClockInWithinGraceNotLate(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 10, 0, 0, f.loc))
	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	assert.False(t, resp.IsLateArrival)
	assert.Equal(t, 0, resp.LateByMinutes)
}

func TestClockInRejectsSecondOpenSession(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	_, err = f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	assert.ErrorIs(t, err, attendance.ErrAlreadyActiveSession)
}

func TestClockInNonWorkingDaySingleSession(t *testing.T) {
	f := newFixture(t)
	f.classifier.working = false
	f.classifier.reason = "sunday"

	f.at(time.Date(2025, 6, 8, 11, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	// Non-working days carry no shift window, so closing needs no approval.
	f.at(time.Date(2025, 6, 8, 15, 0, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 8, 17, 0, 0, 0, f.loc))
	_, err = f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	assert.ErrorIs(t, err, attendance.ErrSingleClockInOnly)
}

func TestClockInSecondWorkingDaySessionEarnsCompOff(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 9, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.exceptions.approved = true
	f.at(time.Date(2025, 6, 9, 10, 30, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	// Returning the same working day opens a comp-off session, and lateness
	// no longer applies.
	f.at(time.Date(2025, 6, 9, 11, 0, 0, 0, f.loc))
	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCompOffEligible)
	assert.False(t, resp.IsLateArrival)

	// A comp-off session closes before shift end without approval.
	f.exceptions.approved = false
	f.at(time.Date(2025, 6, 9, 12, 0, 0, 0, f.loc))
	closed, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	require.NotNil(t, closed.TotalHours)
	assert.InDelta(t, 1.0, *closed.TotalHours, 0.01)
}

func TestClockInNonWorkingDayIsCompOffEligible(t *testing.T) {
	f := newFixture(t)
	f.classifier.working = false
	f.classifier.reason = "sunday"

	f.at(time.Date(2025, 6, 8, 11, 0, 0, 0, f.loc))
	resp, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsCompOffEligible)
	assert.False(t, resp.IsLateArrival)
	assert.False(t, resp.IsWorkingDay)
	assert.Equal(t, "sunday", resp.DayTypeReason)
}

func TestClockOutWithoutSession(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 18, 0, 0, 0, f.loc))
	_, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	assert.ErrorIs(t, err, attendance.ErrNoActiveSession)
}

func TestClockOutEarlyWithoutApproval(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	// 16:30 against an 18:30 shift end: 120 minutes early.
	f.at(time.Date(2025, 6, 9, 16, 30, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrEarlyLeaveNotApproved)

	var early *attendance.EarlyLeaveError
	require.True(t, errors.As(err, &early))
	assert.Equal(t, 120, early.EarlyByMinutes)
}

func TestClockOutEarlyWithApproval(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.exceptions.approved = true
	f.at(time.Date(2025, 6, 9, 16, 30, 0, 0, f.loc))
	resp, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TotalHours)
	assert.InDelta(t, 6.5, *resp.TotalHours, 0.01)
	assert.Len(t, f.accrual.accrued, 1)
}

func TestClockOutAfterShiftEnd(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 19, 0, 0, 0, f.loc))
	resp, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	require.NotNil(t, resp.TotalHours)
	assert.InDelta(t, 9.0, *resp.TotalHours, 0.01)
}

func TestClockOutAccrualFailureDoesNotUnwindClose(t *testing.T) {
	f := newFixture(t)
	f.accrual.err = errors.New("accrual backend down")

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 19, 0, 0, 0, f.loc))
	resp, err := f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.LogoutTime)
}

func TestClockOutForceClosesOpenWork(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	started := time.Date(2025, 6, 9, 14, 0, 0, 0, f.loc)
	a, err := f.activities.Create(context.Background(), activity.Activity{
		AttendanceID: 1, EmpCode: "EMP001",
		Type: activity.TypeFieldVisit, Status: activity.StatusActive, StartTime: started,
	})
	require.NoError(t, err)
	v, err := f.visits.CreateVisit(context.Background(), fieldvisit.FieldVisit{
		ActivityID: &a.ID, EmpCode: "EMP001",
		Status: fieldvisit.StatusActive, StartTime: started,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 19, 0, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	ended, err := f.activities.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)
	require.NotNil(t, ended.DurationMinutes)
	assert.Equal(t, 300, *ended.DurationMinutes)

	visit, err := f.visits.GetVisitByID(context.Background(), v.ID)
	require.NoError(t, err)
	assert.Equal(t, fieldvisit.StatusCompleted, visit.Status)
	require.NotNil(t, visit.EndTime)
	assert.Equal(t, "19:00", visit.EndTime.In(f.loc).Format("15:04"))
}

func TestClockOutClearsActiveDistanceAlert(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	a, err := f.activities.Create(context.Background(), activity.Activity{
		AttendanceID: 1, EmpCode: "EMP001",
		Type:   activity.TypeDistanceAlert,
		Status: activity.StatusActive, StartTime: time.Date(2025, 6, 9, 15, 0, 0, 0, f.loc),
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 19, 0, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	cleared, err := f.activities.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusCleared, cleared.Status)
	require.NotNil(t, cleared.EndTime)
}

func TestClockOutAfterAutoClockOutReportsClosure(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 18, 30, 0, 0, f.loc))
	closed, err := f.svc.AutoClockOut(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, closed)

	f.at(time.Date(2025, 6, 9, 19, 0, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, attendance.ErrAlreadyAutoClockedOut)

	var aco *attendance.AutoClockedOutError
	require.True(t, errors.As(err, &aco))
	assert.Equal(t, "18:30", aco.LogoutTime.In(f.loc).Format("15:04"))
	assert.NotEmpty(t, aco.Reason)
}

func TestAutoClockOutClosesAtCutoff(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	a, err := f.activities.Create(context.Background(), activity.Activity{
		AttendanceID: 1, EmpCode: "EMP001",
		Type: activity.TypeMealBreak, Status: activity.StatusActive,
		StartTime: time.Date(2025, 6, 9, 13, 0, 0, 0, f.loc),
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 18, 30, 0, 0, f.loc))
	closed, err := f.svc.AutoClockOut(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	session, err := f.repo.GetByID(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, session.LogoutTime)
	assert.True(t, session.AutoClockout)
	assert.NotEmpty(t, session.AutoClockoutReason)
	assert.Equal(t, "18:30", session.LogoutTime.In(f.loc).Format("15:04"))
	require.NotNil(t, session.LogoutLocation)
	assert.Equal(t, session.LoginLocation, *session.LogoutLocation)
	require.NotNil(t, session.TotalHours)
	assert.InDelta(t, 8.5, *session.TotalHours, 0.01)

	// The sweep force-closes whatever the session left open.
	ended, err := f.activities.GetByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, activity.StatusCompleted, ended.Status)
	require.NotNil(t, ended.EndTime)
}

func TestAutoClockOutSkipsBeforeCutoff(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 9, 15, 0, 0, 0, f.loc))
	closed, err := f.svc.AutoClockOut(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, closed)
}

func TestHistoryClassifiesSessionDays(t *testing.T) {
	f := newFixture(t)
	f.classifier.working = false
	f.classifier.reason = "sunday"

	f.at(time.Date(2025, 6, 8, 11, 0, 0, 0, f.loc))
	_, err := f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	f.at(time.Date(2025, 6, 8, 16, 0, 0, 0, f.loc))
	_, err = f.svc.ClockOut(context.Background(), attendance.ClockOutRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	history, err := f.svc.History(context.Background(), attendance.HistoryFilter{EmpCode: "EMP001", Limit: 10})
	require.NoError(t, err)
	require.Len(t, history.Sessions, 1)
	assert.False(t, history.Sessions[0].IsWorkingDay)
	assert.Equal(t, "sunday", history.Sessions[0].DayTypeReason)
	assert.InDelta(t, 5.0, history.TotalHours, 0.01)
}

func TestStatusReflectsOpenSession(t *testing.T) {
	f := newFixture(t)

	f.at(time.Date(2025, 6, 9, 10, 0, 0, 0, f.loc))
	status, err := f.svc.Status(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.False(t, status.IsLoggedIn)
	assert.True(t, status.CanClockIn)

	_, err = f.svc.ClockIn(context.Background(), attendance.ClockInRequest{
		EmpCode: "EMP001", Latitude: 12.9716, Longitude: 77.5946,
	})
	require.NoError(t, err)

	status, err = f.svc.Status(context.Background(), "EMP001")
	require.NoError(t, err)
	assert.True(t, status.IsLoggedIn)
	assert.True(t, status.CanClockOut)
	require.NotNil(t, status.CurrentSession)
	assert.Equal(t, "EMP001", status.CurrentSession.EmpCode)
}
