package leave

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/leave"
)

type fakeLeaveRepo struct {
	requests map[int64]leave.LeaveRequest
	nextID   int64
}

func newFakeLeaveRepo() *fakeLeaveRepo {
	return &fakeLeaveRepo{requests: make(map[int64]leave.LeaveRequest)}
}

func (f *fakeLeaveRepo) Create(ctx context.Context, r leave.LeaveRequest) (leave.LeaveRequest, error) {
	f.nextID++
	r.ID = f.nextID
	f.requests[r.ID] = r
	return r, nil
}

func (f *fakeLeaveRepo) GetByID(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return r, nil
}

func (f *fakeLeaveRepo) ListByEmployee(ctx context.Context, empCode string) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if r.EmpCode == empCode {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) ListByApprover(ctx context.Context, approverCode string, status *leave.Status) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, r := range f.requests {
		if r.ApproverCode == approverCode && (status == nil || r.Status == *status) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeLeaveRepo) UpdateStatus(ctx context.Context, id int64, status leave.Status, reviewedBy string, reviewedAt time.Time) error {
	r, ok := f.requests[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	r.Status = status
	r.ReviewedBy = &reviewedBy
	r.ReviewedAt = &reviewedAt
	f.requests[id] = r
	return nil
}

func (f *fakeLeaveRepo) HasApprovedLeaveOn(ctx context.Context, empCode string, date time.Time) (bool, error) {
	for _, r := range f.requests {
		if r.EmpCode == empCode && r.Status == leave.StatusApproved &&
			!date.Before(r.StartDate) && !date.After(r.EndDate) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeaveRepo) HasOverlapping(ctx context.Context, empCode string, start, end time.Time) (bool, error) {
	for _, r := range f.requests {
		if r.EmpCode != empCode || r.Status == leave.StatusRejected {
			continue
		}
		if !start.After(r.EndDate) && !end.Before(r.StartDate) {
			return true, nil
		}
	}
	return false, nil
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

func strPtr(s string) *string { return &s }

func testService() (*LeaveServiceImpl, *fakeLeaveRepo) {
	repo := newFakeLeaveRepo()
	emps := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"EMP001": {EmpCode: "EMP001", ManagerCode: strPtr("MGR001")},
	}}
	return NewLeaveService(repo, emps), repo
}

func TestApplyAndReview(t *testing.T) {
	svc, _ := testService()

	resp, err := svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmpCode:   "EMP001",
		LeaveType: "casual",
		StartDate: "2025-06-16",
		EndDate:   "2025-06-18",
		Reason:    "family function",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Days)
	assert.Equal(t, "MGR001", resp.ApproverCode)
	assert.Equal(t, string(leave.StatusPending), resp.Status)

	_, err = svc.Review(context.Background(), leave.ReviewLeaveRequest{
		ID: resp.ID, ReviewerID: "EMP999", Approve: true,
	})
	assert.ErrorIs(t, err, leave.ErrNotAssignedApprover)

	reviewed, err := svc.Review(context.Background(), leave.ReviewLeaveRequest{
		ID: resp.ID, ReviewerID: "MGR001", Approve: true,
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.StatusApproved), reviewed.Status)

	_, err = svc.Review(context.Background(), leave.ReviewLeaveRequest{
		ID: resp.ID, ReviewerID: "MGR001", Approve: false,
	})
	assert.ErrorIs(t, err, leave.ErrLeaveRequestAlreadyReviewed)
}

func TestApplyRejectsOverlap(t *testing.T) {
	svc, _ := testService()

	_, err := svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmpCode:   "EMP001",
		LeaveType: "casual",
		StartDate: "2025-06-16",
		EndDate:   "2025-06-18",
		Reason:    "family function",
	})
	require.NoError(t, err)

	_, err = svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmpCode:   "EMP001",
		LeaveType: "sick",
		StartDate: "2025-06-18",
		EndDate:   "2025-06-19",
		Reason:    "fever",
	})
	assert.ErrorIs(t, err, leave.ErrOverlappingLeave)
}

func TestIsOnLeave(t *testing.T) {
	svc, _ := testService()

	resp, err := svc.Apply(context.Background(), leave.ApplyLeaveRequest{
		EmpCode:   "EMP001",
		LeaveType: "earned",
		StartDate: "2025-06-16",
		EndDate:   "2025-06-18",
		Reason:    "vacation",
	})
	require.NoError(t, err)

	// Pending leave does not count.
	on, err := svc.IsOnLeave(context.Background(), "EMP001", time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, on)

	_, err = svc.Review(context.Background(), leave.ReviewLeaveRequest{
		ID: resp.ID, ReviewerID: "MGR001", Approve: true,
	})
	require.NoError(t, err)

	on, err = svc.IsOnLeave(context.Background(), "EMP001", time.Date(2025, 6, 17, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, on)

	on, err = svc.IsOnLeave(context.Background(), "EMP001", time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.False(t, on)
}
