package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/leave"
)

type LeaveServiceImpl struct {
	repo      leave.LeaveRequestRepository
	employees employee.EmployeeRepository
	now       func() time.Time
}

func NewLeaveService(repo leave.LeaveRequestRepository, employees employee.EmployeeRepository) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		repo:      repo,
		employees: employees,
		now:       time.Now,
	}
}

// Apply implements leave.Service.
func (s *LeaveServiceImpl) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveResponse{}, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	overlapping, err := s.repo.HasOverlapping(ctx, req.EmpCode, start, end)
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("check overlapping leave: %w", err)
	}
	if overlapping {
		return leave.LeaveResponse{}, leave.ErrOverlappingLeave
	}

	emp, err := s.employees.GetByEmpCode(ctx, req.EmpCode)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	approver := ""
	if emp.ManagerCode != nil {
		approver = *emp.ManagerCode
	} else if emp.InformingManagerCode != nil {
		approver = *emp.InformingManagerCode
	}

	created, err := s.repo.Create(ctx, leave.LeaveRequest{
		EmpCode:      req.EmpCode,
		LeaveType:    leave.Type(req.LeaveType),
		StartDate:    start,
		EndDate:      end,
		Reason:       req.Reason,
		Status:       leave.StatusPending,
		ApproverCode: approver,
	})
	if err != nil {
		return leave.LeaveResponse{}, fmt.Errorf("create leave request: %w", err)
	}

	slog.Info("leave applied",
		"emp_code", created.EmpCode,
		"type", created.LeaveType,
		"start", created.StartDate.Format("2006-01-02"),
		"end", created.EndDate.Format("2006-01-02"),
	)
	return leave.ToResponse(created), nil
}

// Review implements leave.Service.
func (s *LeaveServiceImpl) Review(ctx context.Context, req leave.ReviewLeaveRequest) (leave.LeaveResponse, error) {
	request, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return leave.LeaveResponse{}, err
	}
	if request.Status != leave.StatusPending {
		return leave.LeaveResponse{}, leave.ErrLeaveRequestAlreadyReviewed
	}
	if req.ReviewerID != request.ApproverCode {
		return leave.LeaveResponse{}, leave.ErrNotAssignedApprover
	}

	status := leave.StatusRejected
	if req.Approve {
		status = leave.StatusApproved
	}
	now := s.now()
	if err := s.repo.UpdateStatus(ctx, request.ID, status, req.ReviewerID, now); err != nil {
		return leave.LeaveResponse{}, err
	}

	request.Status = status
	request.ReviewedBy = &req.ReviewerID
	request.ReviewedAt = &now
	return leave.ToResponse(request), nil
}

// MyRequests implements leave.Service.
func (s *LeaveServiceImpl) MyRequests(ctx context.Context, empCode string) ([]leave.LeaveResponse, error) {
	requests, err := s.repo.ListByEmployee(ctx, empCode)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	return toResponses(requests), nil
}

// TeamRequests implements leave.Service.
func (s *LeaveServiceImpl) TeamRequests(ctx context.Context, approverCode string) ([]leave.LeaveResponse, error) {
	requests, err := s.repo.ListByApprover(ctx, approverCode, nil)
	if err != nil {
		return nil, fmt.Errorf("list team leave requests: %w", err)
	}
	return toResponses(requests), nil
}

// IsOnLeave implements leave.Service.
func (s *LeaveServiceImpl) IsOnLeave(ctx context.Context, empCode string, date time.Time) (bool, error) {
	return s.repo.HasApprovedLeaveOn(ctx, empCode, date)
}

func toResponses(requests []leave.LeaveRequest) []leave.LeaveResponse {
	responses := make([]leave.LeaveResponse, 0, len(requests))
	for _, r := range requests {
		responses = append(responses, leave.ToResponse(r))
	}
	return responses
}
