package exception

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/exception"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/leave"
	"github.com/fieldforce-hq/attendance-backend-go/internal/service/workday"
)

type ExceptionServiceImpl struct {
	repo      exception.ExceptionRepository
	employees employee.EmployeeRepository
	shifts    employee.ShiftRepository
	leaves    leave.Service
	workdays  workday.Classifier
	policy    config.AttendanceConfig
	loc       *time.Location
	now       func() time.Time
}

func NewExceptionService(
	repo exception.ExceptionRepository,
	employees employee.EmployeeRepository,
	shifts employee.ShiftRepository,
	leaves leave.Service,
	workdays workday.Classifier,
	policy config.AttendanceConfig,
	loc *time.Location,
) *ExceptionServiceImpl {
	return &ExceptionServiceImpl{
		repo:      repo,
		employees: employees,
		shifts:    shifts,
		leaves:    leaves,
		workdays:  workdays,
		policy:    policy,
		loc:       loc,
		now:       time.Now,
	}
}

// Create implements exception.Service.
func (s *ExceptionServiceImpl) Create(ctx context.Context, req exception.CreateExceptionRequest) (exception.ExceptionResponse, error) {
	if err := req.Validate(); err != nil {
		return exception.ExceptionResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	planned, err := time.Parse(time.RFC3339, req.PlannedTime)
	if err != nil {
		return exception.ExceptionResponse{}, fmt.Errorf("parse planned_time: %w", err)
	}

	emp, err := s.employees.GetByEmpCode(ctx, req.EmpCode)
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	approver, err := s.resolveApprover(ctx, emp, date)
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	minutes := s.deviationMinutes(ctx, emp, exception.Type(req.Type), date, planned)

	created, err := s.repo.Create(ctx, exception.Exception{
		EmpCode:      req.EmpCode,
		Type:         exception.Type(req.Type),
		Date:         date,
		PlannedTime:  planned,
		Minutes:      minutes,
		Reason:       req.Reason,
		Status:       exception.StatusPending,
		ApproverCode: approver,
	})
	if err != nil {
		return exception.ExceptionResponse{}, err
	}

	slog.Info("exception filed",
		"emp_code", created.EmpCode,
		"type", created.Type,
		"date", created.Date.Format("2006-01-02"),
		"minutes", created.Minutes,
		"approver", created.ApproverCode,
	)
	return exception.ToResponse(created), nil
}

// resolveApprover picks the assigned manager, or the informing manager
// when the manager has approved leave covering the exception date.
func (s *ExceptionServiceImpl) resolveApprover(ctx context.Context, emp employee.Employee, date time.Time) (string, error) {
	managerCode := ""
	if emp.ManagerCode != nil {
		managerCode = *emp.ManagerCode
	}

	if managerCode != "" {
		onLeave, err := s.leaves.IsOnLeave(ctx, managerCode, date)
		if err != nil {
			slog.Warn("manager leave lookup failed, keeping assigned manager", "manager", managerCode, "error", err)
			return managerCode, nil
		}
		if !onLeave {
			return managerCode, nil
		}
		if emp.InformingManagerCode != nil && *emp.InformingManagerCode != "" {
			return *emp.InformingManagerCode, nil
		}
		return managerCode, nil
	}

	if emp.InformingManagerCode != nil && *emp.InformingManagerCode != "" {
		return *emp.InformingManagerCode, nil
	}
	return "", exception.ErrNoApprover
}

// deviationMinutes measures how far the planned time deviates from the
// shift boundary: past the grace deadline for late arrivals, before the
// shift end for early leaves. Frozen at creation.
func (s *ExceptionServiceImpl) deviationMinutes(ctx context.Context, emp employee.Employee, typ exception.Type, date, planned time.Time) int {
	shift := s.resolveShift(ctx, emp)
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)

	var minutes int
	switch typ {
	case exception.TypeLateArrival:
		deadline := shift.StartOn(day, s.loc).Add(time.Duration(s.policy.GraceMinutes) * time.Minute)
		minutes = int(planned.Sub(deadline).Minutes())
	case exception.TypeEarlyLeave:
		end := shift.EndOn(day, s.workdays.IsSaturdayHalfDay(day), s.loc)
		minutes = int(end.Sub(planned).Minutes())
	}
	if minutes < 0 {
		minutes = 0
	}
	return minutes
}

func (s *ExceptionServiceImpl) resolveShift(ctx context.Context, emp employee.Employee) employee.Shift {
	if emp.ShiftID != nil {
		if shift, err := s.shifts.GetByID(ctx, *emp.ShiftID); err == nil {
			return shift
		}
	}
	if shift, err := s.shifts.GetDefault(ctx); err == nil {
		return shift
	}
	return employee.Shift{
		StartTime:       s.policy.ShiftStart,
		EndTime:         s.policy.ShiftEnd,
		SaturdayEndTime: s.policy.SaturdayShiftEnd,
	}
}

// Review implements exception.Service.
func (s *ExceptionServiceImpl) Review(ctx context.Context, req exception.ReviewExceptionRequest) (exception.ExceptionResponse, error) {
	e, err := s.repo.GetByID(ctx, req.ID)
	if err != nil {
		return exception.ExceptionResponse{}, err
	}
	if e.Status != exception.StatusPending {
		return exception.ExceptionResponse{}, exception.ErrAlreadyReviewed
	}
	if req.ReviewerID != e.ApproverCode {
		return exception.ExceptionResponse{}, exception.ErrNotAssignedApprover
	}

	now := s.now()
	e.ReviewedBy = &req.ReviewerID
	e.ReviewedAt = &now
	e.ReviewComment = req.Comment
	if req.Approve {
		e.Status = exception.StatusApproved
	} else {
		e.Status = exception.StatusRejected
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return exception.ExceptionResponse{}, err
	}
	return exception.ToResponse(e), nil
}

// MyExceptions implements exception.Service.
func (s *ExceptionServiceImpl) MyExceptions(ctx context.Context, empCode string) ([]exception.ExceptionResponse, error) {
	exceptions, err := s.repo.ListByEmployee(ctx, empCode)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}

	responses := make([]exception.ExceptionResponse, 0, len(exceptions))
	for _, e := range exceptions {
		responses = append(responses, exception.ToResponse(e))
	}
	return responses, nil
}

// TeamExceptions implements exception.Service.
func (s *ExceptionServiceImpl) TeamExceptions(ctx context.Context, approverCode string) (exception.TeamSummaryResponse, error) {
	exceptions, err := s.repo.ListByApprover(ctx, approverCode, nil)
	if err != nil {
		return exception.TeamSummaryResponse{}, fmt.Errorf("list team exceptions: %w", err)
	}

	summary := exception.TeamSummaryResponse{Exceptions: make([]exception.ExceptionResponse, 0, len(exceptions))}
	for _, e := range exceptions {
		switch e.Status {
		case exception.StatusPending:
			summary.Pending++
		case exception.StatusApproved:
			summary.Approved++
		case exception.StatusRejected:
			summary.Rejected++
		}
		summary.Exceptions = append(summary.Exceptions, exception.ToResponse(e))
	}
	return summary, nil
}

// CheckEarlyLeaveApproval implements exception.Service.
func (s *ExceptionServiceImpl) CheckEarlyLeaveApproval(ctx context.Context, empCode string, at time.Time) (bool, *time.Time, error) {
	local := at.In(s.loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	approved, err := s.repo.GetApprovedEarlyLeave(ctx, empCode, day)
	if err != nil {
		return false, nil, fmt.Errorf("check early leave approval: %w", err)
	}
	if approved == nil {
		return false, nil, nil
	}

	planned := approved.PlannedTime
	if at.Before(planned) {
		return false, &planned, nil
	}
	return true, &planned, nil
}
