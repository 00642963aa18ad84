package overtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/attendance-backend-go/internal/repository/postgresql"
	"github.com/fieldforce-hq/attendance-backend-go/internal/service/workday"
)

type OvertimeServiceImpl struct {
	db        *database.DB
	repo      overtime.OvertimeRepository
	employees employee.EmployeeRepository
	shifts    employee.ShiftRepository
	workdays  workday.Classifier
	policy    config.AttendanceConfig
	loc       *time.Location
	now       func() time.Time
}

func NewOvertimeService(
	db *database.DB,
	repo overtime.OvertimeRepository,
	employees employee.EmployeeRepository,
	shifts employee.ShiftRepository,
	workdays workday.Classifier,
	policy config.AttendanceConfig,
	loc *time.Location,
) *OvertimeServiceImpl {
	return &OvertimeServiceImpl{
		db:        db,
		repo:      repo,
		employees: employees,
		shifts:    shifts,
		workdays:  workdays,
		policy:    policy,
		loc:       loc,
		now:       time.Now,
	}
}

func (s *OvertimeServiceImpl) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// Accrue implements overtime.Service.
func (s *OvertimeServiceImpl) Accrue(ctx context.Context, session attendance.Session) (*overtime.Record, error) {
	if session.Open() || session.TotalHours == nil {
		return nil, nil
	}

	existing, err := s.repo.GetRecordByAttendance(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("check existing accrual: %w", err)
	}
	if existing != nil {
		return nil, nil
	}

	loginLocal := session.LoginTime.In(s.loc)
	workDate := time.Date(loginLocal.Year(), loginLocal.Month(), loginLocal.Day(), 0, 0, 0, 0, time.UTC)

	working, _ := s.workdays.Classify(ctx, loginLocal)

	var extraHours float64
	if !working {
		extraHours = *session.TotalHours
	} else {
		extraHours = s.hoursOutsideShift(ctx, session, loginLocal)
	}

	compOffDays := compOffDaysFor(extraHours, s.policy)
	if compOffDays == 0 {
		return nil, nil
	}

	monthCount, err := s.repo.CountRecordsInMonth(ctx, session.EmpCode, loginLocal.Year(), loginLocal.Month())
	if err != nil {
		return nil, fmt.Errorf("count monthly accruals: %w", err)
	}

	record := overtime.Record{
		AttendanceID:        session.ID,
		EmpCode:             session.EmpCode,
		WorkDate:            workDate,
		ExtraHours:          extraHours,
		CompOffDays:         compOffDays,
		Status:              overtime.RecordEligible,
		RequiresCMDApproval: monthCount+1 > s.policy.MonthlyDirectLimit,
		ExpiresOn:           workDate.AddDate(0, 0, s.policy.CompOffExpiryDays),
		RecordingDeadline:   workDate.AddDate(0, 0, s.policy.RecordingWindowDays),
	}

	created, err := s.repo.CreateRecord(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("create overtime record: %w", err)
	}

	slog.Info("comp-off accrued",
		"emp_code", created.EmpCode,
		"attendance_id", created.AttendanceID,
		"extra_hours", created.ExtraHours,
		"comp_off_days", created.CompOffDays,
		"cmd_approval", created.RequiresCMDApproval,
	)
	return &created, nil
}

// hoursOutsideShift sums time worked before the shift start and after the
// shift end. Shift lookup failures fall back to the configured defaults.
func (s *OvertimeServiceImpl) hoursOutsideShift(ctx context.Context, session attendance.Session, day time.Time) float64 {
	shift := s.resolveShift(ctx, session.EmpCode)

	saturdayHalf := s.workdays.IsSaturdayHalfDay(day)
	shiftStart := shift.StartOn(day, s.loc)
	shiftEnd := shift.EndOn(day, saturdayHalf, s.loc)

	var extra float64
	if session.LoginTime.Before(shiftStart) {
		extra += shiftStart.Sub(session.LoginTime).Hours()
	}
	if session.LogoutTime.After(shiftEnd) {
		extra += session.LogoutTime.Sub(shiftEnd).Hours()
	}
	return extra
}

func (s *OvertimeServiceImpl) resolveShift(ctx context.Context, empCode string) employee.Shift {
	fallback := employee.Shift{
		StartTime:       s.policy.ShiftStart,
		EndTime:         s.policy.ShiftEnd,
		SaturdayEndTime: s.policy.SaturdayShiftEnd,
	}

	emp, err := s.employees.GetByEmpCode(ctx, empCode)
	if err != nil {
		return fallback
	}
	if emp.ShiftID != nil {
		if shift, err := s.shifts.GetByID(ctx, *emp.ShiftID); err == nil {
			return shift
		}
	}
	if shift, err := s.shifts.GetDefault(ctx); err == nil {
		return shift
	}
	return fallback
}

func compOffDaysFor(extraHours float64, policy config.AttendanceConfig) float64 {
	switch {
	case extraHours > policy.FullDayThresholdHours:
		return 1.0
	case extraHours > policy.HalfDayThresholdHours:
		return 0.5
	}
	return 0
}

// Records implements overtime.Service.
func (s *OvertimeServiceImpl) Records(ctx context.Context, empCode string) ([]overtime.RecordResponse, error) {
	if _, err := s.repo.ExpireRecords(ctx, s.now()); err != nil {
		return nil, fmt.Errorf("expire stale records: %w", err)
	}

	records, err := s.repo.ListRecordsByEmployee(ctx, empCode, nil)
	if err != nil {
		return nil, fmt.Errorf("list overtime records: %w", err)
	}

	responses := make([]overtime.RecordResponse, 0, len(records))
	for _, r := range records {
		responses = append(responses, overtime.ToRecordResponse(r))
	}
	return responses, nil
}

// RequestCompOff implements overtime.Service.
func (s *OvertimeServiceImpl) RequestCompOff(ctx context.Context, req overtime.RequestCompOffRequest) (overtime.CompOffResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.CompOffResponse{}, err
	}
	now := s.now()

	records := make([]overtime.Record, 0, len(req.RecordIDs))
	for _, id := range req.RecordIDs {
		record, err := s.repo.GetRecordByID(ctx, id)
		if err != nil {
			return overtime.CompOffResponse{}, err
		}
		if record.EmpCode != req.EmpCode {
			return overtime.CompOffResponse{}, overtime.ErrRecordNotFound
		}
		if record.Status != overtime.RecordEligible {
			return overtime.CompOffResponse{}, overtime.ErrRecordNotEligible
		}
		if now.After(record.ExpiresOn.AddDate(0, 0, 1)) || now.After(record.RecordingDeadline.AddDate(0, 0, 1)) {
			return overtime.CompOffResponse{}, overtime.ErrRecordExpired
		}
		records = append(records, record)
	}

	approver, err := s.resolveApprover(ctx, req.EmpCode)
	if err != nil {
		return overtime.CompOffResponse{}, err
	}

	var totalDays float64
	for _, r := range records {
		totalDays += r.CompOffDays
	}

	var created overtime.CompOffRequest
	err = s.inTransaction(ctx, func(ctx context.Context) error {
		created, err = s.repo.CreateRequest(ctx, overtime.CompOffRequest{
			EmpCode:      req.EmpCode,
			TotalDays:    totalDays,
			Status:       overtime.RequestPending,
			ApproverCode: approver,
			Reason:       req.Reason,
		})
		if err != nil {
			return fmt.Errorf("create comp-off request: %w", err)
		}
		for i := range records {
			records[i].Status = overtime.RecordRequested
			records[i].CompOffRequestID = &created.ID
			if err := s.repo.UpdateRecord(ctx, records[i]); err != nil {
				return fmt.Errorf("attach record to request: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return overtime.CompOffResponse{}, err
	}

	return overtime.ToCompOffResponse(created, records), nil
}

func (s *OvertimeServiceImpl) resolveApprover(ctx context.Context, empCode string) (string, error) {
	emp, err := s.employees.GetByEmpCode(ctx, empCode)
	if err != nil {
		return "", fmt.Errorf("resolve approver: %w", err)
	}
	if emp.ManagerCode != nil && *emp.ManagerCode != "" {
		return *emp.ManagerCode, nil
	}
	if emp.InformingManagerCode != nil && *emp.InformingManagerCode != "" {
		return *emp.InformingManagerCode, nil
	}
	return "", fmt.Errorf("employee %s has no assigned approver", empCode)
}

// ReviewCompOff implements overtime.Service.
func (s *OvertimeServiceImpl) ReviewCompOff(ctx context.Context, req overtime.ReviewCompOffRequest) (overtime.CompOffResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, req.ID)
	if err != nil {
		return overtime.CompOffResponse{}, err
	}
	if request.Status != overtime.RequestPending {
		return overtime.CompOffResponse{}, overtime.ErrRequestAlreadyReviewed
	}
	if err := s.checkReviewer(ctx, request, req.ReviewerID); err != nil {
		return overtime.CompOffResponse{}, err
	}

	now := s.now()
	request.ReviewedBy = &req.ReviewerID
	request.ReviewedAt = &now
	request.ReviewComment = req.Comment
	if req.Approve {
		request.Status = overtime.RequestApproved
	} else {
		request.Status = overtime.RequestRejected
	}

	records, err := s.repo.ListRecordsByRequest(ctx, request.ID)
	if err != nil {
		return overtime.CompOffResponse{}, fmt.Errorf("list request records: %w", err)
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateRequest(ctx, request); err != nil {
			return err
		}
		for i := range records {
			if req.Approve {
				records[i].Status = overtime.RecordApproved
			} else {
				records[i].Status = overtime.RecordRejected
			}
			if err := s.repo.UpdateRecord(ctx, records[i]); err != nil {
				return fmt.Errorf("update record status: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return overtime.CompOffResponse{}, err
	}

	return overtime.ToCompOffResponse(request, records), nil
}

// checkReviewer allows the assigned approver, or a CMD-role employee when
// the request carries a record past the monthly direct limit.
func (s *OvertimeServiceImpl) checkReviewer(ctx context.Context, request overtime.CompOffRequest, reviewer string) error {
	if reviewer == request.ApproverCode {
		return nil
	}
	emp, err := s.employees.GetByEmpCode(ctx, reviewer)
	if err != nil {
		return overtime.ErrNotAssignedApprover
	}
	if emp.Role == employee.RoleCMD {
		return nil
	}
	return overtime.ErrNotAssignedApprover
}

// CancelCompOff implements overtime.Service.
func (s *OvertimeServiceImpl) CancelCompOff(ctx context.Context, empCode string, requestID int64) (overtime.CompOffResponse, error) {
	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return overtime.CompOffResponse{}, err
	}
	if request.EmpCode != empCode {
		return overtime.CompOffResponse{}, overtime.ErrRequestNotFound
	}
	if request.Status != overtime.RequestPending {
		return overtime.CompOffResponse{}, overtime.ErrRequestNotPending
	}

	request.Status = overtime.RequestCancelled

	records, err := s.repo.ListRecordsByRequest(ctx, request.ID)
	if err != nil {
		return overtime.CompOffResponse{}, fmt.Errorf("list request records: %w", err)
	}

	err = s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.UpdateRequest(ctx, request); err != nil {
			return err
		}
		for i := range records {
			records[i].Status = overtime.RecordEligible
			records[i].CompOffRequestID = nil
			if err := s.repo.UpdateRecord(ctx, records[i]); err != nil {
				return fmt.Errorf("release record: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return overtime.CompOffResponse{}, err
	}

	return overtime.ToCompOffResponse(request, records), nil
}

// MyCompOffRequests implements overtime.Service.
func (s *OvertimeServiceImpl) MyCompOffRequests(ctx context.Context, empCode string) ([]overtime.CompOffResponse, error) {
	requests, err := s.repo.ListRequestsByEmployee(ctx, empCode)
	if err != nil {
		return nil, fmt.Errorf("list comp-off requests: %w", err)
	}
	return s.expandRequests(ctx, requests)
}

// TeamCompOffRequests implements overtime.Service.
func (s *OvertimeServiceImpl) TeamCompOffRequests(ctx context.Context, approverCode string) ([]overtime.CompOffResponse, error) {
	requests, err := s.repo.ListRequestsByApprover(ctx, approverCode)
	if err != nil {
		return nil, fmt.Errorf("list comp-off requests: %w", err)
	}
	return s.expandRequests(ctx, requests)
}

func (s *OvertimeServiceImpl) expandRequests(ctx context.Context, requests []overtime.CompOffRequest) ([]overtime.CompOffResponse, error) {
	responses := make([]overtime.CompOffResponse, 0, len(requests))
	for _, req := range requests {
		records, err := s.repo.ListRecordsByRequest(ctx, req.ID)
		if err != nil {
			return nil, fmt.Errorf("list request records: %w", err)
		}
		responses = append(responses, overtime.ToCompOffResponse(req, records))
	}
	return responses, nil
}

// ExpireSweep implements overtime.Service.
func (s *OvertimeServiceImpl) ExpireSweep(ctx context.Context) (int, error) {
	return s.repo.ExpireRecords(ctx, s.now())
}
