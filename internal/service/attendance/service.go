package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/config"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/employee"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/exception"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geocode"
	"github.com/fieldforce-hq/attendance-backend-go/internal/repository/postgresql"
	"github.com/fieldforce-hq/attendance-backend-go/internal/service/workday"
)

type AttendanceServiceImpl struct {
	db         *database.DB
	sessions   attendance.SessionRepository
	employees  employee.EmployeeRepository
	shifts     employee.ShiftRepository
	activities activity.ActivityRepository
	visits     fieldvisit.FieldVisitRepository
	workdays   workday.Classifier
	exceptions exception.Service
	accrual    overtime.Service
	geocoder   geocode.Service
	policy     config.AttendanceConfig
	loc        *time.Location
	now        func() time.Time
}

func NewAttendanceService(
	db *database.DB,
	sessions attendance.SessionRepository,
	employees employee.EmployeeRepository,
	shifts employee.ShiftRepository,
	activities activity.ActivityRepository,
	visits fieldvisit.FieldVisitRepository,
	workdays workday.Classifier,
	exceptions exception.Service,
	accrual overtime.Service,
	geocoder geocode.Service,
	policy config.AttendanceConfig,
	loc *time.Location,
) *AttendanceServiceImpl {
	return &AttendanceServiceImpl{
		db:         db,
		sessions:   sessions,
		employees:  employees,
		shifts:     shifts,
		activities: activities,
		visits:     visits,
		workdays:   workdays,
		exceptions: exceptions,
		accrual:    accrual,
		geocoder:   geocoder,
		policy:     policy,
		loc:        loc,
		now:        time.Now,
	}
}

func (s *AttendanceServiceImpl) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.db == nil {
		return fn(ctx)
	}
	return postgresql.WithTransaction(ctx, s.db, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, "tx", tx))
	})
}

// ClockIn implements attendance.Service.
func (s *AttendanceServiceImpl) ClockIn(ctx context.Context, req attendance.ClockInRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	emp, err := s.employees.GetByEmpCode(ctx, req.EmpCode)
	if err != nil {
		return attendance.SessionResponse{}, err
	}
	if !emp.IsActive {
		return attendance.SessionResponse{}, employee.ErrEmployeeInactive
	}

	coord := geo.Coordinate{Lat: req.Latitude, Lon: req.Longitude}
	if !coord.Valid() {
		return attendance.SessionResponse{}, attendance.ErrInvalidLocation
	}

	open, err := s.sessions.GetOpenSession(ctx, req.EmpCode)
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("check open session: %w", err)
	}
	if open != nil {
		return attendance.SessionResponse{}, attendance.ErrAlreadyActiveSession
	}

	now := s.now().In(s.loc)
	working, reason := s.workdays.Classify(ctx, now)

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	hasSession, err := s.sessions.HasSessionOnDate(ctx, req.EmpCode, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("check sessions today: %w", err)
	}

	session := attendance.Session{
		EmpCode:       req.EmpCode,
		LoginTime:     now,
		LoginLocation: coord,
		LoginAddress:  s.geocoder.ReverseGeocode(ctx, coord),
	}

	switch {
	case !working:
		// Non-working days allow exactly one session, comp-off eligible.
		if hasSession {
			return attendance.SessionResponse{}, attendance.ErrSingleClockInOnly
		}
		session.IsCompOffEligible = true
	case hasSession:
		// Second session on a working day earns comp-off; lateness only
		// applies to the first.
		session.IsCompOffEligible = true
	default:
		shift := s.resolveShift(ctx, emp)
		deadline := shift.StartOn(now, s.loc).Add(time.Duration(s.policy.GraceMinutes) * time.Minute)
		if now.After(deadline) {
			session.IsLateArrival = true
			session.LateByMinutes = int(now.Sub(deadline).Minutes())
		}
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	slog.Info("clock-in",
		"emp_code", created.EmpCode,
		"session_id", created.ID,
		"working_day", working,
		"day_type", reason,
		"late", created.IsLateArrival,
	)
	return toSessionResponse(created, working, reason), nil
}

// ClockOut implements attendance.Service.
func (s *AttendanceServiceImpl) ClockOut(ctx context.Context, req attendance.ClockOutRequest) (attendance.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.SessionResponse{}, err
	}

	open, err := s.sessions.GetOpenSession(ctx, req.EmpCode)
	if err != nil {
		return attendance.SessionResponse{}, fmt.Errorf("get open session: %w", err)
	}
	if open == nil {
		return attendance.SessionResponse{}, s.noOpenSessionError(ctx, req.EmpCode)
	}

	coord := geo.Coordinate{Lat: req.Latitude, Lon: req.Longitude}
	if !coord.Valid() {
		return attendance.SessionResponse{}, attendance.ErrInvalidLocation
	}

	now := s.now().In(s.loc)
	loginLocal := open.LoginTime.In(s.loc)
	working, reason := s.workdays.Classify(ctx, loginLocal)

	// Comp-off sessions close freely; the shift window only binds the
	// first session of a working day.
	if working && !open.IsCompOffEligible {
		emp, err := s.employees.GetByEmpCode(ctx, req.EmpCode)
		if err != nil {
			return attendance.SessionResponse{}, err
		}
		shift := s.resolveShift(ctx, emp)
		shiftEnd := shift.EndOn(loginLocal, s.workdays.IsSaturdayHalfDay(loginLocal), s.loc)

		if now.Before(shiftEnd) {
			allowed, _, err := s.exceptions.CheckEarlyLeaveApproval(ctx, req.EmpCode, now)
			if err != nil {
				return attendance.SessionResponse{}, err
			}
			if !allowed {
				return attendance.SessionResponse{}, &attendance.EarlyLeaveError{
					EarlyByMinutes: int(shiftEnd.Sub(now).Minutes()),
				}
			}
		}
	}

	closed, err := s.closeSession(ctx, *open, now, coord, false, "")
	if err != nil {
		return attendance.SessionResponse{}, err
	}

	slog.Info("clock-out",
		"emp_code", closed.EmpCode,
		"session_id", closed.ID,
		"total_hours", *closed.TotalHours,
	)
	return toSessionResponse(closed, working, reason), nil
}

// noOpenSessionError distinguishes a session the sweep already closed
// from never having clocked in, returning the recorded closure details.
func (s *AttendanceServiceImpl) noOpenSessionError(ctx context.Context, empCode string) error {
	now := s.now().In(s.loc)
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	autoClosed, err := s.sessions.GetAutoClosedOnDate(ctx, empCode, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("check auto-closed session: %w", err)
	}
	if autoClosed != nil && autoClosed.LogoutTime != nil {
		return &attendance.AutoClockedOutError{
			LogoutTime: *autoClosed.LogoutTime,
			Reason:     autoClosed.AutoClockoutReason,
		}
	}
	return attendance.ErrNoActiveSession
}

// closeSession force-closes whatever is still open under the session and
// writes the logout fields, both in one transaction, then runs comp-off
// accrual. Accrual failure never unwinds the close; it is logged and left
// for the next sweep.
func (s *AttendanceServiceImpl) closeSession(ctx context.Context, session attendance.Session, at time.Time, coord geo.Coordinate, auto bool, reason string) (attendance.Session, error) {
	hours := at.Sub(session.LoginTime).Hours()
	session.LogoutTime = &at
	session.LogoutLocation = &coord
	session.LogoutAddress = s.geocoder.ReverseGeocode(ctx, coord)
	session.TotalHours = &hours
	session.AutoClockout = auto
	session.AutoClockoutReason = reason

	err := s.inTransaction(ctx, func(ctx context.Context) error {
		if err := s.closeOpenWork(ctx, session, at); err != nil {
			return err
		}
		if err := s.sessions.Update(ctx, session); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		return nil
	})
	if err != nil {
		return attendance.Session{}, err
	}

	if _, err := s.accrual.Accrue(ctx, session); err != nil {
		slog.Error("comp-off accrual failed", "session_id", session.ID, "error", err)
	}
	return session, nil
}

// closeOpenWork ends the session's active activity and any active field
// visit at the logout instant, so nothing outlives its session. A
// distance alert ends as cleared, everything else as completed.
func (s *AttendanceServiceImpl) closeOpenWork(ctx context.Context, session attendance.Session, at time.Time) error {
	active, err := s.activities.GetActiveBySession(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("find open activity: %w", err)
	}
	if active != nil {
		duration := int(at.Sub(active.StartTime).Minutes())
		active.EndTime = &at
		active.DurationMinutes = &duration
		if active.Type == activity.TypeDistanceAlert {
			active.Status = activity.StatusCleared
		} else {
			active.Status = activity.StatusCompleted
		}
		if err := s.activities.Update(ctx, *active); err != nil {
			return fmt.Errorf("force-close activity: %w", err)
		}
	}

	visit, err := s.visits.GetActiveVisit(ctx, session.EmpCode)
	if err != nil {
		return fmt.Errorf("find open field visit: %w", err)
	}
	if visit != nil {
		visit.Status = fieldvisit.StatusCompleted
		visit.EndTime = &at
		if err := s.visits.UpdateVisit(ctx, *visit); err != nil {
			return fmt.Errorf("force-close field visit: %w", err)
		}
	}
	return nil
}

// Status implements attendance.Service.
func (s *AttendanceServiceImpl) Status(ctx context.Context, empCode string) (attendance.StatusResponse, error) {
	open, err := s.sessions.GetOpenSession(ctx, empCode)
	if err != nil {
		return attendance.StatusResponse{}, fmt.Errorf("get open session: %w", err)
	}

	now := s.now().In(s.loc)
	working, reason := s.workdays.Classify(ctx, now)

	if open != nil {
		resp := toSessionResponse(*open, working, reason)
		return attendance.StatusResponse{
			IsLoggedIn:     true,
			CurrentSession: &resp,
			CanClockOut:    true,
		}, nil
	}

	canClockIn := true
	message := ""
	if !working {
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
		hasSession, err := s.sessions.HasSessionOnDate(ctx, empCode, dayStart, dayStart.AddDate(0, 0, 1))
		if err != nil {
			return attendance.StatusResponse{}, fmt.Errorf("check sessions today: %w", err)
		}
		if hasSession {
			canClockIn = false
			message = "non-working days allow a single session"
		}
	}

	return attendance.StatusResponse{
		CanClockIn: canClockIn,
		Message:    message,
	}, nil
}

// History implements attendance.Service.
func (s *AttendanceServiceImpl) History(ctx context.Context, filter attendance.HistoryFilter) (attendance.HistoryResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.HistoryResponse{}, err
	}

	sessions, err := s.sessions.ListRecent(ctx, filter.EmpCode, filter.Limit)
	if err != nil {
		return attendance.HistoryResponse{}, fmt.Errorf("list sessions: %w", err)
	}

	resp := attendance.HistoryResponse{Sessions: make([]attendance.SessionResponse, 0, len(sessions))}
	for _, session := range sessions {
		working, reason := s.workdays.Classify(ctx, session.LoginTime.In(s.loc))
		resp.Sessions = append(resp.Sessions, toSessionResponse(session, working, reason))
		if session.TotalHours != nil {
			resp.TotalHours += *session.TotalHours
		}
	}
	return resp, nil
}

// AutoClockOut implements attendance.Service. Each open session closes at
// its own day's cutoff, reusing the login location since no fresh GPS fix
// exists. A failure on one session does not stop the rest.
func (s *AttendanceServiceImpl) AutoClockOut(ctx context.Context) (int, error) {
	sessions, err := s.sessions.ListOpenSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("list open sessions: %w", err)
	}

	now := s.now().In(s.loc)
	closed := 0
	for _, session := range sessions {
		cutoff := s.cutoffFor(ctx, session)
		if now.Before(cutoff) {
			continue
		}
		if _, err := s.closeSession(ctx, session, cutoff, session.LoginLocation, true, "shift end reached without clock-out"); err != nil {
			slog.Error("auto clock-out failed", "session_id", session.ID, "emp_code", session.EmpCode, "error", err)
			continue
		}
		closed++
	}

	if closed > 0 {
		slog.Info("auto clock-out sweep", "closed", closed, "open", len(sessions))
	}
	return closed, nil
}

// cutoffFor is the forced-logout moment for a session: the shift end of
// its login day. If that lies before the login (long-stale session), the
// login time itself is used so hours never go negative.
func (s *AttendanceServiceImpl) cutoffFor(ctx context.Context, session attendance.Session) time.Time {
	loginLocal := session.LoginTime.In(s.loc)

	var shift employee.Shift
	if emp, err := s.employees.GetByEmpCode(ctx, session.EmpCode); err == nil {
		shift = s.resolveShift(ctx, emp)
	} else {
		shift = s.fallbackShift()
	}

	cutoff := shift.EndOn(loginLocal, s.workdays.IsSaturdayHalfDay(loginLocal), s.loc)
	if cutoff.Before(session.LoginTime) {
		return session.LoginTime
	}
	return cutoff
}

func (s *AttendanceServiceImpl) resolveShift(ctx context.Context, emp employee.Employee) employee.Shift {
	if emp.ShiftID != nil {
		if shift, err := s.shifts.GetByID(ctx, *emp.ShiftID); err == nil {
			return shift
		}
	}
	if shift, err := s.shifts.GetDefault(ctx); err == nil {
		return shift
	}
	return s.fallbackShift()
}

func (s *AttendanceServiceImpl) fallbackShift() employee.Shift {
	return employee.Shift{
		StartTime:       s.policy.ShiftStart,
		EndTime:         s.policy.ShiftEnd,
		SaturdayEndTime: s.policy.SaturdayShiftEnd,
	}
}

func toSessionResponse(session attendance.Session, working bool, reason string) attendance.SessionResponse {
	resp := attendance.SessionResponse{
		ID:                 session.ID,
		EmpCode:            session.EmpCode,
		LoginTime:          session.LoginTime.Format(time.RFC3339),
		LoginAddress:       session.LoginAddress,
		TotalHours:         session.TotalHours,
		IsCompOffEligible:  session.IsCompOffEligible,
		IsLateArrival:      session.IsLateArrival,
		LateByMinutes:      session.LateByMinutes,
		AutoClockout:       session.AutoClockout,
		AutoClockoutReason: session.AutoClockoutReason,
		IsWorkingDay:       working,
		DayTypeReason:      reason,
	}
	if session.LogoutTime != nil {
		s := session.LogoutTime.Format(time.RFC3339)
		resp.LogoutTime = &s
	}
	if session.LogoutAddress != "" {
		addr := session.LogoutAddress
		resp.LogoutAddress = &addr
	}
	return resp
}
