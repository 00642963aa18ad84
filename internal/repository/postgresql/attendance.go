package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type attendanceRepositoryImpl struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.SessionRepository {
	return &attendanceRepositoryImpl{db: db}
}

const sessionColumns = `id, emp_code, login_time, logout_time, login_location, logout_location,
	login_address, logout_address, total_hours, is_comp_off_eligible, is_late_arrival,
	late_by_minutes, auto_clockout, auto_clockout_reason, created_at`

// scanSession decodes one attendance row, parsing the stored "lat, lon"
// location strings into coordinates.
func scanSession(row pgx.Row) (attendance.Session, error) {
	var (
		s          attendance.Session
		loginLoc   string
		logoutLoc  *string
		loginAddr  *string
		logoutAddr *string
		autoReason *string
	)
	err := row.Scan(
		&s.ID,
		&s.EmpCode,
		&s.LoginTime,
		&s.LogoutTime,
		&loginLoc,
		&logoutLoc,
		&loginAddr,
		&logoutAddr,
		&s.TotalHours,
		&s.IsCompOffEligible,
		&s.IsLateArrival,
		&s.LateByMinutes,
		&s.AutoClockout,
		&autoReason,
		&s.CreatedAt,
	)
	if err != nil {
		return attendance.Session{}, err
	}

	if s.LoginLocation, err = geo.ParseCoordinate(loginLoc); err != nil {
		return attendance.Session{}, fmt.Errorf("parse login location: %w", err)
	}
	if logoutLoc != nil {
		c, err := geo.ParseCoordinate(*logoutLoc)
		if err != nil {
			return attendance.Session{}, fmt.Errorf("parse logout location: %w", err)
		}
		s.LogoutLocation = &c
	}
	if loginAddr != nil {
		s.LoginAddress = *loginAddr
	}
	if logoutAddr != nil {
		s.LogoutAddress = *logoutAddr
	}
	if autoReason != nil {
		s.AutoClockoutReason = *autoReason
	}
	return s, nil
}

func (r *attendanceRepositoryImpl) Create(ctx context.Context, session attendance.Session) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO attendance (emp_code, login_time, login_location, login_address,
			is_comp_off_eligible, is_late_arrival, late_by_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		session.EmpCode,
		session.LoginTime,
		session.LoginLocation.String(),
		session.LoginAddress,
		session.IsCompOffEligible,
		session.IsLateArrival,
		session.LateByMinutes,
	).Scan(&session.ID, &session.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "ux_attendance_open_session") {
			return attendance.Session{}, attendance.ErrAlreadyActiveSession
		}
		return attendance.Session{}, fmt.Errorf("create session: %w", err)
	}
	return session, nil
}

func (r *attendanceRepositoryImpl) GetByID(ctx context.Context, id int64) (attendance.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + sessionColumns + ` FROM attendance WHERE id = $1`

	s, err := scanSession(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, fmt.Errorf("get session: %w", err)
	}
	return s, nil
}

func (r *attendanceRepositoryImpl) GetOpenSession(ctx context.Context, empCode string) (*attendance.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + sessionColumns + ` FROM attendance WHERE emp_code = $1 AND logout_time IS NULL`

	s, err := scanSession(q.QueryRow(ctx, query, empCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get open session: %w", err)
	}
	return &s, nil
}

func (r *attendanceRepositoryImpl) HasSessionOnDate(ctx context.Context, empCode string, dayStart, dayEnd time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendance
			WHERE emp_code = $1 AND login_time >= $2 AND login_time < $3
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, empCode, dayStart, dayEnd).Scan(&exists); err != nil {
		return false, fmt.Errorf("check session on date: %w", err)
	}
	return exists, nil
}

func (r *attendanceRepositoryImpl) GetAutoClosedOnDate(ctx context.Context, empCode string, dayStart, dayEnd time.Time) (*attendance.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + sessionColumns + ` FROM attendance
		WHERE emp_code = $1 AND login_time >= $2 AND login_time < $3 AND auto_clockout
		ORDER BY login_time DESC LIMIT 1`

	s, err := scanSession(q.QueryRow(ctx, query, empCode, dayStart, dayEnd))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get auto-closed session: %w", err)
	}
	return &s, nil
}

func (r *attendanceRepositoryImpl) Update(ctx context.Context, session attendance.Session) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE attendance
		SET logout_time = $2, logout_location = $3, logout_address = $4,
			total_hours = $5, is_comp_off_eligible = $6, is_late_arrival = $7,
			late_by_minutes = $8, auto_clockout = $9, auto_clockout_reason = $10
		WHERE id = $1
	`

	var logoutLoc *string
	if session.LogoutLocation != nil {
		s := session.LogoutLocation.String()
		logoutLoc = &s
	}
	var logoutAddr *string
	if session.LogoutAddress != "" {
		logoutAddr = &session.LogoutAddress
	}
	var autoReason *string
	if session.AutoClockoutReason != "" {
		autoReason = &session.AutoClockoutReason
	}

	tag, err := q.Exec(ctx, query,
		session.ID,
		session.LogoutTime,
		logoutLoc,
		logoutAddr,
		session.TotalHours,
		session.IsCompOffEligible,
		session.IsLateArrival,
		session.LateByMinutes,
		session.AutoClockout,
		autoReason,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrSessionNotFound
	}
	return nil
}

func (r *attendanceRepositoryImpl) ListRecent(ctx context.Context, empCode string, limit int) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + sessionColumns + ` FROM attendance WHERE emp_code = $1 ORDER BY login_time DESC LIMIT $2`

	rows, err := q.Query(ctx, query, empCode, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

func (r *attendanceRepositoryImpl) ListOpenSessions(ctx context.Context) ([]attendance.Session, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + sessionColumns + ` FROM attendance WHERE logout_time IS NULL ORDER BY login_time`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	defer rows.Close()

	var sessions []attendance.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
