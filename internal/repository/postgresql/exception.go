package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/exception"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
)

type exceptionRepositoryImpl struct {
	db *database.DB
}

func NewExceptionRepository(db *database.DB) exception.ExceptionRepository {
	return &exceptionRepositoryImpl{db: db}
}

const exceptionColumns = `id, emp_code, attendance_id, exception_type, exception_date, planned_time,
	minutes, reason, status, approver_code, reviewed_by, reviewed_at, review_comment, created_at`

func scanException(row pgx.Row) (exception.Exception, error) {
	var (
		e       exception.Exception
		comment *string
	)
	err := row.Scan(
		&e.ID,
		&e.EmpCode,
		&e.AttendanceID,
		&e.Type,
		&e.Date,
		&e.PlannedTime,
		&e.Minutes,
		&e.Reason,
		&e.Status,
		&e.ApproverCode,
		&e.ReviewedBy,
		&e.ReviewedAt,
		&comment,
		&e.CreatedAt,
	)
	if err != nil {
		return exception.Exception{}, err
	}
	if comment != nil {
		e.ReviewComment = *comment
	}
	return e, nil
}

func (r *exceptionRepositoryImpl) Create(ctx context.Context, e exception.Exception) (exception.Exception, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO attendance_exceptions (emp_code, attendance_id, exception_type, exception_date,
			planned_time, minutes, reason, status, approver_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		e.EmpCode,
		e.AttendanceID,
		e.Type,
		e.Date,
		e.PlannedTime,
		e.Minutes,
		e.Reason,
		e.Status,
		e.ApproverCode,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "ux_exceptions_pending") {
			return exception.Exception{}, exception.ErrDuplicatePending
		}
		return exception.Exception{}, fmt.Errorf("create exception: %w", err)
	}
	return e, nil
}

func (r *exceptionRepositoryImpl) GetByID(ctx context.Context, id int64) (exception.Exception, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + exceptionColumns + ` FROM attendance_exceptions WHERE id = $1`

	e, err := scanException(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return exception.Exception{}, exception.ErrExceptionNotFound
		}
		return exception.Exception{}, fmt.Errorf("get exception: %w", err)
	}
	return e, nil
}

func (r *exceptionRepositoryImpl) Update(ctx context.Context, e exception.Exception) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE attendance_exceptions
		SET status = $2, reviewed_by = $3, reviewed_at = $4, review_comment = $5, attendance_id = $6
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, e.ID, e.Status, e.ReviewedBy, e.ReviewedAt, e.ReviewComment, e.AttendanceID)
	if err != nil {
		return fmt.Errorf("update exception: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return exception.ErrExceptionNotFound
	}
	return nil
}

func (r *exceptionRepositoryImpl) ListByEmployee(ctx context.Context, empCode string) ([]exception.Exception, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + exceptionColumns + ` FROM attendance_exceptions WHERE emp_code = $1 ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, empCode)
	if err != nil {
		return nil, fmt.Errorf("list exceptions: %w", err)
	}
	defer rows.Close()

	return collectExceptions(rows)
}

func (r *exceptionRepositoryImpl) ListByApprover(ctx context.Context, approverCode string, status *exception.Status) ([]exception.Exception, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + exceptionColumns + ` FROM attendance_exceptions WHERE approver_code = $1`
	args := []interface{}{approverCode}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list exceptions by approver: %w", err)
	}
	defer rows.Close()

	return collectExceptions(rows)
}

func (r *exceptionRepositoryImpl) GetApprovedEarlyLeave(ctx context.Context, empCode string, date time.Time) (*exception.Exception, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT ` + exceptionColumns + `
		FROM attendance_exceptions
		WHERE emp_code = $1 AND exception_date = $2 AND exception_type = 'early_leave' AND status = 'approved'
		ORDER BY reviewed_at DESC
		LIMIT 1
	`

	e, err := scanException(q.QueryRow(ctx, query, empCode, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get approved early leave: %w", err)
	}
	return &e, nil
}

func collectExceptions(rows pgx.Rows) ([]exception.Exception, error) {
	var exceptions []exception.Exception
	for rows.Next() {
		e, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("scan exception: %w", err)
		}
		exceptions = append(exceptions, e)
	}
	return exceptions, rows.Err()
}
