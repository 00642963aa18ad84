package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/leave"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

const leaveColumns = `id, emp_code, leave_type, start_date, end_date, reason, status, approver_code, reviewed_by, reviewed_at, created_at`

func scanLeave(row pgx.Row) (leave.LeaveRequest, error) {
	var (
		l      leave.LeaveRequest
		reason *string
	)
	err := row.Scan(
		&l.ID,
		&l.EmpCode,
		&l.LeaveType,
		&l.StartDate,
		&l.EndDate,
		&reason,
		&l.Status,
		&l.ApproverCode,
		&l.ReviewedBy,
		&l.ReviewedAt,
		&l.CreatedAt,
	)
	if err != nil {
		return leave.LeaveRequest{}, err
	}
	if reason != nil {
		l.Reason = *reason
	}
	return l, nil
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO leave_requests (emp_code, leave_type, start_date, end_date, reason, status, approver_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		request.EmpCode,
		request.LeaveType,
		request.StartDate,
		request.EndDate,
		request.Reason,
		request.Status,
		request.ApproverCode,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("create leave request: %w", err)
	}
	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id int64) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE id = $1`

	l, err := scanLeave(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, fmt.Errorf("get leave request: %w", err)
	}
	return l, nil
}

func (r *leaveRequestRepositoryImpl) ListByEmployee(ctx context.Context, empCode string) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE emp_code = $1 ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, empCode)
	if err != nil {
		return nil, fmt.Errorf("list leave requests: %w", err)
	}
	defer rows.Close()

	return collectLeaves(rows)
}

func (r *leaveRequestRepositoryImpl) ListByApprover(ctx context.Context, approverCode string, status *leave.Status) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + leaveColumns + ` FROM leave_requests WHERE approver_code = $1`
	args := []interface{}{approverCode}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list leave requests by approver: %w", err)
	}
	defer rows.Close()

	return collectLeaves(rows)
}

func (r *leaveRequestRepositoryImpl) UpdateStatus(ctx context.Context, id int64, status leave.Status, reviewedBy string, reviewedAt time.Time) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE leave_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, id, status, reviewedBy, reviewedAt)
	if err != nil {
		return fmt.Errorf("update leave request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrLeaveRequestNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) HasApprovedLeaveOn(ctx context.Context, empCode string, date time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE emp_code = $1 AND status = 'approved' AND start_date <= $2 AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, empCode, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("check approved leave: %w", err)
	}
	return exists, nil
}

func (r *leaveRequestRepositoryImpl) HasOverlapping(ctx context.Context, empCode string, start, end time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leave_requests
			WHERE emp_code = $1 AND status IN ('pending', 'approved')
			  AND start_date <= $3 AND end_date >= $2
		)
	`

	var exists bool
	if err := q.QueryRow(ctx, query, empCode, start, end).Scan(&exists); err != nil {
		return false, fmt.Errorf("check overlapping leave: %w", err)
	}
	return exists, nil
}

func collectLeaves(rows pgx.Rows) ([]leave.LeaveRequest, error) {
	var requests []leave.LeaveRequest
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, fmt.Errorf("scan leave request: %w", err)
		}
		requests = append(requests, l)
	}
	return requests, rows.Err()
}
