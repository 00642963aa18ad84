package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/overtime"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
)

type overtimeRepositoryImpl struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepositoryImpl{db: db}
}

const recordColumns = `id, attendance_id, emp_code, work_date, extra_hours, compoff_days, status,
	requires_cmd_approval, expires_on, recording_deadline, compoff_request_id, created_at`

func scanRecord(row pgx.Row) (overtime.Record, error) {
	var rec overtime.Record
	err := row.Scan(
		&rec.ID,
		&rec.AttendanceID,
		&rec.EmpCode,
		&rec.WorkDate,
		&rec.ExtraHours,
		&rec.CompOffDays,
		&rec.Status,
		&rec.RequiresCMDApproval,
		&rec.ExpiresOn,
		&rec.RecordingDeadline,
		&rec.CompOffRequestID,
		&rec.CreatedAt,
	)
	return rec, err
}

func (r *overtimeRepositoryImpl) CreateRecord(ctx context.Context, record overtime.Record) (overtime.Record, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO overtime_records (attendance_id, emp_code, work_date, extra_hours, compoff_days,
			status, requires_cmd_approval, expires_on, recording_deadline)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		record.AttendanceID,
		record.EmpCode,
		record.WorkDate,
		record.ExtraHours,
		record.CompOffDays,
		record.Status,
		record.RequiresCMDApproval,
		record.ExpiresOn,
		record.RecordingDeadline,
	).Scan(&record.ID, &record.CreatedAt)
	if err != nil {
		return overtime.Record{}, fmt.Errorf("create overtime record: %w", err)
	}
	return record, nil
}

func (r *overtimeRepositoryImpl) GetRecordByID(ctx context.Context, id int64) (overtime.Record, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + recordColumns + ` FROM overtime_records WHERE id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.Record{}, overtime.ErrRecordNotFound
		}
		return overtime.Record{}, fmt.Errorf("get overtime record: %w", err)
	}
	return rec, nil
}

func (r *overtimeRepositoryImpl) GetRecordByAttendance(ctx context.Context, attendanceID int64) (*overtime.Record, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + recordColumns + ` FROM overtime_records WHERE attendance_id = $1`

	rec, err := scanRecord(q.QueryRow(ctx, query, attendanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get overtime record by attendance: %w", err)
	}
	return &rec, nil
}

func (r *overtimeRepositoryImpl) ListRecordsByEmployee(ctx context.Context, empCode string, status *overtime.RecordStatus) ([]overtime.Record, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + recordColumns + ` FROM overtime_records WHERE emp_code = $1`
	args := []interface{}{empCode}
	if status != nil {
		query += ` AND status = $2`
		args = append(args, *status)
	}
	query += ` ORDER BY work_date DESC`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list overtime records: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func (r *overtimeRepositoryImpl) CountRecordsInMonth(ctx context.Context, empCode string, year int, month time.Month) (int, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT COUNT(*) FROM overtime_records
		WHERE emp_code = $1
		  AND EXTRACT(YEAR FROM work_date) = $2
		  AND EXTRACT(MONTH FROM work_date) = $3
	`

	var count int
	if err := q.QueryRow(ctx, query, empCode, year, int(month)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count overtime records in month: %w", err)
	}
	return count, nil
}

func (r *overtimeRepositoryImpl) UpdateRecord(ctx context.Context, record overtime.Record) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE overtime_records
		SET status = $2, compoff_request_id = $3
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, record.ID, record.Status, record.CompOffRequestID)
	if err != nil {
		return fmt.Errorf("update overtime record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrRecordNotFound
	}
	return nil
}

func (r *overtimeRepositoryImpl) ExpireRecords(ctx context.Context, asOf time.Time) (int, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE overtime_records
		SET status = 'expired'
		WHERE status = 'eligible' AND expires_on < $1
	`

	tag, err := q.Exec(ctx, query, asOf)
	if err != nil {
		return 0, fmt.Errorf("expire overtime records: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

const compoffColumns = `id, emp_code, total_days, status, approver_code, reviewed_by, reviewed_at, review_comment, reason, created_at`

func scanCompOff(row pgx.Row) (overtime.CompOffRequest, error) {
	var (
		req     overtime.CompOffRequest
		comment *string
		reason  *string
	)
	err := row.Scan(
		&req.ID,
		&req.EmpCode,
		&req.TotalDays,
		&req.Status,
		&req.ApproverCode,
		&req.ReviewedBy,
		&req.ReviewedAt,
		&comment,
		&reason,
		&req.CreatedAt,
	)
	if err != nil {
		return overtime.CompOffRequest{}, err
	}
	if comment != nil {
		req.ReviewComment = *comment
	}
	if reason != nil {
		req.Reason = *reason
	}
	return req, nil
}

func (r *overtimeRepositoryImpl) CreateRequest(ctx context.Context, request overtime.CompOffRequest) (overtime.CompOffRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO compoff_requests (emp_code, total_days, status, approver_code, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		request.EmpCode,
		request.TotalDays,
		request.Status,
		request.ApproverCode,
		request.Reason,
	).Scan(&request.ID, &request.CreatedAt)
	if err != nil {
		return overtime.CompOffRequest{}, fmt.Errorf("create comp-off request: %w", err)
	}
	return request, nil
}

func (r *overtimeRepositoryImpl) GetRequestByID(ctx context.Context, id int64) (overtime.CompOffRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + compoffColumns + ` FROM compoff_requests WHERE id = $1`

	req, err := scanCompOff(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.CompOffRequest{}, overtime.ErrRequestNotFound
		}
		return overtime.CompOffRequest{}, fmt.Errorf("get comp-off request: %w", err)
	}
	return req, nil
}

func (r *overtimeRepositoryImpl) UpdateRequest(ctx context.Context, request overtime.CompOffRequest) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE compoff_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, review_comment = $5
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, request.ID, request.Status, request.ReviewedBy, request.ReviewedAt, request.ReviewComment)
	if err != nil {
		return fmt.Errorf("update comp-off request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrRequestNotFound
	}
	return nil
}

func (r *overtimeRepositoryImpl) ListRequestsByEmployee(ctx context.Context, empCode string) ([]overtime.CompOffRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + compoffColumns + ` FROM compoff_requests WHERE emp_code = $1 ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, empCode)
	if err != nil {
		return nil, fmt.Errorf("list comp-off requests: %w", err)
	}
	defer rows.Close()

	return collectCompOffs(rows)
}

func (r *overtimeRepositoryImpl) ListRequestsByApprover(ctx context.Context, approverCode string) ([]overtime.CompOffRequest, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + compoffColumns + ` FROM compoff_requests WHERE approver_code = $1 ORDER BY created_at DESC`

	rows, err := q.Query(ctx, query, approverCode)
	if err != nil {
		return nil, fmt.Errorf("list comp-off requests by approver: %w", err)
	}
	defer rows.Close()

	return collectCompOffs(rows)
}

func (r *overtimeRepositoryImpl) ListRecordsByRequest(ctx context.Context, requestID int64) ([]overtime.Record, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + recordColumns + ` FROM overtime_records WHERE compoff_request_id = $1 ORDER BY work_date`

	rows, err := q.Query(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list records by request: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]overtime.Record, error) {
	var records []overtime.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan overtime record: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func collectCompOffs(rows pgx.Rows) ([]overtime.CompOffRequest, error) {
	var requests []overtime.CompOffRequest
	for rows.Next() {
		req, err := scanCompOff(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comp-off request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
