package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/activity"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type activityRepositoryImpl struct {
	db *database.DB
}

func NewActivityRepository(db *database.DB) activity.ActivityRepository {
	return &activityRepositoryImpl{db: db}
}

const activityColumns = `id, attendance_id, emp_code, activity_type, status, start_time, end_time,
	duration_minutes, location, remarks, destinations, created_at`

func scanActivity(row pgx.Row) (activity.Activity, error) {
	var (
		a            activity.Activity
		location     *string
		remarks      *string
		destinations []byte
	)
	err := row.Scan(
		&a.ID,
		&a.AttendanceID,
		&a.EmpCode,
		&a.Type,
		&a.Status,
		&a.StartTime,
		&a.EndTime,
		&a.DurationMinutes,
		&location,
		&remarks,
		&destinations,
		&a.CreatedAt,
	)
	if err != nil {
		return activity.Activity{}, err
	}

	if location != nil {
		c, err := geo.ParseCoordinate(*location)
		if err != nil {
			return activity.Activity{}, fmt.Errorf("parse activity location: %w", err)
		}
		a.Location = &c
	}
	if remarks != nil {
		a.Remarks = *remarks
	}
	if len(destinations) > 0 {
		if err := json.Unmarshal(destinations, &a.Destinations); err != nil {
			return activity.Activity{}, fmt.Errorf("decode destinations: %w", err)
		}
	}
	return a, nil
}

func (r *activityRepositoryImpl) Create(ctx context.Context, a activity.Activity) (activity.Activity, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO activities (attendance_id, emp_code, activity_type, status, start_time, location, remarks, destinations)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	var location *string
	if a.Location != nil {
		s := a.Location.String()
		location = &s
	}
	var destinations []byte
	if len(a.Destinations) > 0 {
		var err error
		if destinations, err = json.Marshal(a.Destinations); err != nil {
			return activity.Activity{}, fmt.Errorf("encode destinations: %w", err)
		}
	}

	err := q.QueryRow(ctx, query,
		a.AttendanceID,
		a.EmpCode,
		a.Type,
		a.Status,
		a.StartTime,
		location,
		a.Remarks,
		destinations,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "ux_activities_active") {
			return activity.Activity{}, activity.ErrActiveActivityExists
		}
		return activity.Activity{}, fmt.Errorf("create activity: %w", err)
	}
	return a, nil
}

func (r *activityRepositoryImpl) GetByID(ctx context.Context, id int64) (activity.Activity, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = $1`

	a, err := scanActivity(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return activity.Activity{}, activity.ErrActivityNotFound
		}
		return activity.Activity{}, fmt.Errorf("get activity: %w", err)
	}
	return a, nil
}

func (r *activityRepositoryImpl) GetActiveBySession(ctx context.Context, attendanceID int64) (*activity.Activity, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + activityColumns + ` FROM activities WHERE attendance_id = $1 AND status = 'active'`

	a, err := scanActivity(q.QueryRow(ctx, query, attendanceID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active activity: %w", err)
	}
	return &a, nil
}

func (r *activityRepositoryImpl) GetActiveByType(ctx context.Context, attendanceID int64, activityType activity.Type) (*activity.Activity, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + activityColumns + ` FROM activities WHERE attendance_id = $1 AND activity_type = $2 AND status = 'active'`

	a, err := scanActivity(q.QueryRow(ctx, query, attendanceID, activityType))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active activity by type: %w", err)
	}
	return &a, nil
}

func (r *activityRepositoryImpl) Update(ctx context.Context, a activity.Activity) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE activities
		SET status = $2, end_time = $3, duration_minutes = $4, remarks = $5, destinations = $6
		WHERE id = $1
	`

	var destinations []byte
	if len(a.Destinations) > 0 {
		var err error
		if destinations, err = json.Marshal(a.Destinations); err != nil {
			return fmt.Errorf("encode destinations: %w", err)
		}
	}

	tag, err := q.Exec(ctx, query, a.ID, a.Status, a.EndTime, a.DurationMinutes, a.Remarks, destinations)
	if err != nil {
		return fmt.Errorf("update activity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return activity.ErrActivityNotFound
	}
	return nil
}

func (r *activityRepositoryImpl) ListBySession(ctx context.Context, attendanceID int64) ([]activity.Activity, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + activityColumns + ` FROM activities WHERE attendance_id = $1 ORDER BY start_time`

	rows, err := q.Query(ctx, query, attendanceID)
	if err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	defer rows.Close()

	var activities []activity.Activity
	for rows.Next() {
		a, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
