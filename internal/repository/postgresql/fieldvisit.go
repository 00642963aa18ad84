package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/fieldvisit"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

type fieldVisitRepositoryImpl struct {
	db *database.DB
}

func NewFieldVisitRepository(db *database.DB) fieldvisit.FieldVisitRepository {
	return &fieldVisitRepositoryImpl{db: db}
}

const visitColumns = `id, activity_id, emp_code, visit_date, status, start_time, end_time, total_distance_km, created_at`

func scanVisit(row pgx.Row) (fieldvisit.FieldVisit, error) {
	var v fieldvisit.FieldVisit
	err := row.Scan(
		&v.ID,
		&v.ActivityID,
		&v.EmpCode,
		&v.VisitDate,
		&v.Status,
		&v.StartTime,
		&v.EndTime,
		&v.TotalDistanceKm,
		&v.CreatedAt,
	)
	return v, err
}

func (r *fieldVisitRepositoryImpl) CreateVisit(ctx context.Context, visit fieldvisit.FieldVisit) (fieldvisit.FieldVisit, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO field_visits (activity_id, emp_code, visit_date, status, start_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		visit.ActivityID,
		visit.EmpCode,
		visit.VisitDate,
		visit.Status,
		visit.StartTime,
	).Scan(&visit.ID, &visit.CreatedAt)
	if err != nil {
		return fieldvisit.FieldVisit{}, fmt.Errorf("create field visit: %w", err)
	}
	return visit, nil
}

func (r *fieldVisitRepositoryImpl) GetVisitByID(ctx context.Context, id int64) (fieldvisit.FieldVisit, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + visitColumns + ` FROM field_visits WHERE id = $1`

	v, err := scanVisit(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fieldvisit.FieldVisit{}, fieldvisit.ErrVisitNotFound
		}
		return fieldvisit.FieldVisit{}, fmt.Errorf("get field visit: %w", err)
	}
	return v, nil
}

func (r *fieldVisitRepositoryImpl) GetActiveVisit(ctx context.Context, empCode string) (*fieldvisit.FieldVisit, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + visitColumns + ` FROM field_visits WHERE emp_code = $1 AND status = 'active' ORDER BY start_time DESC LIMIT 1`

	v, err := scanVisit(q.QueryRow(ctx, query, empCode))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active field visit: %w", err)
	}
	return &v, nil
}

func (r *fieldVisitRepositoryImpl) GetVisitByActivity(ctx context.Context, activityID int64) (*fieldvisit.FieldVisit, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + visitColumns + ` FROM field_visits WHERE activity_id = $1`

	v, err := scanVisit(q.QueryRow(ctx, query, activityID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get field visit by activity: %w", err)
	}
	return &v, nil
}

func (r *fieldVisitRepositoryImpl) UpdateVisit(ctx context.Context, visit fieldvisit.FieldVisit) error {
	q := GetQuerier(ctx, r.db)
	query := `
		UPDATE field_visits
		SET status = $2, end_time = $3, total_distance_km = $4
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, visit.ID, visit.Status, visit.EndTime, visit.TotalDistanceKm)
	if err != nil {
		return fmt.Errorf("update field visit: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fieldvisit.ErrVisitNotFound
	}
	return nil
}

func (r *fieldVisitRepositoryImpl) ListVisitsByDate(ctx context.Context, empCode string, date time.Time) ([]fieldvisit.FieldVisit, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + visitColumns + ` FROM field_visits WHERE emp_code = $1 AND visit_date = $2 ORDER BY start_time`

	rows, err := q.Query(ctx, query, empCode, date)
	if err != nil {
		return nil, fmt.Errorf("list field visits: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func (r *fieldVisitRepositoryImpl) ListActiveVisits(ctx context.Context) ([]fieldvisit.FieldVisit, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + visitColumns + ` FROM field_visits WHERE status = 'active' ORDER BY start_time`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active field visits: %w", err)
	}
	defer rows.Close()

	return collectVisits(rows)
}

func collectVisits(rows pgx.Rows) ([]fieldvisit.FieldVisit, error) {
	var visits []fieldvisit.FieldVisit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan field visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (r *fieldVisitRepositoryImpl) CreatePoint(ctx context.Context, point fieldvisit.TrackingPoint) (fieldvisit.TrackingPoint, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO field_visit_tracking (field_visit_id, emp_code, latitude, longitude, recorded_at, speed_kmh, accuracy_m, is_auto)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		point.FieldVisitID,
		point.EmpCode,
		point.Location.Lat,
		point.Location.Lon,
		point.RecordedAt,
		point.SpeedKmh,
		point.AccuracyM,
		point.IsAuto,
	).Scan(&point.ID, &point.CreatedAt)
	if err != nil {
		return fieldvisit.TrackingPoint{}, fmt.Errorf("create tracking point: %w", err)
	}
	return point, nil
}

const pointColumns = `id, field_visit_id, emp_code, latitude, longitude, recorded_at, speed_kmh, accuracy_m, is_auto, created_at`

func scanPoint(row pgx.Row) (fieldvisit.TrackingPoint, error) {
	var (
		p        fieldvisit.TrackingPoint
		lat, lon float64
	)
	err := row.Scan(
		&p.ID,
		&p.FieldVisitID,
		&p.EmpCode,
		&lat,
		&lon,
		&p.RecordedAt,
		&p.SpeedKmh,
		&p.AccuracyM,
		&p.IsAuto,
		&p.CreatedAt,
	)
	if err != nil {
		return fieldvisit.TrackingPoint{}, err
	}
	p.Location = geo.Coordinate{Lat: lat, Lon: lon}
	return p, nil
}

func (r *fieldVisitRepositoryImpl) ListPoints(ctx context.Context, fieldVisitID int64) ([]fieldvisit.TrackingPoint, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + pointColumns + ` FROM field_visit_tracking WHERE field_visit_id = $1 ORDER BY recorded_at`

	rows, err := q.Query(ctx, query, fieldVisitID)
	if err != nil {
		return nil, fmt.Errorf("list tracking points: %w", err)
	}
	defer rows.Close()

	var points []fieldvisit.TrackingPoint
	for rows.Next() {
		p, err := scanPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tracking point: %w", err)
		}
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *fieldVisitRepositoryImpl) GetLastPoint(ctx context.Context, fieldVisitID int64) (*fieldvisit.TrackingPoint, error) {
	q := GetQuerier(ctx, r.db)
	query := `SELECT ` + pointColumns + ` FROM field_visit_tracking WHERE field_visit_id = $1 ORDER BY recorded_at DESC LIMIT 1`

	p, err := scanPoint(q.QueryRow(ctx, query, fieldVisitID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get last tracking point: %w", err)
	}
	return &p, nil
}
