package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/holiday"
	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

func (r *holidayRepositoryImpl) Create(ctx context.Context, h holiday.Holiday) (holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		INSERT INTO organization_holidays (holiday_date, name)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, h.Date, h.Name).Scan(&h.ID, &h.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "organization_holidays_holiday_date_key") {
			return holiday.Holiday{}, holiday.ErrHolidayExists
		}
		return holiday.Holiday{}, fmt.Errorf("create holiday: %w", err)
	}
	return h, nil
}

func (r *holidayRepositoryImpl) GetByDate(ctx context.Context, date time.Time) (*holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, holiday_date, name, created_at
		FROM organization_holidays
		WHERE holiday_date = $1
	`

	var h holiday.Holiday
	err := q.QueryRow(ctx, query, date).Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get holiday by date: %w", err)
	}
	return &h, nil
}

func (r *holidayRepositoryImpl) ListByYear(ctx context.Context, year int) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)
	query := `
		SELECT id, holiday_date, name, created_at
		FROM organization_holidays
		WHERE EXTRACT(YEAR FROM holiday_date) = $1
		ORDER BY holiday_date
	`

	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan holiday: %w", err)
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}
