package holiday

import (
	"context"
	"time"
)

type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	GetByDate(ctx context.Context, date time.Time) (*Holiday, error)
	ListByYear(ctx context.Context, year int) ([]Holiday, error)
}
