package workday

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/domain/holiday"
)

// Day-type reasons returned by Classify.
const (
	ReasonSunday       = "sunday"
	ReasonSaturdayOff  = "saturday_off"
	ReasonHoliday      = "holiday"
	ReasonWorkingDay   = "working_day"
	ReasonSaturdayHalf = "saturday_half_day"
)

// Classifier decides whether a calendar date is a working day.
type Classifier interface {
	// Classify reports whether the date is a working day and why.
	Classify(ctx context.Context, date time.Time) (bool, string)

	// IsSaturdayHalfDay reports whether the date is a working Saturday,
	// which ends at the half-day cutoff.
	IsSaturdayHalfDay(date time.Time) bool
}

type classifierImpl struct {
	holidays holiday.HolidayRepository
	loc      *time.Location
}

func NewClassifier(holidays holiday.HolidayRepository, loc *time.Location) Classifier {
	return &classifierImpl{holidays: holidays, loc: loc}
}

// Classify applies the rules in order: Sunday, 2nd/4th Saturday, declared
// holiday, otherwise a working day. A holiday lookup failure counts the
// day as working so attendance is never blocked by a flaky lookup.
func (c *classifierImpl) Classify(ctx context.Context, date time.Time) (bool, string) {
	local := date.In(c.loc)

	switch local.Weekday() {
	case time.Sunday:
		return false, ReasonSunday
	case time.Saturday:
		if week := weekOfMonth(local); week == 2 || week == 4 {
			return false, ReasonSaturdayOff
		}
	}

	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
	h, err := c.holidays.GetByDate(ctx, day)
	if err != nil {
		slog.Warn("holiday lookup failed, treating as working day", "date", day.Format("2006-01-02"), "error", err)
	} else if h != nil {
		return false, ReasonHoliday
	}

	if local.Weekday() == time.Saturday {
		return true, ReasonSaturdayHalf
	}
	return true, ReasonWorkingDay
}

func (c *classifierImpl) IsSaturdayHalfDay(date time.Time) bool {
	local := date.In(c.loc)
	if local.Weekday() != time.Saturday {
		return false
	}
	week := weekOfMonth(local)
	return week != 2 && week != 4
}

// weekOfMonth is the 1-based ordinal of the date's weekday within its
// month: the 8th is always the 2nd occurrence of its weekday.
func weekOfMonth(date time.Time) int {
	return ((date.Day() - 1) / 7) + 1
}
