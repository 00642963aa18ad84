package attendance

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

// Session is one attendance session: an open session has no logout time.
// Coordinates are structured; the "lat, lon" string form appears only in
// the storage layer.
type Session struct {
	ID                 int64
	EmpCode            string
	LoginTime          time.Time
	LogoutTime         *time.Time
	LoginLocation      geo.Coordinate
	LogoutLocation     *geo.Coordinate
	LoginAddress       string
	LogoutAddress      string
	TotalHours         *float64
	IsCompOffEligible  bool
	IsLateArrival      bool
	LateByMinutes      int
	AutoClockout       bool
	AutoClockoutReason string
	CreatedAt          time.Time
}

// Open reports whether the session is still running.
func (s Session) Open() bool {
	return s.LogoutTime == nil
}
