package activity

import (
	"time"

	"github.com/fieldforce-hq/attendance-backend-go/internal/pkg/geo"
)

// Activity is something an employee does inside an attendance session:
// a break, a branch or field visit, or a distance alert raised by the
// monitor. At most one activity per session is active at a time.
type Activity struct {
	ID              int64
	AttendanceID    int64
	EmpCode         string
	Type            Type
	Status          Status
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Location        *geo.Coordinate
	Remarks         string
	Destinations    []Destination
	CreatedAt       time.Time
}

type Type string

const (
	TypeMealBreak     Type = "meal_break"
	TypeTeaBreak      Type = "tea_break"
	TypeRestBreak     Type = "rest_break"
	TypeBranchVisit   Type = "branch_visit"
	TypeFieldVisit    Type = "field_visit"
	TypeDistanceAlert Type = "distance_alert"
)

func (t Type) Valid() bool {
	switch t {
	case TypeMealBreak, TypeTeaBreak, TypeRestBreak, TypeBranchVisit, TypeFieldVisit, TypeDistanceAlert:
		return true
	}
	return false
}

// OpensFieldVisit reports whether starting this activity opens a shadow
// field visit for GPS tracking.
func (t Type) OpensFieldVisit() bool {
	return t == TypeBranchVisit || t == TypeFieldVisit
}

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCleared   Status = "cleared"
)

// Destination is one planned stop of a visit activity, stored as ordered
// JSONB on the activity row.
type Destination struct {
	Order     int        `json:"order"`
	Name      string     `json:"name"`
	Address   string     `json:"address,omitempty"`
	Visited   bool       `json:"visited"`
	VisitedAt *time.Time `json:"visited_at,omitempty"`
}
