package employee

import (
	"time"
)

type Employee struct {
	ID                   int64
	EmpCode              string
	Name                 string
	Email                *string
	Phone                string
	Role                 Role
	ManagerCode          *string
	InformingManagerCode *string
	ShiftID              *int
	IsActive             bool
	CreatedAt            time.Time
}

type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleCMD      Role = "cmd"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleManager, RoleHR, RoleCMD, RoleAdmin:
		return true
	}
	return false
}

// Shift times are wall-clock "15:04" strings interpreted in the
// application timezone. SaturdayEndTime is the half-day cutoff.
type Shift struct {
	ID              int
	Name            string
	StartTime       string
	EndTime         string
	SaturdayEndTime string
	CreatedAt       time.Time
}

// StartOn resolves the shift start on the given calendar day.
func (s Shift) StartOn(day time.Time, loc *time.Location) time.Time {
	return atTime(day, s.StartTime, loc)
}

// EndOn resolves the shift end on the given calendar day, honoring the
// Saturday half-day window.
func (s Shift) EndOn(day time.Time, saturdayHalfDay bool, loc *time.Location) time.Time {
	if saturdayHalfDay {
		return atTime(day, s.SaturdayEndTime, loc)
	}
	return atTime(day, s.EndTime, loc)
}

func atTime(day time.Time, hhmm string, loc *time.Location) time.Time {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
