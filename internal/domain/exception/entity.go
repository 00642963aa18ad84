package exception

import (
	"time"
)

// Exception is a request to excuse a late arrival or early leave. The
// deviation in minutes is computed against the shift boundary once at
// creation and never recomputed.
type Exception struct {
	ID            int64
	EmpCode       string
	AttendanceID  *int64
	Type          Type
	Date          time.Time
	PlannedTime   time.Time
	Minutes       int
	Reason        string
	Status        Status
	ApproverCode  string
	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewComment string
	CreatedAt     time.Time
}

type Type string

const (
	TypeLateArrival Type = "late_arrival"
	TypeEarlyLeave  Type = "early_leave"
)

func (t Type) Valid() bool {
	return t == TypeLateArrival || t == TypeEarlyLeave
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)
