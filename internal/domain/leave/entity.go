package leave

import (
	"time"
)

type LeaveRequest struct {
	ID           int64
	EmpCode      string
	LeaveType    Type
	StartDate    time.Time
	EndDate      time.Time
	Reason       string
	Status       Status
	ApproverCode string
	ReviewedBy   *string
	ReviewedAt   *time.Time
	CreatedAt    time.Time
}

type Type string

const (
	TypeCasual  Type = "casual"
	TypeSick    Type = "sick"
	TypeEarned  Type = "earned"
	TypeCompOff Type = "comp_off"
)

func (t Type) Valid() bool {
	switch t {
	case TypeCasual, TypeSick, TypeEarned, TypeCompOff:
		return true
	}
	return false
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Days returns the inclusive calendar length of the request.
func (r LeaveRequest) Days() int {
	return int(r.EndDate.Sub(r.StartDate).Hours()/24) + 1
}
