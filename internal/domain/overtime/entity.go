package overtime

import (
	"time"
)

// Record is accrued comp-off credit for one attendance session. A session
// accrues at most one record.
type Record struct {
	ID                  int64
	AttendanceID        int64
	EmpCode             string
	WorkDate            time.Time
	ExtraHours          float64
	CompOffDays         float64
	Status              RecordStatus
	RequiresCMDApproval bool
	ExpiresOn           time.Time
	RecordingDeadline   time.Time
	CompOffRequestID    *int64
	CreatedAt           time.Time
}

type RecordStatus string

const (
	RecordEligible  RecordStatus = "eligible"
	RecordRequested RecordStatus = "requested"
	RecordApproved  RecordStatus = "approved"
	RecordRejected  RecordStatus = "rejected"
	RecordExpired   RecordStatus = "expired"
	RecordUtilized  RecordStatus = "utilized"
)

// CompOffRequest bundles eligible records into one approval request.
type CompOffRequest struct {
	ID            int64
	EmpCode       string
	TotalDays     float64
	Status        RequestStatus
	ApproverCode  string
	ReviewedBy    *string
	ReviewedAt    *time.Time
	ReviewComment string
	Reason        string
	CreatedAt     time.Time
}

type RequestStatus string

const (
	RequestPending   RequestStatus = "pending"
	RequestApproved  RequestStatus = "approved"
	RequestRejected  RequestStatus = "rejected"
	RequestCancelled RequestStatus = "cancelled"
)
