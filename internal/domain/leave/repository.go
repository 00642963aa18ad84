package leave

import (
	"context"
	"time"
)

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id int64) (LeaveRequest, error)
	ListByEmployee(ctx context.Context, empCode string) ([]LeaveRequest, error)
	ListByApprover(ctx context.Context, approverCode string, status *Status) ([]LeaveRequest, error)
	UpdateStatus(ctx context.Context, id int64, status Status, reviewedBy string, reviewedAt time.Time) error

	// HasApprovedLeaveOn reports whether the employee is on approved
	// leave covering the given date. Used for approver fallback.
	HasApprovedLeaveOn(ctx context.Context, empCode string, date time.Time) (bool, error)

	// HasOverlapping reports pending or approved requests intersecting
	// the date range.
	HasOverlapping(ctx context.Context, empCode string, start, end time.Time) (bool, error)
}
