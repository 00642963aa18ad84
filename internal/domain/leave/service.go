package leave

import (
	"context"
	"time"
)

type Service interface {
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	Review(ctx context.Context, req ReviewLeaveRequest) (LeaveResponse, error)
	MyRequests(ctx context.Context, empCode string) ([]LeaveResponse, error)
	TeamRequests(ctx context.Context, approverCode string) ([]LeaveResponse, error)

	// IsOnLeave reports whether the employee has approved leave covering
	// the date. The exception workflow uses it to fall back to the
	// informing manager when the assigned manager is away.
	IsOnLeave(ctx context.Context, empCode string, date time.Time) (bool, error)
}
