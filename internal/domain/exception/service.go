package exception

import (
	"context"
	"time"
)

type Service interface {
	// Create files a late-arrival or early-leave exception. The approver
	// is the assigned manager, or the informing manager when the manager
	// is on leave that day.
	Create(ctx context.Context, req CreateExceptionRequest) (ExceptionResponse, error)

	// Review approves or rejects a pending exception. Approved and
	// rejected are terminal.
	Review(ctx context.Context, req ReviewExceptionRequest) (ExceptionResponse, error)

	MyExceptions(ctx context.Context, empCode string) ([]ExceptionResponse, error)
	TeamExceptions(ctx context.Context, approverCode string) (TeamSummaryResponse, error)

	// CheckEarlyLeaveApproval reports whether the employee may clock out
	// at the given moment: an approved early-leave exception exists for
	// the day and the moment is not before its planned time. The second
	// return is that planned time when present.
	CheckEarlyLeaveApproval(ctx context.Context, empCode string, at time.Time) (bool, *time.Time, error)
}
