package exception

import (
	"context"
	"time"
)

type ExceptionRepository interface {
	// Create inserts an exception. The partial unique index on pending
	// rows makes a duplicate surface ErrDuplicatePending.
	Create(ctx context.Context, exception Exception) (Exception, error)

	GetByID(ctx context.Context, id int64) (Exception, error)

	Update(ctx context.Context, exception Exception) error

	ListByEmployee(ctx context.Context, empCode string) ([]Exception, error)
	ListByApprover(ctx context.Context, approverCode string, status *Status) ([]Exception, error)

	// GetApprovedEarlyLeave returns the approved early-leave exception
	// for the employee on the given day, nil if none. Clock-out consults
	// it before allowing an early exit.
	GetApprovedEarlyLeave(ctx context.Context, empCode string, date time.Time) (*Exception, error)
}
