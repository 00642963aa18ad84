package distance

import (
	"context"
)

// Service watches how far an employee has drifted from their clock-in
// location during working hours.
type Service interface {
	// Check evaluates one GPS ping. Stationary employees beyond the
	// radius get one distance alert per session; movement and
	// non-working days short-circuit.
	Check(ctx context.Context, req CheckRequest) (CheckResponse, error)

	// ActiveAlert returns the session's active alert, nil if none
	ActiveAlert(ctx context.Context, empCode string) (*AlertResponse, error)

	// ClearAlert marks the session's active alert cleared
	ClearAlert(ctx context.Context, empCode string) error
}
