package attendance

import (
	"context"
)

// Service defines business logic for attendance sessions
type Service interface {
	// ClockIn opens a session with day-type classification, comp-off
	// flagging, and late-arrival marking
	ClockIn(ctx context.Context, req ClockInRequest) (SessionResponse, error)

	// ClockOut closes the open session. Early clock-outs on working days
	// need an approved early leave request.
	ClockOut(ctx context.Context, req ClockOutRequest) (SessionResponse, error)

	// Status returns the employee's current session state
	Status(ctx context.Context, empCode string) (StatusResponse, error)

	// History returns recent sessions and their total hours
	History(ctx context.Context, filter HistoryFilter) (HistoryResponse, error)

	// AutoClockOut force-closes every open session at the day's cutoff,
	// reusing the login location. Errors are isolated per session; the
	// count of closed sessions is returned.
	AutoClockOut(ctx context.Context) (int, error)
}
